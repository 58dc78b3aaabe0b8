package controller

import (
	"context"

	"github.com/satriahrh/lintas/domain/entities"
)

// Recognizer is the host speech recognition capability.
// Start opens one session; the returned channel is closed when the session
// ends or ctx is cancelled.
type Recognizer interface {
	Start(ctx context.Context, opts entities.RecognitionOptions) (<-chan entities.TranscriptEvent, error)
}

// Display is the UI-bound text sink
type Display interface {
	SetStatus(status string)
	SetOriginalText(text string)
	SetTranslatedText(text string)
	// TranslatedText returns the currently displayed translation.
	TranslatedText() string
	SetSpeakVisible(visible bool)
}

// Playback is the single audio playback element.
// Handles are created from artifacts and must be released explicitly.
type Playback interface {
	CreateHandle(artifact entities.AudioArtifact) (string, error)
	Release(handle string) error
	SetSource(handle string) error
	// Play starts playback of the current source without waiting for it to finish.
	Play(ctx context.Context) error
}

// LanguageSelector returns the user's current language selection
type LanguageSelector interface {
	Languages() entities.LanguagePair
}
