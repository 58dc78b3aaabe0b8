package repositories

import (
	"context"

	"github.com/satriahrh/lintas/domain/entities"
)

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// InitTranscribeStreaming initializes a streaming transcription session
	InitTranscribeStreaming(ctx context.Context, config AudioConfig) (SpeechToTextStreaming, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate     int    `json:"sample_rate"`
	Encoding       string `json:"encoding"`
	Language       string `json:"language"`
	Continuous     bool   `json:"continuous"`
	InterimResults bool   `json:"interim_results"`
}

// SpeechToTextStreaming is one open recognition stream.
// Results is closed once the stream has ended.
type SpeechToTextStreaming interface {
	Stream(data []byte) error
	Results() <-chan entities.TranscriptEvent
	End() error
}
