package entities

import (
	"errors"
	"strings"
	"time"
)

// LanguagePair is the source/target selection read when a transcript is translated
type LanguagePair struct {
	Source string `json:"source_lang"`
	Target string `json:"target_lang"`
}

// RecognitionOptions describes a recognition session
type RecognitionOptions struct {
	Language       string `json:"language"`
	SampleRate     int    `json:"sample_rate"`
	Encoding       string `json:"encoding"`
	Continuous     bool   `json:"continuous"`
	InterimResults bool   `json:"interim_results"`
}

// DefaultRecognitionOptions returns a continuous, interim-inclusive session
func DefaultRecognitionOptions(language string) RecognitionOptions {
	return RecognitionOptions{
		Language:       language,
		SampleRate:     16000,
		Encoding:       "LINEAR16",
		Continuous:     true,
		InterimResults: true,
	}
}

// TranscriptEvent is the most recent recognized utterance segment
type TranscriptEvent struct {
	Text       string    `json:"text"`
	IsFinal    bool      `json:"is_final"`
	Stability  float32   `json:"stability,omitempty"`
	ReceivedAt time.Time `json:"timestamp"`
}

// TranslationResult is either a translated text or a failure marker
type TranslationResult struct {
	Seq            uint64
	TranslatedText string
	// Failed is set when the response carried no translated text.
	Failed bool
	// Err is set on transport or decoding errors.
	Err error
}

// AudioArtifact is a synthesized audio payload
type AudioArtifact struct {
	Data        []byte
	ContentType string
}

// SynthesisResult is either an audio artifact or a failure
type SynthesisResult struct {
	Seq      uint64
	Artifact AudioArtifact
	Err      error
}

// TranslationRecord is a backend log entry of one served translation
type TranslationRecord struct {
	ID             string    `json:"id" bson:"_id"`
	Text           string    `json:"text" bson:"text"`
	TranslatedText string    `json:"translated_text" bson:"translated_text"`
	SourceLang     string    `json:"source_lang" bson:"source_lang"`
	TargetLang     string    `json:"target_lang" bson:"target_lang"`
	Provider       string    `json:"provider" bson:"provider"`
	DurationMs     int64     `json:"duration_ms" bson:"duration_ms"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// Validate checks a language pair carries both codes
func (p LanguagePair) Validate() error {
	if strings.TrimSpace(p.Source) == "" || strings.TrimSpace(p.Target) == "" {
		return errors.New("source or target language missing")
	}
	return nil
}

// Validate validates the record data
func (r *TranslationRecord) Validate() error {
	if r.Text == "" {
		return errors.New("text is required")
	}
	if r.TranslatedText == "" {
		return errors.New("translated text is required")
	}
	return LanguagePair{Source: r.SourceLang, Target: r.TargetLang}.Validate()
}
