package domain

import "github.com/satriahrh/lintas/domain/entities"

// TranslateRequest is the body of POST /translate
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// TranslateResponse is the body returned by POST /translate.
// A response without TranslatedText is a failed translation.
type TranslateResponse struct {
	TranslatedText string `json:"translated_text,omitempty"`
	Error          string `json:"error,omitempty"`
}

// SpeakRequest is the body of POST /speak
type SpeakRequest struct {
	Text string `json:"text"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Recognition socket message types
const (
	MessageTypeRecognitionStart   = "recognition_start"
	MessageTypeRecognitionStop    = "recognition_stop"
	MessageTypeRecognitionStarted = "recognition_started"
	MessageTypeRecognitionEnded   = "recognition_ended"
	MessageTypeTranscript         = "transcript"
	MessageTypeError              = "error"
)

// RecognitionMessage is the envelope of every text frame on the recognition socket
type RecognitionMessage struct {
	Type string `json:"type"`
}

// RecognitionStartMessage opens a recognition session; audio follows as binary frames
type RecognitionStartMessage struct {
	Type string `json:"type"`
	entities.RecognitionOptions
}

// TranscriptMessage carries one recognition result
type TranscriptMessage struct {
	Type      string  `json:"type"`
	Text      string  `json:"text"`
	IsFinal   bool    `json:"is_final"`
	Stability float32 `json:"stability,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// RecognitionErrorMessage reports a recognition failure to the socket peer
type RecognitionErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"error_code"`
	Message string `json:"message"`
}
