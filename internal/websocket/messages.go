package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/satriahrh/lintas/domain"
	"github.com/satriahrh/lintas/domain/entities"
)

// Error codes sent in error messages
const (
	ErrorCodeInvalidMessage         = "invalid_message"
	ErrorCodeRecognitionActive      = "recognition_active"
	ErrorCodeNoActiveRecognition    = "no_active_recognition"
	ErrorCodeRecognitionUnavailable = "recognition_unavailable"
	ErrorCodeStreamFailed           = "stream_failed"
)

const (
	defaultLanguage   = "en-US"
	defaultSampleRate = 16000
	defaultEncoding   = "LINEAR16"
)

var validEncodings = map[string]bool{
	"LINEAR16": true, "WAV": true, "FLAC": true, "MULAW": true, "AMR": true,
	"AMR_WB": true, "OGG_OPUS": true, "SPEEX_WITH_HEADER_BYTE": true, "WEBM_OPUS": true,
}

// MessageValidator provides validation for recognition socket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses a text frame into its typed message
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base domain.RecognitionMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case domain.MessageTypeRecognitionStart:
		var msg domain.RecognitionStartMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid recognition start message: %w", err)
		}
		if err := v.validateRecognitionStart(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case domain.MessageTypeRecognitionStop:
		return &base, nil

	case "":
		return nil, fmt.Errorf("message missing type field")

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// validateRecognitionStart fills defaults and checks the audio parameters
func (v *MessageValidator) validateRecognitionStart(msg *domain.RecognitionStartMessage) error {
	if msg.Language == "" {
		msg.Language = defaultLanguage
	}
	if msg.SampleRate == 0 {
		msg.SampleRate = defaultSampleRate
	}
	if msg.Encoding == "" {
		msg.Encoding = defaultEncoding
	}

	if msg.SampleRate < 8000 || msg.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000")
	}
	if !validEncodings[msg.Encoding] {
		return fmt.Errorf("unsupported encoding: %s", msg.Encoding)
	}

	return nil
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message string) *domain.RecognitionErrorMessage {
	return &domain.RecognitionErrorMessage{
		Type:    domain.MessageTypeError,
		Code:    code,
		Message: message,
	}
}

// CreateTranscriptMessage converts a recognition result to its wire form
func CreateTranscriptMessage(ev entities.TranscriptEvent) *domain.TranscriptMessage {
	ts := ev.ReceivedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return &domain.TranscriptMessage{
		Type:      domain.MessageTypeTranscript,
		Text:      ev.Text,
		IsFinal:   ev.IsFinal,
		Stability: ev.Stability,
		Timestamp: ts.UnixMilli(),
	}
}
