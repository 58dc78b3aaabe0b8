package tts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain/repositories"
)

// MockTextToSpeech is a placeholder implementation for text-to-speech
type MockTextToSpeech struct {
	logger *zap.Logger
}

// NewMockTextToSpeech creates a new mock text-to-speech service
func NewMockTextToSpeech(logger *zap.Logger) repositories.TextToSpeech {
	return &MockTextToSpeech{
		logger: logger,
	}
}

// ContentType implements repositories.TextToSpeech
func (t *MockTextToSpeech) ContentType() string {
	return "audio/mpeg"
}

// ConvertTextToSpeech implements repositories.TextToSpeech
func (t *MockTextToSpeech) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	t.logger.Info("Processing mock text-to-speech", zap.Int("textLength", len(text)))

	// Mock audio data - size grows with text length, split into two chunks
	mockAudio := make([]byte, len(text)*100)
	for i := range mockAudio {
		mockAudio[i] = byte(i % 256)
	}

	half := len(mockAudio) / 2
	audioChan := make(chan []byte, 2)
	audioChan <- mockAudio[:half]
	audioChan <- mockAudio[half:]
	close(audioChan)
	return audioChan, nil
}
