package stt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain/entities"
	"github.com/satriahrh/lintas/domain/repositories"
)

// mockBytesPerWord is how much audio the mock "hears" per recognized word
const mockBytesPerWord = 3200

var defaultMockPhrases = []string{
	"Hello",
	"Where does it hurt?",
	"Take a deep breath.",
}

// MockSpeechToText is a placeholder implementation for speech recognition.
// It reveals its phrases word by word as audio arrives.
type MockSpeechToText struct {
	logger  *zap.Logger
	phrases []string
}

// MockSpeechToTextStream is a mock implementation of streaming speech recognition
type MockSpeechToTextStream struct {
	logger   *zap.Logger
	config   repositories.AudioConfig
	phrases  []string
	phrase   int
	words    int
	received int
	results  chan entities.TranscriptEvent

	mu    sync.Mutex
	ended bool
}

var _ repositories.SpeechToText = (*MockSpeechToText)(nil)

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(logger *zap.Logger, phrases ...string) *MockSpeechToText {
	if len(phrases) == 0 {
		phrases = defaultMockPhrases
	}
	return &MockSpeechToText{
		logger:  logger,
		phrases: phrases,
	}
}

// InitTranscribeStreaming creates a new mock streaming session
func (s *MockSpeechToText) InitTranscribeStreaming(ctx context.Context, config repositories.AudioConfig) (repositories.SpeechToTextStreaming, error) {
	s.logger.Info("Initializing mock streaming transcription",
		zap.Int("sampleRate", config.SampleRate),
		zap.String("encoding", config.Encoding),
		zap.String("language", config.Language))

	return &MockSpeechToTextStream{
		logger:  s.logger,
		config:  config,
		phrases: s.phrases,
		results: make(chan entities.TranscriptEvent, 256),
	}, nil
}

// Stream implements mock streaming audio processing
func (m *MockSpeechToTextStream) Stream(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ended {
		return fmt.Errorf("stream already ended")
	}

	m.received += len(data)
	for m.received >= mockBytesPerWord && m.phrase < len(m.phrases) {
		m.received -= mockBytesPerWord
		m.advance()
	}

	return nil
}

// advance reveals one more word of the current phrase
func (m *MockSpeechToTextStream) advance() {
	words := strings.Fields(m.phrases[m.phrase])
	m.words++

	if m.words >= len(words) {
		m.emit(m.phrases[m.phrase], true)
		m.phrase++
		m.words = 0
		return
	}

	if m.config.InterimResults {
		m.emit(strings.Join(words[:m.words], " "), false)
	}
}

func (m *MockSpeechToTextStream) emit(text string, final bool) {
	select {
	case m.results <- entities.TranscriptEvent{Text: text, IsFinal: final, ReceivedAt: time.Now()}:
	default:
		m.logger.Warn("Dropping mock transcript, results buffer full")
	}
}

// Results implements repositories.SpeechToTextStreaming
func (m *MockSpeechToTextStream) Results() <-chan entities.TranscriptEvent {
	return m.results
}

// End finalizes a partially heard phrase and closes the results
func (m *MockSpeechToTextStream) End() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ended {
		return nil
	}
	m.ended = true

	if m.words > 0 && m.phrase < len(m.phrases) {
		words := strings.Fields(m.phrases[m.phrase])
		m.emit(strings.Join(words[:m.words], " "), true)
	}

	m.logger.Info("Ending mock transcription stream", zap.Int("phrasesHeard", m.phrase))
	close(m.results)
	return nil
}
