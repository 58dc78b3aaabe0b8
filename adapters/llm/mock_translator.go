package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain/repositories"
)

// MockTranslator returns deterministic translations for development and tests
type MockTranslator struct {
	// Dictionary maps [targetLang][sourceText] to a translation
	Dictionary map[string]map[string]string
	// Delay simulates provider latency
	Delay  time.Duration
	logger *zap.Logger
}

var _ repositories.Translator = (*MockTranslator)(nil)

// NewMockTranslator creates a mock translator with a small built-in dictionary
func NewMockTranslator(logger *zap.Logger) *MockTranslator {
	return &MockTranslator{
		Dictionary: map[string]map[string]string{
			"fr": {
				"Hello":               "Bonjour",
				"Where does it hurt?": "Où avez-vous mal ?",
				"Take a deep breath.": "Respirez profondément.",
			},
			"es": {
				"Hello":               "Hola",
				"Where does it hurt?": "¿Dónde le duele?",
				"Take a deep breath.": "Respire hondo.",
			},
		},
		logger: logger,
	}
}

// Name implements repositories.Translator
func (m *MockTranslator) Name() string {
	return "mock"
}

// Translate implements repositories.Translator
func (m *MockTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	m.logger.Info("Processing mock translation",
		zap.String("sourceLang", sourceLang),
		zap.String("targetLang", targetLang))

	if dict, ok := m.Dictionary[targetLang]; ok {
		if translated, ok := dict[text]; ok {
			return translated, nil
		}
	}

	return "[" + targetLang + "] " + text, nil
}
