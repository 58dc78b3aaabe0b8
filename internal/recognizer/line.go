package recognizer

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain/entities"
)

// LineRecognizer treats each non-blank line of text as a final transcript
type LineRecognizer struct {
	input  io.Reader
	logger *zap.Logger
}

// NewLineRecognizer creates a recognizer over typed input
func NewLineRecognizer(input io.Reader, logger *zap.Logger) *LineRecognizer {
	return &LineRecognizer{input: input, logger: logger}
}

// Start emits one event per line until input ends or ctx is cancelled
func (r *LineRecognizer) Start(ctx context.Context, opts entities.RecognitionOptions) (<-chan entities.TranscriptEvent, error) {
	events := make(chan entities.TranscriptEvent)

	go func() {
		defer close(events)

		scanner := bufio.NewScanner(r.input)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			select {
			case events <- entities.TranscriptEvent{Text: line, IsFinal: true, Stability: 1, ReceivedAt: time.Now()}:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error("Failed to read input", zap.Error(err))
		}
	}()

	return events, nil
}
