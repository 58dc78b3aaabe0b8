package recognizer

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/lintas/domain/entities"
)

func TestLineRecognizer(t *testing.T) {
	input := strings.NewReader("Hello\n\n  Where does it hurt?  \n")
	r := NewLineRecognizer(input, zaptest.NewLogger(t))

	events, err := r.Start(context.Background(), entities.RecognitionOptions{})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var texts []string
	for ev := range events {
		if !ev.IsFinal {
			t.Errorf("Expected final event, got %+v", ev)
		}
		texts = append(texts, ev.Text)
	}

	if strings.Join(texts, "|") != "Hello|Where does it hurt?" {
		t.Errorf("Unexpected transcripts %v", texts)
	}
}

func TestLineRecognizer_Cancel(t *testing.T) {
	r := NewLineRecognizer(strings.NewReader("one\ntwo\nthree\n"), zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	events, _ := r.Start(ctx, entities.RecognitionOptions{})

	<-events
	cancel()

	for range events {
	}
}
