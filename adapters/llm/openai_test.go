package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap/zaptest"
)

type fakeCompleter struct {
	request openai.ChatCompletionRequest
	resp    openai.ChatCompletionResponse
	err     error
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.request = request
	return f.resp, f.err
}

func TestNewOpenAITranslator_RequiresKey(t *testing.T) {
	if _, err := NewOpenAITranslator(OpenAIConfig{}, zaptest.NewLogger(t)); err == nil {
		t.Error("Expected error when API key is not set")
	}
}

func TestOpenAITranslator_Translate(t *testing.T) {
	completer := &fakeCompleter{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: " Bonjour "}}},
	}}
	o := newOpenAITranslator(completer, OpenAIConfig{APIKey: "k"}, zaptest.NewLogger(t))

	got, err := o.Translate(context.Background(), "Hello", "en", "fr")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Bonjour" {
		t.Errorf("Expected 'Bonjour', got %q", got)
	}

	if completer.request.Model != defaultOpenAIModel {
		t.Errorf("Expected model %s, got %s", defaultOpenAIModel, completer.request.Model)
	}
	if len(completer.request.Messages) != 2 || completer.request.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("Expected system and user messages, got %+v", completer.request.Messages)
	}
}

func TestOpenAITranslator_Error(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	o := newOpenAITranslator(completer, OpenAIConfig{APIKey: "k"}, zaptest.NewLogger(t))

	if _, err := o.Translate(context.Background(), "Hello", "en", "fr"); err == nil {
		t.Error("Expected error from provider")
	}
}

func TestOpenAITranslator_NoChoices(t *testing.T) {
	o := newOpenAITranslator(&fakeCompleter{}, OpenAIConfig{APIKey: "k"}, zaptest.NewLogger(t))

	got, err := o.Translate(context.Background(), "Hello", "en", "fr")
	if err != nil || got != "" {
		t.Errorf("Expected empty result without error, got %q, %v", got, err)
	}
}
