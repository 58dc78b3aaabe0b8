package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain/repositories"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIConfig holds configuration for the OpenAITranslator adapter
type OpenAIConfig struct {
	APIKey      string // Required
	BaseURL     string // Optional: OpenAI-compatible endpoint
	Model       string // Optional: defaults to gpt-4o-mini
	Temperature float32
	Domain      string
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAITranslator implements Translator with chat completions
type OpenAITranslator struct {
	client      chatCompleter
	model       string
	temperature float32
	domain      string
	logger      *zap.Logger
}

var _ repositories.Translator = (*OpenAITranslator)(nil)

// NewOpenAITranslator creates a translator backed by the OpenAI API
func NewOpenAITranslator(config OpenAIConfig, logger *zap.Logger) (*OpenAITranslator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return newOpenAITranslator(openai.NewClientWithConfig(clientConfig), config, logger), nil
}

func newOpenAITranslator(client chatCompleter, config OpenAIConfig, logger *zap.Logger) *OpenAITranslator {
	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default model", zap.String("model", model))
	}

	temperature := config.Temperature
	if temperature == 0 {
		temperature = float32(defaultTemperature)
	}

	domain := config.Domain
	if domain == "" {
		domain = defaultDomain
	}

	return &OpenAITranslator{
		client:      client,
		model:       model,
		temperature: temperature,
		domain:      domain,
		logger:      logger,
	}
}

// Name implements repositories.Translator
func (o *OpenAITranslator) Name() string {
	return "openai"
}

// Translate implements repositories.Translator
func (o *OpenAITranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction(o.domain)},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(o.domain, text, sourceLang, targetLang)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		o.logger.Warn("No choices returned for translation")
		return "", nil
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// NewOpenAIConfigFromEnv creates a new OpenAIConfig from environment variables
func NewOpenAIConfigFromEnv() OpenAIConfig {
	return OpenAIConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("OPENAI_MODEL"),
		Domain:  os.Getenv("TRANSLATION_DOMAIN"),
	}
}
