package tts

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/satriahrh/lintas/domain/repositories"
)

const (
	defaultGoogleLanguage = "en-US"
	defaultGoogleGender   = "FEMALE"
)

// GoogleTTSConfig configures GoogleTextToSpeech.
// Defaults match an en-US female voice producing MP3.
type GoogleTTSConfig struct {
	LanguageCode string
	VoiceName    string
	Gender       string // MALE, FEMALE or NEUTRAL
	SpeakingRate float64
}

type speechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

// GoogleTextToSpeech implements TextToSpeech with Google Cloud Text-to-Speech
type GoogleTextToSpeech struct {
	client       speechSynthesizer
	languageCode string
	voiceName    string
	gender       texttospeechpb.SsmlVoiceGender
	speakingRate float64
	logger       *zap.Logger
}

var _ repositories.TextToSpeech = (*GoogleTextToSpeech)(nil)

// NewGoogleTextToSpeech creates the client with the given credentials options
func NewGoogleTextToSpeech(ctx context.Context, config GoogleTTSConfig, logger *zap.Logger, opts ...option.ClientOption) (*GoogleTextToSpeech, error) {
	gender, err := parseGender(config.Gender)
	if err != nil {
		return nil, err
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}

	return newGoogleTextToSpeech(client, config, gender, logger), nil
}

func newGoogleTextToSpeech(client speechSynthesizer, config GoogleTTSConfig, gender texttospeechpb.SsmlVoiceGender, logger *zap.Logger) *GoogleTextToSpeech {
	languageCode := config.LanguageCode
	if languageCode == "" {
		languageCode = defaultGoogleLanguage
		logger.Info("Using default voice language", zap.String("languageCode", languageCode))
	}

	return &GoogleTextToSpeech{
		client:       client,
		languageCode: languageCode,
		voiceName:    config.VoiceName,
		gender:       gender,
		speakingRate: config.SpeakingRate,
		logger:       logger,
	}
}

// ContentType implements repositories.TextToSpeech
func (g *GoogleTextToSpeech) ContentType() string {
	return "audio/mpeg"
}

// ConvertTextToSpeech synthesizes the whole text in one call and yields it as a single chunk
func (g *GoogleTextToSpeech) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.languageCode,
			Name:         g.voiceName,
			SsmlGender:   g.gender,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  g.speakingRate,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	g.logger.Info("Speech synthesized",
		zap.String("languageCode", g.languageCode),
		zap.Int("audioBytes", len(resp.AudioContent)))

	audioChan := make(chan []byte, 1)
	audioChan <- resp.AudioContent
	close(audioChan)
	return audioChan, nil
}

// Close releases the underlying client
func (g *GoogleTextToSpeech) Close() error {
	return g.client.Close()
}

func parseGender(gender string) (texttospeechpb.SsmlVoiceGender, error) {
	if gender == "" {
		gender = defaultGoogleGender
	}
	switch strings.ToUpper(gender) {
	case "FEMALE":
		return texttospeechpb.SsmlVoiceGender_FEMALE, nil
	case "MALE":
		return texttospeechpb.SsmlVoiceGender_MALE, nil
	case "NEUTRAL":
		return texttospeechpb.SsmlVoiceGender_NEUTRAL, nil
	default:
		return texttospeechpb.SsmlVoiceGender_SSML_VOICE_GENDER_UNSPECIFIED, fmt.Errorf("unsupported voice gender: %s", gender)
	}
}

// NewGoogleTTSConfigFromEnv reads GOOGLE_TTS_* environment variables
func NewGoogleTTSConfigFromEnv() GoogleTTSConfig {
	config := GoogleTTSConfig{
		LanguageCode: os.Getenv("GOOGLE_TTS_LANGUAGE"),
		VoiceName:    os.Getenv("GOOGLE_TTS_VOICE"),
		Gender:       os.Getenv("GOOGLE_TTS_GENDER"),
	}

	if rateStr := os.Getenv("GOOGLE_TTS_SPEAKING_RATE"); rateStr != "" {
		if rate, err := strconv.ParseFloat(rateStr, 64); err == nil && rate >= 0.25 && rate <= 4 {
			config.SpeakingRate = rate
		}
	}

	return config
}
