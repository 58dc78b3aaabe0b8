package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain"
	"github.com/satriahrh/lintas/domain/entities"
	"github.com/satriahrh/lintas/domain/repositories"
)

var (
	// ErrNoTranslationText is returned when a translate request has no text
	ErrNoTranslationText = errors.New("no text provided for translation")
	// ErrLanguageMissing is returned when the source or target language is missing
	ErrLanguageMissing = errors.New("source or target language missing")
	// ErrEmptyTranslation is returned when the engine produced no output
	ErrEmptyTranslation = errors.New("translation engine returned empty output")
	// ErrNoSpeechText is returned when a speak request has no text
	ErrNoSpeechText = errors.New("no text provided for speech synthesis")
)

const archiveTimeout = 30 * time.Second

// TranslationService translates text and synthesizes speech for the HTTP handlers
type TranslationService struct {
	translator   repositories.Translator
	textToSpeech repositories.TextToSpeech
	records      repositories.TranslationRepository
	archive      repositories.AudioArchive
	logger       *zap.Logger
}

// NewTranslationService creates a new translation service.
// records and archive may be nil.
func NewTranslationService(
	translator repositories.Translator,
	tts repositories.TextToSpeech,
	records repositories.TranslationRepository,
	archive repositories.AudioArchive,
	logger *zap.Logger,
) *TranslationService {
	return &TranslationService{
		translator:   translator,
		textToSpeech: tts,
		records:      records,
		archive:      archive,
		logger:       logger,
	}
}

// Translate validates the request, runs the translator and records the result
func (s *TranslationService) Translate(ctx context.Context, req domain.TranslateRequest) (string, error) {
	if req.Text == "" {
		return "", ErrNoTranslationText
	}
	if req.SourceLang == "" || req.TargetLang == "" {
		return "", ErrLanguageMissing
	}

	start := time.Now()
	translated, err := s.translator.Translate(ctx, req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if translated == "" {
		return "", ErrEmptyTranslation
	}
	duration := time.Since(start)

	s.logger.Info("Translation completed",
		zap.String("provider", s.translator.Name()),
		zap.String("sourceLang", req.SourceLang),
		zap.String("targetLang", req.TargetLang),
		zap.Duration("duration", duration))

	if s.records != nil {
		record := &entities.TranslationRecord{
			Text:           req.Text,
			TranslatedText: translated,
			SourceLang:     req.SourceLang,
			TargetLang:     req.TargetLang,
			Provider:       s.translator.Name(),
			DurationMs:     duration.Milliseconds(),
			CreatedAt:      time.Now(),
		}
		if err := s.records.Create(ctx, record); err != nil {
			s.logger.Error("Failed to record translation", zap.Error(err))
		}
	}

	return translated, nil
}

// RecentTranslations returns the latest recorded translations
func (s *TranslationService) RecentTranslations(ctx context.Context, limit int) ([]*entities.TranslationRecord, error) {
	if s.records == nil {
		return []*entities.TranslationRecord{}, nil
	}
	return s.records.ListRecent(ctx, limit)
}

// Speak starts synthesis and returns the audio chunks with their content type.
// When an archive is configured the full artifact is saved after the stream ends.
func (s *TranslationService) Speak(ctx context.Context, text string) (<-chan []byte, string, error) {
	if text == "" {
		return nil, "", ErrNoSpeechText
	}

	audio, err := s.textToSpeech.ConvertTextToSpeech(ctx, text)
	if err != nil {
		return nil, "", fmt.Errorf("synthesize: %w", err)
	}
	contentType := s.textToSpeech.ContentType()

	if s.archive == nil {
		return audio, contentType, nil
	}

	out := make(chan []byte, cap(audio))
	go func() {
		defer close(out)

		var artifact []byte
		complete := true
		for chunk := range audio {
			artifact = append(artifact, chunk...)
			select {
			case out <- chunk:
			case <-ctx.Done():
				complete = false
			}
			if !complete {
				break
			}
		}

		if !complete || len(artifact) == 0 {
			return
		}
		s.saveArtifact(artifact, contentType)
	}()

	return out, contentType, nil
}

func (s *TranslationService) saveArtifact(data []byte, contentType string) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	key := fmt.Sprintf("%s/%s%s", time.Now().UTC().Format("2006/01/02"), uuid.NewString(), extensionFor(contentType))
	location, err := s.archive.Save(ctx, key, data, contentType)
	if err != nil {
		s.logger.Error("Failed to archive synthesized audio", zap.Error(err))
		return
	}

	s.logger.Info("Archived synthesized audio", zap.String("location", location), zap.Int("bytes", len(data)))
}

func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "mpeg"):
		return ".mp3"
	case strings.Contains(contentType, "basic"):
		return ".ulaw"
	case strings.Contains(contentType, "pcm"):
		return ".pcm"
	default:
		return ".bin"
	}
}
