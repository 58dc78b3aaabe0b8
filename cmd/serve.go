package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/satriahrh/lintas/adapters"
	"github.com/satriahrh/lintas/adapters/llm"
	"github.com/satriahrh/lintas/adapters/mongo"
	"github.com/satriahrh/lintas/adapters/storage"
	"github.com/satriahrh/lintas/adapters/stt"
	"github.com/satriahrh/lintas/adapters/tts"
	"github.com/satriahrh/lintas/domain/repositories"
	"github.com/satriahrh/lintas/internal/api"
	"github.com/satriahrh/lintas/internal/config"
	"github.com/satriahrh/lintas/internal/websocket"
	"github.com/satriahrh/lintas/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the translation backend",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "8080", "HTTP port")
	serveCmd.Flags().String("static-dir", "", "Directory with index.html to serve at /")
	serveCmd.Flags().String("translator", config.ProviderGemini, "Translator provider (gemini, openai, mock)")
	serveCmd.Flags().String("tts", config.ProviderGoogle, "Text-to-speech provider (google, elevenlabs, mock)")
	serveCmd.Flags().String("stt", config.ProviderGoogle, "Speech-to-text provider (google, mock)")
	v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	v.BindPFlag("static_dir", serveCmd.Flags().Lookup("static-dir"))
	v.BindPFlag("translator_provider", serveCmd.Flags().Lookup("translator"))
	v.BindPFlag("tts_provider", serveCmd.Flags().Lookup("tts"))
	v.BindPFlag("stt_provider", serveCmd.Flags().Lookup("stt"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	googleOpts, err := cfg.GoogleClientOptions()
	if err != nil {
		return err
	}

	// Initialize adapters
	translator, err := newTranslator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init translator: %w", err)
	}

	textToSpeech, closeTTS, err := newTextToSpeech(ctx, cfg, googleOpts, logger)
	if err != nil {
		return fmt.Errorf("init text-to-speech: %w", err)
	}
	defer closeTTS()

	speechToText := newSpeechToText(cfg, googleOpts, logger)

	records, closeRecords, err := newRecordStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init record store: %w", err)
	}
	defer closeRecords()

	archive, err := newAudioArchive(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init audio archive: %w", err)
	}

	// Initialize usecase services
	service := usecase.NewTranslationService(translator, textToSpeech, records, archive, logger)

	hub := websocket.NewHub(speechToText, logger)
	go hub.Run(ctx)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("Request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize API routes
	api.InitRoutes(e, service, hub, cfg.StaticDir, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("translator", translator.Name()),
		zap.String("tts", cfg.TTSProvider),
		zap.String("stt", cfg.STTProvider),
		zap.String("records", cfg.RecordStore),
		zap.String("archive", cfg.AudioArchive))

	<-ctx.Done()

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}

func newTranslator(ctx context.Context, cfg config.Config, logger *zap.Logger) (repositories.Translator, error) {
	switch cfg.TranslatorProvider {
	case config.ProviderOpenAI:
		return llm.NewOpenAITranslator(llm.NewOpenAIConfigFromEnv(), logger)
	case config.ProviderMock:
		return llm.NewMockTranslator(logger), nil
	default:
		return llm.NewGeminiTranslator(ctx, llm.NewGeminiConfigFromEnv(), logger)
	}
}

func newTextToSpeech(ctx context.Context, cfg config.Config, opts []option.ClientOption, logger *zap.Logger) (repositories.TextToSpeech, func(), error) {
	noop := func() {}

	switch cfg.TTSProvider {
	case config.ProviderElevenLabs:
		t, err := tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
		if err != nil {
			return nil, noop, err
		}
		return t, noop, nil
	case config.ProviderMock:
		return tts.NewMockTextToSpeech(logger), noop, nil
	default:
		t, err := tts.NewGoogleTextToSpeech(ctx, tts.NewGoogleTTSConfigFromEnv(), logger, opts...)
		if err != nil {
			return nil, noop, err
		}
		return t, func() { t.Close() }, nil
	}
}

func newSpeechToText(cfg config.Config, opts []option.ClientOption, logger *zap.Logger) repositories.SpeechToText {
	if cfg.STTProvider == config.ProviderMock {
		return stt.NewMockSpeechToText(logger)
	}
	return stt.NewGoogleSpeechToText(logger, opts...)
}

func newRecordStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repositories.TranslationRepository, func(), error) {
	if cfg.RecordStore != config.StoreMongo {
		return adapters.NewMemoryTranslationRepository(1000), func() {}, nil
	}

	client, err := mongo.NewClient(ctx, mongo.NewConfigFromEnv(), logger)
	if err != nil {
		return nil, func() {}, err
	}

	closeFn := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Close(closeCtx)
	}
	return mongo.NewTranslationRepository(client.Database, logger), closeFn, nil
}

func newAudioArchive(ctx context.Context, cfg config.Config, logger *zap.Logger) (repositories.AudioArchive, error) {
	switch cfg.AudioArchive {
	case config.ArchiveFile:
		return storage.NewFileArchive(cfg.ArchiveDir, logger)
	case config.ArchiveS3:
		return storage.NewS3Archive(ctx, storage.NewS3ConfigFromEnv(), logger)
	default:
		return nil, nil
	}
}
