// Package config loads process configuration from flags, environment and .env.
package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/api/option"
)

// Provider names
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderGoogle     = "google"
	ProviderElevenLabs = "elevenlabs"
	ProviderMock       = "mock"

	StoreMemory = "memory"
	StoreMongo  = "mongo"

	ArchiveNone = "none"
	ArchiveFile = "file"
	ArchiveS3   = "s3"
)

// Config holds the settings shared by the serve and listen commands
type Config struct {
	LogLevel  string
	LogFormat string

	// serve
	Port                    string
	StaticDir               string
	TranslatorProvider      string
	TTSProvider             string
	STTProvider             string
	RecordStore             string
	AudioArchive            string
	ArchiveDir              string
	GoogleCredentialsBase64 string

	// listen
	ServerURL           string
	SourceLang          string
	TargetLang          string
	RecognitionLanguage string
	RequestTimeout      time.Duration
	AudioFile           string
	Player              string
	AudioDir            string
}

// SetDefaults registers the default of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("port", "8080")
	v.SetDefault("static_dir", "")
	v.SetDefault("translator_provider", ProviderGemini)
	v.SetDefault("tts_provider", ProviderGoogle)
	v.SetDefault("stt_provider", ProviderGoogle)
	v.SetDefault("record_store", StoreMemory)
	v.SetDefault("audio_archive", ArchiveNone)
	v.SetDefault("archive_dir", "archive")
	v.SetDefault("google_credentials_base64", "")
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("source_lang", "en")
	v.SetDefault("target_lang", "fr")
	v.SetDefault("recognition_language", "en-US")
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("audio_file", "")
	v.SetDefault("player", "")
	v.SetDefault("audio_dir", "")
}

// New returns a viper instance reading defaults and the environment
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads .env when present. A missing file is not an error.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load builds a validated Config from v
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		LogLevel:                v.GetString("log_level"),
		LogFormat:               v.GetString("log_format"),
		Port:                    v.GetString("port"),
		StaticDir:               v.GetString("static_dir"),
		TranslatorProvider:      strings.ToLower(v.GetString("translator_provider")),
		TTSProvider:             strings.ToLower(v.GetString("tts_provider")),
		STTProvider:             strings.ToLower(v.GetString("stt_provider")),
		RecordStore:             strings.ToLower(v.GetString("record_store")),
		AudioArchive:            strings.ToLower(v.GetString("audio_archive")),
		ArchiveDir:              v.GetString("archive_dir"),
		GoogleCredentialsBase64: v.GetString("google_credentials_base64"),
		ServerURL:               v.GetString("server_url"),
		SourceLang:              v.GetString("source_lang"),
		TargetLang:              v.GetString("target_lang"),
		RecognitionLanguage:     v.GetString("recognition_language"),
		RequestTimeout:          v.GetDuration("request_timeout"),
		AudioFile:               v.GetString("audio_file"),
		Player:                  v.GetString("player"),
		AudioDir:                v.GetString("audio_dir"),
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks provider selections
func (c Config) Validate() error {
	checks := []struct {
		key, value string
		allowed    []string
	}{
		{"TRANSLATOR_PROVIDER", c.TranslatorProvider, []string{ProviderGemini, ProviderOpenAI, ProviderMock}},
		{"TTS_PROVIDER", c.TTSProvider, []string{ProviderGoogle, ProviderElevenLabs, ProviderMock}},
		{"STT_PROVIDER", c.STTProvider, []string{ProviderGoogle, ProviderMock}},
		{"RECORD_STORE", c.RecordStore, []string{StoreMemory, StoreMongo}},
		{"AUDIO_ARCHIVE", c.AudioArchive, []string{ArchiveNone, ArchiveFile, ArchiveS3}},
	}

	for _, check := range checks {
		if !contains(check.allowed, check.value) {
			return fmt.Errorf("invalid %s %q, expected one of %s", check.key, check.value, strings.Join(check.allowed, ", "))
		}
	}
	return nil
}

// GoogleClientOptions returns credentials for Google clients. Without
// GOOGLE_CREDENTIALS_BASE64 the clients fall back to default credentials.
func (c Config) GoogleClientOptions() ([]option.ClientOption, error) {
	if c.GoogleCredentialsBase64 == "" {
		return nil, nil
	}

	credentials, err := base64.StdEncoding.DecodeString(c.GoogleCredentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("decode GOOGLE_CREDENTIALS_BASE64: %w", err)
	}
	return []option.ClientOption{option.WithCredentialsJSON(credentials)}, nil
}

// NewLogger builds the process logger; LOG_FORMAT=console selects the development encoder
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
