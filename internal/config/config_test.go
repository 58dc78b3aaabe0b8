package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Port != "8080" || c.TranslatorProvider != ProviderGemini || c.TTSProvider != ProviderGoogle {
		t.Errorf("Unexpected defaults %+v", c)
	}
	if c.RequestTimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", c.RequestTimeout)
	}
	if c.SourceLang != "en" || c.TargetLang != "fr" {
		t.Errorf("Unexpected default languages %s -> %s", c.SourceLang, c.TargetLang)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TRANSLATOR_PROVIDER", "OpenAI")
	t.Setenv("RECORD_STORE", "mongo")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("PORT", "9090")

	c, err := Load(New())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.TranslatorProvider != ProviderOpenAI || c.RecordStore != StoreMongo || c.Port != "9090" {
		t.Errorf("Environment not applied: %+v", c)
	}
	if c.RequestTimeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", c.RequestTimeout)
	}
}

func TestLoad_InvalidProvider(t *testing.T) {
	t.Setenv("TTS_PROVIDER", "festival")

	if _, err := Load(New()); err == nil {
		t.Error("Expected error for unknown TTS provider")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(path, []byte("LINTAS_DOTENV_TEST=loaded\n"), 0o644)
	t.Cleanup(func() { os.Unsetenv("LINTAS_DOTENV_TEST") })

	LoadDotEnv(path)

	if got := os.Getenv("LINTAS_DOTENV_TEST"); got != "loaded" {
		t.Errorf("Expected .env value to be loaded, got %q", got)
	}

	// Missing files are ignored.
	LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}

func TestGoogleClientOptions(t *testing.T) {
	opts, err := Config{}.GoogleClientOptions()
	if err != nil || opts != nil {
		t.Errorf("Expected no options without credentials, got %v, %v", opts, err)
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`))
	opts, err = Config{GoogleCredentialsBase64: encoded}.GoogleClientOptions()
	if err != nil || len(opts) != 1 {
		t.Errorf("Expected one credentials option, got %v, %v", opts, err)
	}

	if _, err := (Config{GoogleCredentialsBase64: "%%%"}).GoogleClientOptions(); err == nil {
		t.Error("Expected decode error")
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := Config{LogLevel: "debug", LogFormat: format}.NewLogger()
		if err != nil {
			t.Fatalf("NewLogger(%s) failed: %v", format, err)
		}
		logger.Sync()
	}

	if _, err := (Config{LogLevel: "loud"}).NewLogger(); err == nil {
		t.Error("Expected error for invalid level")
	}
}
