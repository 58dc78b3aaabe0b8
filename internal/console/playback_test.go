package console

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/lintas/domain/entities"
)

func TestPlayback_HandleLifecycle(t *testing.T) {
	p, err := NewPlayback(t.TempDir(), nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create playback: %v", err)
	}

	handle, err := p.CreateHandle(entities.AudioArtifact{Data: []byte("mp3"), ContentType: "audio/mpeg"})
	if err != nil {
		t.Fatalf("CreateHandle failed: %v", err)
	}

	path, ok := p.Path(handle)
	if !ok || !strings.HasSuffix(path, ".mp3") {
		t.Fatalf("Unexpected path %q", path)
	}
	if data, _ := os.ReadFile(path); string(data) != "mp3" {
		t.Errorf("Expected artifact data on disk, got %q", data)
	}

	if err := p.SetSource(handle); err != nil {
		t.Fatalf("SetSource failed: %v", err)
	}
	if err := p.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if err := p.Release(handle); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected file to be removed, got %v", err)
	}
	if err := p.Release(handle); err == nil {
		t.Error("Expected error releasing an unknown handle")
	}
	if err := p.Play(context.Background()); err == nil {
		t.Error("Expected error playing without a source")
	}
}

func TestPlayback_UnknownSource(t *testing.T) {
	p, _ := NewPlayback(t.TempDir(), nil, zaptest.NewLogger(t))

	if err := p.SetSource("missing"); err == nil {
		t.Error("Expected error for unknown handle")
	}
}

func TestPlayback_ExternalPlayer(t *testing.T) {
	player, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true command not available")
	}

	p, _ := NewPlayback(t.TempDir(), []string{player}, zaptest.NewLogger(t))
	handle, _ := p.CreateHandle(entities.AudioArtifact{Data: []byte("x"), ContentType: "audio/mpeg"})
	p.SetSource(handle)

	if err := p.Play(context.Background()); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
}

func TestPlayback_CloseRemovesTempDir(t *testing.T) {
	p, err := NewPlayback("", nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create playback: %v", err)
	}

	handle, _ := p.CreateHandle(entities.AudioArtifact{Data: []byte("x")})
	path, _ := p.Path(handle)

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Errorf("Expected temp dir to be removed, got %v", err)
	}
}
