package console

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain/entities"
)

// Playback materializes audio artifacts as files and plays them with an
// optional external command, e.g. ["mpv", "--no-video"].
type Playback struct {
	dir     string
	ownsDir bool
	command []string
	logger  *zap.Logger

	mu      sync.Mutex
	handles map[string]string
	source  string
	player  *exec.Cmd
}

// NewPlayback stores artifacts in dir, or in a fresh temp directory when dir is empty
func NewPlayback(dir string, command []string, logger *zap.Logger) (*Playback, error) {
	ownsDir := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "lintas-audio-")
		if err != nil {
			return nil, fmt.Errorf("create audio directory: %w", err)
		}
		dir = tmp
		ownsDir = true
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio directory: %w", err)
	}

	return &Playback{
		dir:     dir,
		ownsDir: ownsDir,
		command: command,
		logger:  logger,
		handles: make(map[string]string),
	}, nil
}

// CreateHandle writes the artifact to a new file and returns its handle
func (p *Playback) CreateHandle(artifact entities.AudioArtifact) (string, error) {
	handle := uuid.NewString()
	path := filepath.Join(p.dir, handle+extension(artifact.ContentType))

	if err := os.WriteFile(path, artifact.Data, 0o600); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}

	p.mu.Lock()
	p.handles[handle] = path
	p.mu.Unlock()

	return handle, nil
}

// Release stops playback of the handle if needed and deletes its file
func (p *Playback) Release(handle string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	path, ok := p.handles[handle]
	if !ok {
		return fmt.Errorf("unknown handle %s", handle)
	}

	if p.source == handle {
		p.stopLocked()
		p.source = ""
	}
	delete(p.handles, handle)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove audio: %w", err)
	}
	return nil
}

// SetSource selects the handle to play next
func (p *Playback) SetSource(handle string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.handles[handle]; !ok {
		return fmt.Errorf("unknown handle %s", handle)
	}
	p.stopLocked()
	p.source = handle
	return nil
}

// Play starts the player on the current source and returns immediately
func (p *Playback) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	path, ok := p.handles[p.source]
	if !ok {
		return fmt.Errorf("no playback source")
	}

	if len(p.command) == 0 {
		p.logger.Info("Audio ready", zap.String("path", path))
		return nil
	}

	p.stopLocked()

	args := append(append([]string{}, p.command[1:]...), path)
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	p.player = cmd

	go func() {
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			p.logger.Debug("Player exited", zap.Error(err))
		}
	}()

	p.logger.Info("Playing audio", zap.String("player", p.command[0]), zap.String("path", path))
	return nil
}

// Path returns the file behind a handle
func (p *Playback) Path(handle string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	path, ok := p.handles[handle]
	return path, ok
}

// Close releases every handle and removes a temp directory it created
func (p *Playback) Close() error {
	p.mu.Lock()
	p.stopLocked()
	for handle, path := range p.handles {
		os.Remove(path)
		delete(p.handles, handle)
	}
	p.source = ""
	p.mu.Unlock()

	if p.ownsDir {
		return os.RemoveAll(p.dir)
	}
	return nil
}

func (p *Playback) stopLocked() {
	if p.player != nil && p.player.Process != nil {
		p.player.Process.Kill()
	}
	p.player = nil
}

func extension(contentType string) string {
	switch {
	case strings.Contains(contentType, "mpeg"):
		return ".mp3"
	case strings.Contains(contentType, "wav"):
		return ".wav"
	case strings.Contains(contentType, "ogg"):
		return ".ogg"
	default:
		return ".audio"
	}
}
