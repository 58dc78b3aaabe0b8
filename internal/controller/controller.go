// Package controller implements the live translation session: it turns
// recognized speech into translation requests and translations into speech.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain"
	"github.com/satriahrh/lintas/domain/entities"
)

var (
	// ErrRecognitionUnavailable is returned when no recognition capability exists
	ErrRecognitionUnavailable = errors.New("speech recognition is not supported")
	// ErrClosed is returned by operations on a closed controller
	ErrClosed = errors.New("controller closed")
)

// Display texts
const (
	StatusListening       = "Status: Listening..."
	TranslationFailedText = "Translation failed. Please try again."
	TranslationErrorText  = "Error during translation: "
)

const (
	defaultRecognitionLanguage = "en-US"
	defaultRequestTimeout      = 30 * time.Second
)

// Config holds controller settings
type Config struct {
	// RecognitionLanguage is the language the recognizer listens for.
	RecognitionLanguage string
	// RequestTimeout bounds each backend request. Negative disables it.
	RequestTimeout time.Duration
}

// Controller owns one live translation session and its sinks
type Controller struct {
	cfg        Config
	recognizer Recognizer
	display    Display
	playback   Playback
	languages  LanguageSelector
	client     *Client
	logger     *zap.Logger

	// ctx is cancelled by Close and parents every task.
	ctx    context.Context
	cancel context.CancelFunc

	tasks sync.WaitGroup
	loop  sync.WaitGroup

	translateSeq atomic.Uint64
	speakSeq     atomic.Uint64

	// mu serializes sink updates and guards the fields below.
	mu              sync.Mutex
	listening       bool
	closed          bool
	translateCancel context.CancelFunc
	speakCancel     context.CancelFunc
	handle          string
}

// New creates a controller. A nil recognizer is fatal.
func New(cfg Config, recognizer Recognizer, display Display, playback Playback, languages LanguageSelector, client *Client, logger *zap.Logger) (*Controller, error) {
	if recognizer == nil {
		logger.Error("Speech recognition capability unavailable")
		return nil, ErrRecognitionUnavailable
	}
	if display == nil || playback == nil || languages == nil || client == nil {
		return nil, errors.New("display, playback, languages and client are required")
	}

	if cfg.RecognitionLanguage == "" {
		cfg.RecognitionLanguage = defaultRecognitionLanguage
		logger.Info("Using default recognition language", zap.String("language", cfg.RecognitionLanguage))
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
		logger.Info("Using default request timeout", zap.Duration("timeout", cfg.RequestTimeout))
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:        cfg,
		recognizer: recognizer,
		display:    display,
		playback:   playback,
		languages:  languages,
		client:     client,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// StartListening opens the recognition session once; later calls are no-ops.
func (c *Controller) StartListening(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.listening {
		c.logger.Debug("Recognition already active")
		return nil
	}

	sessionCtx, cancel := c.bind(ctx, 0)
	events, err := c.recognizer.Start(sessionCtx, entities.RecognitionOptions{
		Language:       c.cfg.RecognitionLanguage,
		Continuous:     true,
		InterimResults: true,
	})
	if err != nil {
		cancel()
		c.logger.Error("Failed to start recognition", zap.Error(err))
		return fmt.Errorf("start recognition: %w", err)
	}

	c.listening = true
	c.display.SetStatus(StatusListening)
	c.logger.Info("Recognition started", zap.String("language", c.cfg.RecognitionLanguage))

	c.loop.Add(1)
	go c.consume(sessionCtx, cancel, events)

	return nil
}

// consume delivers transcript events in arrival order
func (c *Controller) consume(ctx context.Context, cancel context.CancelFunc, events <-chan entities.TranscriptEvent) {
	defer c.loop.Done()
	defer cancel()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				c.mu.Lock()
				c.listening = false
				c.mu.Unlock()
				c.logger.Info("Recognition session ended")
				return
			}
			c.OnTranscript(ev)

		case <-ctx.Done():
			c.mu.Lock()
			c.listening = false
			c.mu.Unlock()
			return
		}
	}
}

// OnTranscript renders the transcript and issues one translation request
func (c *Controller) OnTranscript(ev entities.TranscriptEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.display.SetOriginalText(ev.Text)
	pair := c.languages.Languages()

	seq := c.translateSeq.Add(1)
	if c.translateCancel != nil {
		c.translateCancel()
	}
	ctx, cancel := c.bind(c.ctx, c.cfg.RequestTimeout)
	c.translateCancel = cancel

	req := domain.TranslateRequest{
		Text:       ev.Text,
		SourceLang: pair.Source,
		TargetLang: pair.Target,
	}

	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()
		defer cancel()

		result := c.client.Translate(ctx, req)
		result.Seq = seq
		c.OnTranslationResponse(result)
	}()
}

// OnTranslationResponse renders a translation outcome. Results tagged with a
// sequence number older than the latest request are discarded; zero is never stale.
func (c *Controller) OnTranslationResponse(result entities.TranslationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if result.Seq != 0 && result.Seq != c.translateSeq.Load() {
		c.logger.Debug("Discarding stale translation", zap.Uint64("seq", result.Seq))
		return
	}

	switch {
	case result.Err != nil:
		c.logger.Error("Translation request failed", zap.Error(result.Err))
		c.display.SetTranslatedText(TranslationErrorText + result.Err.Error())
	case result.Failed || result.TranslatedText == "":
		c.display.SetTranslatedText(TranslationFailedText)
	default:
		c.display.SetTranslatedText(result.TranslatedText)
		c.display.SetSpeakVisible(true)
	}
}

// Speak synthesizes the currently displayed translation
func (c *Controller) Speak(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	text := c.display.TranslatedText()

	seq := c.speakSeq.Add(1)
	if c.speakCancel != nil {
		c.speakCancel()
	}
	taskCtx, cancel := c.bind(ctx, c.cfg.RequestTimeout)
	c.speakCancel = cancel

	c.tasks.Add(1)
	go func() {
		defer c.tasks.Done()
		defer cancel()

		result := c.client.Speak(taskCtx, domain.SpeakRequest{Text: text})
		result.Seq = seq
		c.OnSynthesisResponse(result)
	}()

	return nil
}

// OnSynthesisResponse binds a fresh playback handle and starts playback.
// Failures are only logged and leave the player unchanged.
func (c *Controller) OnSynthesisResponse(result entities.SynthesisResult) {
	if result.Err != nil {
		c.logger.Error("Speech synthesis failed", zap.Error(result.Err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if result.Seq != 0 && result.Seq != c.speakSeq.Load() {
		c.logger.Debug("Discarding stale synthesis", zap.Uint64("seq", result.Seq))
		return
	}

	handle, err := c.playback.CreateHandle(result.Artifact)
	if err != nil {
		c.logger.Error("Failed to create playback handle", zap.Error(err))
		return
	}

	if err := c.playback.SetSource(handle); err != nil {
		c.logger.Error("Failed to set playback source", zap.Error(err))
		if err := c.playback.Release(handle); err != nil {
			c.logger.Warn("Failed to release playback handle", zap.Error(err))
		}
		return
	}

	// The previous handle is released only once the new one is the source.
	c.releaseHandle()
	c.handle = handle

	if err := c.playback.Play(c.ctx); err != nil {
		c.logger.Error("Failed to start playback", zap.Error(err))
	}
}

// releaseHandle releases the bound handle; callers hold mu
func (c *Controller) releaseHandle() {
	if c.handle == "" {
		return
	}
	if err := c.playback.Release(c.handle); err != nil {
		c.logger.Warn("Failed to release playback handle", zap.String("handle", c.handle), zap.Error(err))
	}
	c.handle = ""
}

// Wait blocks until all in-flight requests have completed
func (c *Controller) Wait() {
	c.tasks.Wait()
}

// Drain waits for the recognition session to end on its own, then for every
// in-flight request.
func (c *Controller) Drain() {
	c.loop.Wait()
	c.tasks.Wait()
}

// Close cancels recognition and in-flight requests, waits for them and
// releases the bound playback handle.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.tasks.Wait()
	c.loop.Wait()

	c.mu.Lock()
	c.releaseHandle()
	c.mu.Unlock()

	c.logger.Info("Controller closed")
	return nil
}

// bind derives a task context from parent that is also cancelled by Close
func (c *Controller) bind(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	stop := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
