package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/lintas/domain"
	"github.com/satriahrh/lintas/domain/entities"
)

type fakeRecognizer struct {
	starts atomic.Int32
	opts   entities.RecognitionOptions
	events chan entities.TranscriptEvent
	ctx    context.Context
	err    error
}

func (r *fakeRecognizer) Start(ctx context.Context, opts entities.RecognitionOptions) (<-chan entities.TranscriptEvent, error) {
	r.starts.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	r.opts = opts
	r.ctx = ctx
	return r.events, nil
}

type displayState struct {
	status       string
	original     string
	translated   string
	speakVisible bool
}

type recordingDisplay struct {
	mu    sync.Mutex
	state displayState
}

func (d *recordingDisplay) SetStatus(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.status = status
}

func (d *recordingDisplay) SetOriginalText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.original = text
}

func (d *recordingDisplay) SetTranslatedText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.translated = text
}

func (d *recordingDisplay) TranslatedText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.translated
}

func (d *recordingDisplay) SetSpeakVisible(visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.speakVisible = visible
}

func (d *recordingDisplay) snapshot() displayState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

type fakePlayback struct {
	mu        sync.Mutex
	next      int
	artifacts map[string]entities.AudioArtifact
	log       []string
	source    string
	createErr error
	sourceErr error
}

func newFakePlayback() *fakePlayback {
	return &fakePlayback{artifacts: make(map[string]entities.AudioArtifact)}
}

func (p *fakePlayback) CreateHandle(artifact entities.AudioArtifact) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return "", p.createErr
	}
	p.next++
	handle := fmt.Sprintf("h%d", p.next)
	p.artifacts[handle] = artifact
	p.log = append(p.log, "create "+handle)
	return handle, nil
}

func (p *fakePlayback) Release(handle string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.artifacts, handle)
	p.log = append(p.log, "release "+handle)
	return nil
}

func (p *fakePlayback) SetSource(handle string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sourceErr != nil {
		return p.sourceErr
	}
	p.source = handle
	p.log = append(p.log, "source "+handle)
	return nil
}

func (p *fakePlayback) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = append(p.log, "play "+p.source)
	return nil
}

func (p *fakePlayback) events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.log...)
}

type staticLanguages entities.LanguagePair

func (l staticLanguages) Languages() entities.LanguagePair { return entities.LanguagePair(l) }

// backend records request bodies per path and answers with the configured handlers
type backend struct {
	mu        sync.Mutex
	translate []string
	speak     []string

	translateHandler http.HandlerFunc
	speakHandler     http.HandlerFunc
	server           *httptest.Server
}

func newBackend(t *testing.T) *backend {
	b := &backend{
		translateHandler: func(w http.ResponseWriter, r *http.Request) {
			var req domain.TranslateRequest
			json.NewDecoder(r.Body).Decode(&req)
			translations := map[string]string{"Hello": "Bonjour", "Where does it hurt?": "Où avez-vous mal ?"}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(domain.TranslateResponse{TranslatedText: translations[req.Text]})
		},
		speakHandler: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("ID3-audio"))
		},
	}

	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		b.mu.Lock()
		switch r.URL.Path {
		case "/translate":
			b.translate = append(b.translate, string(body))
			handler := b.translateHandler
			b.mu.Unlock()
			handler(w, r)
		case "/speak":
			b.speak = append(b.speak, string(body))
			handler := b.speakHandler
			b.mu.Unlock()
			handler(w, r)
		default:
			b.mu.Unlock()
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) requests(path string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if path == "/translate" {
		return append([]string(nil), b.translate...)
	}
	return append([]string(nil), b.speak...)
}

type fixture struct {
	controller *Controller
	recognizer *fakeRecognizer
	display    *recordingDisplay
	playback   *fakePlayback
	backend    *backend
}

func setup(t *testing.T) *fixture {
	t.Helper()

	logger := zaptest.NewLogger(t)
	f := &fixture{
		recognizer: &fakeRecognizer{events: make(chan entities.TranscriptEvent, 16)},
		display:    &recordingDisplay{},
		playback:   newFakePlayback(),
		backend:    newBackend(t),
	}

	c, err := New(
		Config{RequestTimeout: 5 * time.Second},
		f.recognizer,
		f.display,
		f.playback,
		staticLanguages{Source: "en", Target: "fr"},
		NewClient(f.backend.server.URL, nil, logger),
		logger,
	)
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	f.controller = c
	return f
}

func TestNew_RecognitionUnavailable(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := New(Config{}, nil, &recordingDisplay{}, newFakePlayback(), staticLanguages{}, NewClient("http://localhost", nil, logger), logger)
	if !errors.Is(err, ErrRecognitionUnavailable) {
		t.Errorf("Expected ErrRecognitionUnavailable, got %v", err)
	}
}

func TestOnTranscript_IssuesExactlyOneRequest(t *testing.T) {
	f := setup(t)

	f.controller.OnTranscript(entities.TranscriptEvent{Text: "Hello"})
	f.controller.Wait()

	requests := f.backend.requests("/translate")
	if len(requests) != 1 {
		t.Fatalf("Expected exactly 1 translate request, got %d", len(requests))
	}

	var body map[string]string
	if err := json.Unmarshal([]byte(requests[0]), &body); err != nil {
		t.Fatalf("Invalid request body %s: %v", requests[0], err)
	}
	want := map[string]string{"text": "Hello", "source_lang": "en", "target_lang": "fr"}
	if len(body) != len(want) {
		t.Errorf("Expected body %v, got %v", want, body)
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("Expected %s=%q, got %q", k, v, body[k])
		}
	}

	d := f.display.snapshot()
	if d.original != "Hello" {
		t.Errorf("Expected original text 'Hello', got %q", d.original)
	}
	if d.translated != "Bonjour" || !d.speakVisible {
		t.Errorf("Expected 'Bonjour' with speak control shown, got %q visible=%v", d.translated, d.speakVisible)
	}
}

func TestOnTranscript_RendersVerbatim(t *testing.T) {
	f := setup(t)

	f.controller.OnTranscript(entities.TranscriptEvent{Text: "  where does   it hurt "})
	if got := f.display.snapshot().original; got != "  where does   it hurt " {
		t.Errorf("Expected verbatim transcript, got %q", got)
	}
	f.controller.Wait()
}

func TestOnTranslationResponse_MissingField(t *testing.T) {
	f := setup(t)
	f.backend.translateHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Translation failed, please try again."}`))
	}

	f.controller.OnTranscript(entities.TranscriptEvent{Text: "Hello"})
	f.controller.Wait()

	d := f.display.snapshot()
	if d.translated != TranslationFailedText {
		t.Errorf("Expected %q, got %q", TranslationFailedText, d.translated)
	}
	if d.speakVisible {
		t.Error("Speak control visibility should be unchanged")
	}
}

func TestOnTranslationResponse_FailureKeepsVisibility(t *testing.T) {
	f := setup(t)

	f.controller.OnTranslationResponse(entities.TranslationResult{TranslatedText: "Bonjour"})
	f.controller.OnTranslationResponse(entities.TranslationResult{Failed: true})

	d := f.display.snapshot()
	if d.translated != TranslationFailedText {
		t.Errorf("Expected %q, got %q", TranslationFailedText, d.translated)
	}
	if !d.speakVisible {
		t.Error("Speak control should stay visible after a failed translation")
	}
}

func TestOnTranslationResponse_NetworkError(t *testing.T) {
	f := setup(t)
	f.backend.server.Close()

	f.controller.OnTranscript(entities.TranscriptEvent{Text: "Hello"})
	f.controller.Wait()

	if got := f.display.snapshot().translated; !strings.HasPrefix(got, TranslationErrorText) {
		t.Errorf("Expected %q prefix, got %q", TranslationErrorText, got)
	}
}

func TestOnTranslationResponse_DecodeError(t *testing.T) {
	f := setup(t)
	f.backend.translateHandler = func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>bad gateway</html>"))
	}

	f.controller.OnTranscript(entities.TranscriptEvent{Text: "Hello"})
	f.controller.Wait()

	if got := f.display.snapshot().translated; !strings.HasPrefix(got, TranslationErrorText) {
		t.Errorf("Expected %q prefix, got %q", TranslationErrorText, got)
	}
}

func TestSpeak_SendsDisplayedText(t *testing.T) {
	f := setup(t)

	f.controller.OnTranslationResponse(entities.TranslationResult{TranslatedText: "Bonjour"})
	if err := f.controller.Speak(context.Background()); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	f.controller.Wait()

	requests := f.backend.requests("/speak")
	if len(requests) != 1 || strings.TrimSpace(requests[0]) != `{"text":"Bonjour"}` {
		t.Fatalf("Expected one speak request with Bonjour, got %v", requests)
	}

	want := []string{"create h1", "source h1", "play h1"}
	if got := f.playback.events(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected playback %v, got %v", want, got)
	}

	artifact := f.playback.artifacts["h1"]
	if string(artifact.Data) != "ID3-audio" || artifact.ContentType != "audio/mpeg" {
		t.Errorf("Unexpected artifact %+v", artifact)
	}
}

func TestSpeak_EmptyTextIsNotGuarded(t *testing.T) {
	f := setup(t)

	f.controller.Speak(context.Background())
	f.controller.Wait()

	requests := f.backend.requests("/speak")
	if len(requests) != 1 || strings.TrimSpace(requests[0]) != `{"text":""}` {
		t.Errorf("Expected one speak request with empty text, got %v", requests)
	}
}

func TestSpeak_FailureLeavesPlayerUnchanged(t *testing.T) {
	f := setup(t)

	f.controller.OnTranslationResponse(entities.TranslationResult{TranslatedText: "Bonjour"})
	f.controller.Speak(context.Background())
	f.controller.Wait()

	f.backend.mu.Lock()
	f.backend.speakHandler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Error with speech synthesis: quota"}`))
	}
	f.backend.mu.Unlock()

	before := f.playback.events()
	displayBefore := f.display.snapshot()

	f.controller.Speak(context.Background())
	f.controller.Wait()

	if after := f.playback.events(); len(after) != len(before) {
		t.Errorf("Expected player unchanged, got %v", after[len(before):])
	}
	if f.playback.source != "h1" {
		t.Errorf("Expected source to remain h1, got %s", f.playback.source)
	}
	if d := f.display.snapshot(); d != displayBefore {
		t.Errorf("Expected no display change, got %+v", d)
	}
}

func TestSpeak_EmptyAudioLeavesPlayerUnchanged(t *testing.T) {
	f := setup(t)

	f.controller.OnTranslationResponse(entities.TranslationResult{TranslatedText: "Bonjour"})
	f.controller.Speak(context.Background())
	f.controller.Wait()

	f.backend.mu.Lock()
	f.backend.speakHandler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusOK)
	}
	f.backend.mu.Unlock()

	before := f.playback.events()

	f.controller.Speak(context.Background())
	f.controller.Wait()

	if after := f.playback.events(); len(after) != len(before) {
		t.Errorf("Expected player unchanged, got %v", after[len(before):])
	}
	if f.playback.source != "h1" {
		t.Errorf("Expected source to remain h1, got %s", f.playback.source)
	}
}

func TestOnSynthesisResponse_SetSourceFailureKeepsPrevious(t *testing.T) {
	f := setup(t)

	f.controller.OnSynthesisResponse(entities.SynthesisResult{Artifact: entities.AudioArtifact{Data: []byte("first")}})
	f.playback.mu.Lock()
	f.playback.sourceErr = errors.New("device busy")
	f.playback.mu.Unlock()

	f.controller.OnSynthesisResponse(entities.SynthesisResult{Artifact: entities.AudioArtifact{Data: []byte("second")}})

	want := []string{"create h1", "source h1", "play h1", "create h2", "release h2"}
	if got := f.playback.events(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected playback %v, got %v", want, got)
	}
	if f.playback.source != "h1" {
		t.Errorf("Expected source to remain h1, got %s", f.playback.source)
	}
}

func TestSpeak_ReleasesPreviousHandle(t *testing.T) {
	f := setup(t)
	f.controller.OnTranslationResponse(entities.TranslationResult{TranslatedText: "Bonjour"})

	for i := 0; i < 2; i++ {
		f.controller.Speak(context.Background())
		f.controller.Wait()
	}

	want := []string{"create h1", "source h1", "play h1", "create h2", "source h2", "release h1", "play h2"}
	if got := f.playback.events(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected playback %v, got %v", want, got)
	}

	f.controller.Close()

	events := f.playback.events()
	if events[len(events)-1] != "release h2" {
		t.Errorf("Expected Close to release h2, got %v", events)
	}
}

func TestOnSynthesisResponse_StaleDiscarded(t *testing.T) {
	f := setup(t)

	f.controller.Speak(context.Background())
	f.controller.Speak(context.Background())
	f.controller.Wait()

	before := len(f.playback.events())
	f.controller.OnSynthesisResponse(entities.SynthesisResult{Seq: 1, Artifact: entities.AudioArtifact{Data: []byte("old")}})

	if after := f.playback.events(); len(after) != before {
		t.Errorf("Expected stale synthesis to be dropped, got %v", after[before:])
	}
}

func TestOnSynthesisResponse_CreateHandleFailure(t *testing.T) {
	f := setup(t)
	f.playback.createErr = errors.New("disk full")

	f.controller.OnSynthesisResponse(entities.SynthesisResult{Artifact: entities.AudioArtifact{Data: []byte("x")}})

	if events := f.playback.events(); len(events) != 0 {
		t.Errorf("Expected player unchanged, got %v", events)
	}
}

func TestOnTranslationResponse_StaleDiscarded(t *testing.T) {
	f := setup(t)

	f.controller.OnTranscript(entities.TranscriptEvent{Text: "Where does it hurt?"})
	f.controller.OnTranscript(entities.TranscriptEvent{Text: "Hello"})
	f.controller.Wait()

	f.controller.OnTranslationResponse(entities.TranslationResult{Seq: 1, TranslatedText: "stale"})

	if got := f.display.snapshot().translated; got != "Bonjour" {
		t.Errorf("Expected latest translation 'Bonjour', got %q", got)
	}
}

func TestOnTranscript_CancelsPreviousRequest(t *testing.T) {
	f := setup(t)

	cancelled := make(chan struct{})
	f.backend.translateHandler = func(w http.ResponseWriter, r *http.Request) {
		var req domain.TranslateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Text == "slow" {
			select {
			case <-r.Context().Done():
				close(cancelled)
			case <-time.After(5 * time.Second):
			}
			return
		}
		json.NewEncoder(w).Encode(domain.TranslateResponse{TranslatedText: "Bonjour"})
	}

	f.controller.OnTranscript(entities.TranscriptEvent{Text: "slow"})
	waitFor(t, func() bool { return len(f.backend.requests("/translate")) == 1 })

	f.controller.OnTranscript(entities.TranscriptEvent{Text: "Hello"})
	f.controller.Wait()

	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected the slow request to be cancelled")
	}

	if got := f.display.snapshot().translated; got != "Bonjour" {
		t.Errorf("Expected 'Bonjour', got %q", got)
	}
}

func TestStartListening_Idempotent(t *testing.T) {
	f := setup(t)

	for i := 0; i < 2; i++ {
		if err := f.controller.StartListening(context.Background()); err != nil {
			t.Fatalf("StartListening failed: %v", err)
		}
	}

	if n := f.recognizer.starts.Load(); n != 1 {
		t.Errorf("Expected 1 recognition session, got %d", n)
	}
	if !f.recognizer.opts.Continuous || !f.recognizer.opts.InterimResults {
		t.Errorf("Expected continuous interim recognition, got %+v", f.recognizer.opts)
	}
	if got := f.display.snapshot().status; got != StatusListening {
		t.Errorf("Expected status %q, got %q", StatusListening, got)
	}
}

func TestStartListening_DeliversTranscripts(t *testing.T) {
	f := setup(t)

	if err := f.controller.StartListening(context.Background()); err != nil {
		t.Fatalf("StartListening failed: %v", err)
	}

	f.recognizer.events <- entities.TranscriptEvent{Text: "Hello", IsFinal: true}

	waitFor(t, func() bool { return f.display.snapshot().translated == "Bonjour" })

	if got := f.display.snapshot().original; got != "Hello" {
		t.Errorf("Expected original 'Hello', got %q", got)
	}
}

func TestDrain_WaitsForSessionEnd(t *testing.T) {
	f := setup(t)

	f.controller.StartListening(context.Background())
	f.recognizer.events <- entities.TranscriptEvent{Text: "Hello"}
	close(f.recognizer.events)

	f.controller.Drain()

	if got := f.display.snapshot().translated; got != "Bonjour" {
		t.Errorf("Expected 'Bonjour' after drain, got %q", got)
	}

	// The session ended, so listening can start again.
	f.recognizer.events = make(chan entities.TranscriptEvent)
	f.controller.StartListening(context.Background())
	if n := f.recognizer.starts.Load(); n != 2 {
		t.Errorf("Expected a second session after the first ended, got %d", n)
	}
}

func TestStartListening_Error(t *testing.T) {
	f := setup(t)
	f.recognizer.err = errors.New("microphone busy")

	if err := f.controller.StartListening(context.Background()); err == nil {
		t.Fatal("Expected start error")
	}
	if got := f.display.snapshot().status; got != "" {
		t.Errorf("Expected no status change, got %q", got)
	}
}

func TestClose_CancelsRecognition(t *testing.T) {
	f := setup(t)

	f.controller.StartListening(context.Background())
	f.controller.Close()

	select {
	case <-f.recognizer.ctx.Done():
	default:
		t.Error("Expected recognition context to be cancelled")
	}

	if err := f.controller.StartListening(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}
