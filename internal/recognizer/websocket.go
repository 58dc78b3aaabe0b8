// Package recognizer provides speech recognition sessions for the controller.
package recognizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain"
	"github.com/satriahrh/lintas/domain/entities"
)

const (
	defaultChunkSize  = 3200 // 100ms of 16kHz LINEAR16
	defaultSampleRate = 16000
	defaultEncoding   = "LINEAR16"
	handshakeTimeout  = 10 * time.Second
	writeWait         = 10 * time.Second
)

// WebSocketConfig configures a WebSocketRecognizer
type WebSocketConfig struct {
	// URL of the backend recognition socket, e.g. ws://localhost:8080/ws/recognize
	URL        string
	SampleRate int
	Encoding   string
	ChunkSize  int
	// Realtime paces audio frames at the rate they would be captured.
	Realtime bool
}

// WebSocketRecognizer streams audio from a reader to the backend's recognition socket
type WebSocketRecognizer struct {
	config WebSocketConfig
	audio  io.Reader
	dialer *websocket.Dialer
	logger *zap.Logger
}

// NewWebSocketRecognizer creates a recognizer reading audio from audio
func NewWebSocketRecognizer(config WebSocketConfig, audio io.Reader, logger *zap.Logger) (*WebSocketRecognizer, error) {
	if config.URL == "" {
		return nil, errors.New("recognition URL is required")
	}
	if audio == nil {
		return nil, errors.New("audio source is required")
	}
	if config.SampleRate == 0 {
		config.SampleRate = defaultSampleRate
	}
	if config.Encoding == "" {
		config.Encoding = defaultEncoding
	}
	if config.ChunkSize == 0 {
		config.ChunkSize = defaultChunkSize
	}

	return &WebSocketRecognizer{
		config: config,
		audio:  audio,
		dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		logger: logger,
	}, nil
}

// Start dials the socket, opens a recognition session and starts streaming audio
func (r *WebSocketRecognizer) Start(ctx context.Context, opts entities.RecognitionOptions) (<-chan entities.TranscriptEvent, error) {
	if opts.SampleRate == 0 {
		opts.SampleRate = r.config.SampleRate
	}
	if opts.Encoding == "" {
		opts.Encoding = r.config.Encoding
	}

	conn, _, err := r.dialer.DialContext(ctx, r.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial recognition socket: %w", err)
	}

	if err := conn.WriteJSON(domain.RecognitionStartMessage{
		Type:               domain.MessageTypeRecognitionStart,
		RecognitionOptions: opts,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send recognition start: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	var reply domain.RecognitionErrorMessage
	if err := conn.ReadJSON(&reply); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read recognition reply: %w", err)
	}
	if reply.Type != domain.MessageTypeRecognitionStarted {
		conn.Close()
		return nil, fmt.Errorf("recognition rejected: %s: %s", reply.Code, reply.Message)
	}
	conn.SetReadDeadline(time.Time{})

	r.logger.Info("Recognition session opened",
		zap.String("url", r.config.URL),
		zap.String("language", opts.Language))

	s := &socketSession{
		conn:   conn,
		config: r.config,
		audio:  r.audio,
		events: make(chan entities.TranscriptEvent, 16),
		logger: r.logger,
	}

	go s.readLoop(ctx)
	go s.streamAudio(ctx)
	go func() {
		<-ctx.Done()
		s.close()
	}()

	return s.events, nil
}

type socketSession struct {
	conn   *websocket.Conn
	config WebSocketConfig
	audio  io.Reader
	events chan entities.TranscriptEvent
	logger *zap.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (s *socketSession) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

func (s *socketSession) close() {
	s.closeOnce.Do(func() {
		s.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	})
}

// streamAudio sends the audio as binary frames, then asks the server to stop
func (s *socketSession) streamAudio(ctx context.Context) {
	buf := make([]byte, s.config.ChunkSize)
	bytesPerSecond := s.config.SampleRate * 2
	sent := 0

	for {
		n, err := io.ReadFull(s.audio, buf)
		if n > 0 {
			if werr := s.write(websocket.BinaryMessage, buf[:n]); werr != nil {
				s.logger.Warn("Failed to send audio", zap.Error(werr))
				return
			}
			sent += n

			if s.config.Realtime && bytesPerSecond > 0 {
				select {
				case <-time.After(time.Duration(n) * time.Second / time.Duration(bytesPerSecond)):
				case <-ctx.Done():
					return
				}
			}
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			s.logger.Error("Failed to read audio", zap.Error(err))
			break
		}
		if ctx.Err() != nil {
			return
		}
	}

	s.logger.Info("Audio stream finished", zap.Int("bytes", sent))

	stop, _ := json.Marshal(domain.RecognitionMessage{Type: domain.MessageTypeRecognitionStop})
	if err := s.write(websocket.TextMessage, stop); err != nil {
		s.logger.Warn("Failed to send recognition stop", zap.Error(err))
	}
}

// readLoop turns transcript messages into events until the session ends
func (s *socketSession) readLoop(ctx context.Context) {
	defer close(s.events)
	defer s.close()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				s.logger.Warn("Recognition socket closed", zap.Error(err))
			}
			return
		}

		var msg domain.TranscriptMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("Invalid recognition message", zap.Error(err))
			continue
		}

		switch msg.Type {
		case domain.MessageTypeTranscript:
			ev := entities.TranscriptEvent{
				Text:       msg.Text,
				IsFinal:    msg.IsFinal,
				Stability:  msg.Stability,
				ReceivedAt: time.UnixMilli(msg.Timestamp),
			}
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return
			}

		case domain.MessageTypeRecognitionEnded:
			s.logger.Info("Recognition session ended by server")
			return

		case domain.MessageTypeError:
			var e domain.RecognitionErrorMessage
			json.Unmarshal(data, &e)
			s.logger.Error("Recognition error", zap.String("code", e.Code), zap.String("message", e.Message))
		}
	}
}
