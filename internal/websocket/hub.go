package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/lintas/domain"
	"github.com/satriahrh/lintas/domain/repositories"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio chunks
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of connected recognition clients.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	// Closed when Run returns.
	stopped chan struct{}

	sttRepo   repositories.SpeechToText
	validator *MessageValidator

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(sttRepo repositories.SpeechToText, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		sttRepo:    sttRepo,
		validator:  NewMessageValidator(),
		logger:     logger,
	}
}

// Run starts the hub's main loop until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("clientID", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.done)
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.id))

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.done)
			}
			h.mu.Unlock()
			h.logger.Info("Hub stopped")
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Closed by the hub when the client is unregistered.
	done chan struct{}

	id     string
	logger *zap.Logger

	// ctx bounds every recognition stream opened by this client.
	ctx    context.Context
	cancel context.CancelFunc

	stream     repositories.SpeechToTextStreaming
	chunkCount int
	forwarders sync.WaitGroup

	mutex sync.Mutex
}

// HandleWebSocket upgrades the request and serves one recognition client.
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan WriteData, 256),
		done:   make(chan struct{}),
		id:     id,
		logger: logger.With(zap.String("clientID", id)),
		ctx:    ctx,
		cancel: cancel,
	}

	select {
	case hub.register <- client:
	case <-hub.stopped:
		cancel()
		conn.Close()
		logger.Warn("Rejected recognition client, hub stopped")
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the recognizer.
func (c *Client) readPump() {
	defer func() {
		c.endStream()
		c.cancel()
		c.forwarders.Wait()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processBinaryAudioChunk(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendJSON queues a text frame unless the client is gone
func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}

	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	case <-c.done:
	case <-c.ctx.Done():
	}
}

func (c *Client) sendError(code, message string) {
	c.sendJSON(CreateErrorMessage(code, message))
}

// processMessage processes control messages from the peer
func (c *Client) processMessage(message []byte) {
	msg, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Invalid message", zap.Error(err))
		c.sendError(ErrorCodeInvalidMessage, err.Error())
		return
	}

	switch m := msg.(type) {
	case *domain.RecognitionStartMessage:
		c.handleRecognitionStart(m)
	case *domain.RecognitionMessage:
		c.handleRecognitionStop()
	}
}

// processBinaryAudioChunk streams binary audio to the active recognition
func (c *Client) processBinaryAudioChunk(data []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.stream == nil {
		c.logger.Warn("Received binary audio chunk but no active recognition", zap.Int("size", len(data)))
		return
	}

	c.chunkCount++

	if err := c.stream.Stream(data); err != nil {
		c.logger.Error("Failed to stream audio data", zap.Error(err))
		c.sendError(ErrorCodeStreamFailed, err.Error())
		return
	}

	c.logger.Debug("Streamed audio chunk",
		zap.Int("size", len(data)),
		zap.Int("totalChunks", c.chunkCount))
}

// handleRecognitionStart opens a streaming recognition and forwards its results
func (c *Client) handleRecognitionStart(msg *domain.RecognitionStartMessage) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.stream != nil {
		c.sendError(ErrorCodeRecognitionActive, "recognition already started")
		return
	}

	stream, err := c.hub.sttRepo.InitTranscribeStreaming(c.ctx, repositories.AudioConfig{
		SampleRate:     msg.SampleRate,
		Encoding:       msg.Encoding,
		Language:       msg.Language,
		Continuous:     msg.Continuous,
		InterimResults: msg.InterimResults,
	})
	if err != nil {
		c.logger.Error("Failed to initialize streaming recognition", zap.Error(err))
		c.sendError(ErrorCodeRecognitionUnavailable, err.Error())
		return
	}

	c.stream = stream
	c.chunkCount = 0

	c.logger.Info("Recognition started",
		zap.String("language", msg.Language),
		zap.Int("sampleRate", msg.SampleRate),
		zap.Bool("continuous", msg.Continuous),
		zap.Bool("interimResults", msg.InterimResults))

	c.sendJSON(domain.RecognitionMessage{Type: domain.MessageTypeRecognitionStarted})

	c.forwarders.Add(1)
	go c.forwardResults(stream)
}

// forwardResults relays transcripts until the stream's results close
func (c *Client) forwardResults(stream repositories.SpeechToTextStreaming) {
	defer c.forwarders.Done()

	count := 0
	for ev := range stream.Results() {
		count++
		c.sendJSON(CreateTranscriptMessage(ev))
	}

	c.mutex.Lock()
	if c.stream == stream {
		// The recognizer ended on its own, e.g. a single utterance.
		c.stream = nil
	}
	c.mutex.Unlock()

	c.logger.Info("Recognition ended", zap.Int("transcripts", count))
	c.sendJSON(domain.RecognitionMessage{Type: domain.MessageTypeRecognitionEnded})
}

// handleRecognitionStop ends the active recognition
func (c *Client) handleRecognitionStop() {
	c.mutex.Lock()
	active := c.stream != nil
	c.mutex.Unlock()

	if !active {
		c.sendError(ErrorCodeNoActiveRecognition, "no active recognition")
		return
	}

	if err := c.endStream(); err != nil {
		c.sendError(ErrorCodeStreamFailed, err.Error())
	}
}

// endStream detaches and ends the active stream, if any
func (c *Client) endStream() error {
	c.mutex.Lock()
	stream := c.stream
	c.stream = nil
	c.mutex.Unlock()

	if stream == nil {
		return nil
	}

	if err := stream.End(); err != nil {
		c.logger.Error("Failed to end recognition stream", zap.Error(err))
		return err
	}
	return nil
}
