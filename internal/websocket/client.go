package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"staypulse/internal/config"
	apierrors "staypulse/internal/errors"
	"staypulse/internal/infrastructure"
	"staypulse/internal/services"
	"staypulse/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Outbound messages buffered per client before replies are dropped
	sendBuffer = 64
)

// ClientOptions bounds a session connection
type ClientOptions struct {
	PingPeriod     time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
	RequestTimeout time.Duration
}

// OptionsFromConfig derives client options from the websocket settings
func OptionsFromConfig(cfg config.WebSocketConfig, requestTimeout time.Duration) ClientOptions {
	opts := ClientOptions{
		PingPeriod:     cfg.PingPeriod,
		PongWait:       cfg.PongWait,
		MaxMessageSize: cfg.MaxMessageSize,
		RequestTimeout: requestTimeout,
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	// Pings must arrive before the peer's read deadline expires
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 64 << 10
	}
	return opts
}

// Client is a middleman between the websocket connection and one session.
// Each client owns its selections; nothing is shared with other clients.
type Client struct {
	hub     *Hub
	conn    Connection
	send    chan []byte
	session *services.Session
	valid   *validator.Validate
	opts    ClientOptions

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	// Client metadata
	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger

	// Owned by the read and write pumps respectively
	messagesReceived int64
	messagesSent     int64
}

// NewClient creates a client for a connection and its session
func NewClient(hub *Hub, conn Connection, session *services.Session, valid *validator.Validate, opts ClientOptions, traceID string, logger *slog.Logger) *Client {
	if traceID == "" {
		traceID = uuid.New().String()
	}
	ctx, cancel := context.WithCancel(infrastructure.WithTraceID(context.Background(), traceID))
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		session:     session,
		valid:       valid,
		opts:        opts,
		ctx:         ctx,
		cancel:      cancel,
		id:          session.ID,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger: infrastructure.WithComponent(logger, "websocket.client").With(
			slog.String("client_id", session.ID),
			slog.String("trace_id", traceID)),
	}
}

// ID returns the session ID served by this client
func (c *Client) ID() string {
	return c.id
}

// Close stops both pumps and closes the connection. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.conn.Close()
	})
}

// Greet queues the connect message of a new session
func (c *Client) Greet(rows int) {
	c.enqueue(c.reply(events.MessageTypeConnect, "", events.ConnectData{
		SessionID: c.id,
		Rows:      rows,
	}))
}

// ReadPump reads client requests and answers them in order
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.ctx, "WebSocket client disconnected (readPump)",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived))
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(c.ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.messagesReceived++

		if out := c.handle(message); out != nil {
			c.enqueue(out)
		}
	}
}

// WritePump writes queued replies and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		c.logger.InfoContext(c.ctx, "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent))
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.ctx, "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.ctx, "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

// handle decodes one request and builds its reply. Heartbeats get none.
func (c *Client) handle(data []byte) *events.ServerMessage {
	var msg events.ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return c.fail("", events.ErrCodeInvalidFrame, "message is not valid JSON")
	}

	ctx := c.ctx
	if c.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.RequestTimeout)
		defer cancel()
	}

	switch msg.Type {
	case events.MessageTypeHeartbeat:
		c.logger.DebugContext(ctx, "Heartbeat received")
		return nil

	case events.MessageTypeSelect:
		var req events.SelectRequest
		if err := decode(msg.Data, &req); err != nil {
			return c.fail(msg.ID, events.ErrCodeInvalidFrame, err.Error())
		}
		if !req.View.Valid() {
			return c.fail(msg.ID, events.ErrCodeInvalidView, "unknown view "+string(req.View))
		}
		if err := c.validate(req.Criteria); err != nil {
			return c.fail(msg.ID, events.ErrCodeValidation, err.Error())
		}
		update, err := c.session.Select(ctx, req.View, req.Criteria.Criteria())
		if err != nil {
			return c.failWith(ctx, msg.ID, err)
		}
		return c.reply(events.MessageTypeView, msg.ID, update)

	case events.MessageTypeRecommend:
		var req events.RecommendRequest
		if err := decode(msg.Data, &req); err != nil {
			return c.fail(msg.ID, events.ErrCodeInvalidFrame, err.Error())
		}
		if err := c.validate(req); err != nil {
			return c.fail(msg.ID, events.ErrCodeValidation, err.Error())
		}
		view, err := c.session.Recommend(ctx, req.Query())
		if err != nil {
			return c.failWith(ctx, msg.ID, err)
		}
		return c.reply(events.MessageTypeRecommendation, msg.ID, view)

	case events.MessageTypeOptions:
		var req events.OptionsRequest
		if err := decode(msg.Data, &req); err != nil {
			return c.fail(msg.ID, events.ErrCodeInvalidFrame, err.Error())
		}
		if err := c.validate(req); err != nil {
			return c.fail(msg.ID, events.ErrCodeValidation, err.Error())
		}
		view, err := c.session.Options(ctx, req.NeighbourhoodGroup)
		if err != nil {
			return c.failWith(ctx, msg.ID, err)
		}
		return c.reply(events.MessageTypeOptionsResult, msg.ID, view)
	}

	return c.fail(msg.ID, events.ErrCodeUnsupportedType, "unsupported message type "+string(msg.Type))
}

// validate runs the struct rules and flattens field errors into one line
func (c *Client) validate(v interface{}) error {
	err := c.valid.Struct(v)
	var fieldErrs validator.ValidationErrors
	if err == nil || !errors.As(err, &fieldErrs) {
		return err
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range apierrors.FromValidator(fieldErrs) {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return errors.New(strings.Join(parts, "; "))
}

// failWith maps a service error onto a session error code
func (c *Client) failWith(ctx context.Context, replyTo string, err error) *events.ServerMessage {
	var appErr *apierrors.AppError
	switch {
	case errors.Is(err, services.ErrInvalidView):
		return c.fail(replyTo, events.ErrCodeInvalidView, err.Error())
	case errors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeValidation:
		return c.fail(replyTo, events.ErrCodeValidation, appErr.Message)
	}
	c.logger.ErrorContext(ctx, "session request failed", slog.String("error", err.Error()))
	return c.fail(replyTo, events.ErrCodeServerError, "request could not be completed")
}

func (c *Client) fail(replyTo, code, message string) *events.ServerMessage {
	return c.reply(events.MessageTypeError, replyTo, events.ErrorMessage{Code: code, Message: message})
}

func (c *Client) reply(t events.MessageType, replyTo string, data interface{}) *events.ServerMessage {
	return &events.ServerMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.New().String(),
			Type:      t,
			Timestamp: time.Now().UTC(),
			TraceID:   c.traceID,
			ReplyTo:   replyTo,
		},
		Data: data,
	}
}

// enqueue hands a message to the write pump without blocking the reader. A
// client too slow to drain its buffer loses the reply.
func (c *Client) enqueue(msg *events.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(c.ctx, "Failed to encode message",
			slog.String("type", string(msg.Type)),
			slog.String("error", err.Error()))
		return
	}
	select {
	case c.send <- data:
	case <-c.ctx.Done():
	default:
		c.logger.WarnContext(c.ctx, "Send buffer full, dropping message",
			slog.String("type", string(msg.Type)))
	}
}

// decode reads a request payload. An absent payload leaves v at its zero value.
func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.New("malformed message data: " + err.Error())
	}
	return nil
}
