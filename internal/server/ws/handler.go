// Package ws carries the board's event channel over WebSocket. Each text
// frame holds exactly one JSON protocol.Envelope in either direction.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/sketchboard/internal/board/models"
	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/board/session"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
)

// Board is the part of the session the transport drives.
type Board interface {
	Join(ctx context.Context, p session.Peer) (models.User, error)
	Leave(ctx context.Context, id string) error
	Handle(ctx context.Context, id string, env protocol.Envelope) error
}

type Options struct {
	SendBufferSize int
	WriteTimeout   time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
}

const (
	minSendBuffer  = 16
	leaveTimeout   = time.Second
	defaultMaxSize = 1 << 20
)

type Handler struct {
	board    Board
	logger   logging.Logger
	opts     Options
	upgrader websocket.Upgrader
}

func NewHandler(b Board, l logging.Logger, opts Options) *Handler {
	if opts.SendBufferSize < minSendBuffer {
		opts.SendBufferSize = minSendBuffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = defaultMaxSize
	}
	return &Handler{
		board:  b,
		logger: l.With("module", "ws"),
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(ctx, "upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := newConn(wsConn, h.opts.SendBufferSize)

	user, err := h.board.Join(ctx, c)
	if err != nil {
		h.logger.Error(ctx, "join failed", "remote", r.RemoteAddr, "err", err)
		_ = wsConn.Close()
		return
	}
	log := h.logger.With("conn", user.ID)
	log.Info(ctx, "Connection opened", "remote", r.RemoteAddr)

	written := make(chan struct{})
	go func() {
		defer close(written)
		h.writeLoop(ctx, c)
	}()

	h.readLoop(ctx, c, user.ID, log)
	c.close()

	leaveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaveTimeout)
	defer cancel()
	if err := h.board.Leave(leaveCtx, user.ID); err != nil {
		log.Warn(ctx, "leave failed", "err", err)
	}
	<-written
	log.Info(ctx, "Connection closed")
}

func (h *Handler) readLoop(ctx context.Context, c *conn, id string, log logging.Logger) {
	c.ws.SetReadLimit(h.opts.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	})

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn(ctx, "read failed", "err", err)
			}
			return
		}
		env, err := protocol.Decode(frame)
		if err != nil {
			log.Warn(ctx, "frame dropped", "err", err)
			continue
		}
		if err := h.board.Handle(ctx, id, env); err != nil {
			log.Warn(ctx, "event not handled", "event", env.Type, "err", err)
			return
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, c *conn) {
	ping := time.NewTicker(h.opts.PongWait * 9 / 10)
	defer func() {
		ping.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case env := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := c.ws.WriteJSON(env); err != nil {
				c.close()
				return
			}
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.quit:
			h.goodbye(c)
			return
		case <-ctx.Done():
			c.close()
			h.goodbye(c)
			return
		}
	}
}

func (h *Handler) goodbye(c *conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.opts.WriteTimeout))
}
