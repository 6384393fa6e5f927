package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/common"
)

// conn is the outbound half of one WebSocket connection. Send is called from
// the session loop and never blocks: a full queue closes the connection.
type conn struct {
	ws   *websocket.Conn
	send chan protocol.Envelope
	quit chan struct{}
	once sync.Once
}

func newConn(ws *websocket.Conn, queue int) *conn {
	return &conn{
		ws:   ws,
		send: make(chan protocol.Envelope, queue),
		quit: make(chan struct{}),
	}
}

func (c *conn) Send(env protocol.Envelope) error {
	select {
	case <-c.quit:
		return common.ErrPeerClosed
	default:
	}
	select {
	case c.send <- env:
		return nil
	default:
		c.close()
		return common.ErrPeerBackedUp
	}
}

func (c *conn) close() {
	c.once.Do(func() { close(c.quit) })
}
