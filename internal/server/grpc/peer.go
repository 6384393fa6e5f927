package grpc

import (
	"sync"

	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/common"
)

// streamPeer queues envelopes for the goroutine that owns a Connect stream.
type streamPeer struct {
	send chan protocol.Envelope
	quit chan struct{}
	once sync.Once
}

func newStreamPeer(queue int) *streamPeer {
	return &streamPeer{
		send: make(chan protocol.Envelope, queue),
		quit: make(chan struct{}),
	}
}

func (p *streamPeer) Send(env protocol.Envelope) error {
	select {
	case <-p.quit:
		return common.ErrPeerClosed
	default:
	}
	select {
	case p.send <- env:
		return nil
	default:
		p.once.Do(func() { close(p.quit) })
		return common.ErrPeerBackedUp
	}
}
