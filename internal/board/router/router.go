// Package router delivers outbound events to connected peers. The audience
// of each event ("everyone else", "everyone", or just the sender) comes from
// protocol.AudienceOf; membership and delivery order come from the presence
// registry.
package router

import (
	"context"

	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
)

// Peer is the outbound side of one connection. Send must not block.
type Peer interface {
	Send(env protocol.Envelope) error
}

// Members lists connection ids in delivery order.
type Members interface {
	IDs() []string
}

// Router is not safe for concurrent use; it is owned by the session's event
// loop.
type Router struct {
	members Members
	peers   map[string]Peer
	logger  logging.Logger
}

func New(members Members, logger logging.Logger) *Router {
	return &Router{
		members: members,
		peers:   make(map[string]Peer),
		logger:  logger.With("module", "router"),
	}
}

// Attach binds a peer to a connection id.
func (r *Router) Attach(id string, p Peer) {
	r.peers[id] = p
}

// Detach forgets the peer for id.
func (r *Router) Detach(id string) {
	delete(r.peers, id)
}

// Route delivers env to the audience its type calls for, relative to sender.
// It returns the number of peers that accepted the event.
func (r *Router) Route(ctx context.Context, sender string, env protocol.Envelope) int {
	switch protocol.AudienceOf(env.Type) {
	case protocol.AudienceEveryone:
		return r.fanout(ctx, env, "")
	case protocol.AudienceOthers:
		return r.fanout(ctx, env, sender)
	default:
		if r.SendTo(ctx, sender, env) {
			return 1
		}
		return 0
	}
}

// SendTo delivers env to a single connection.
func (r *Router) SendTo(ctx context.Context, id string, env protocol.Envelope) bool {
	p, ok := r.peers[id]
	if !ok {
		return false
	}
	return r.deliver(ctx, id, p, env)
}

func (r *Router) fanout(ctx context.Context, env protocol.Envelope, exclude string) int {
	n := 0
	for _, id := range r.members.IDs() {
		if id == exclude {
			continue
		}
		p, ok := r.peers[id]
		if !ok {
			continue
		}
		if r.deliver(ctx, id, p, env) {
			n++
		}
	}
	return n
}

func (r *Router) deliver(ctx context.Context, id string, p Peer, env protocol.Envelope) bool {
	if err := p.Send(env); err != nil {
		r.logger.Warn(ctx, "delivery failed", "conn", id, "event", env.Type, "err", err)
		return false
	}
	return true
}
