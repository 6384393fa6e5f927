package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sketchboard/internal/board/models"
	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
)

type recPeer struct {
	mu  sync.Mutex
	got []protocol.Envelope

	// onSend, when set, runs after each delivery.
	onSend func()
}

func (p *recPeer) Send(env protocol.Envelope) error {
	p.mu.Lock()
	p.got = append(p.got, env)
	hook := p.onSend
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (p *recPeer) all() []protocol.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]protocol.Envelope, len(p.got))
	copy(out, p.got)
	return out
}

func (p *recPeer) types() []protocol.Type {
	var out []protocol.Type
	for _, env := range p.all() {
		out = append(out, env.Type)
	}
	return out
}

func (p *recPeer) last(t *testing.T) protocol.Envelope {
	t.Helper()
	all := p.all()
	require.NotEmpty(t, all, "peer received nothing")
	return all[len(all)-1]
}

func (p *recPeer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = nil
}

var fixedNow = time.UnixMilli(1_700_000_000_000)

func testOptions() Options {
	n := 0
	return Options{
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("c%d", n)
		},
	}
}

// startSession runs a session for the duration of the test.
func startSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s := New(opts, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func join(t *testing.T, s *Session) (models.User, *recPeer) {
	t.Helper()
	p := &recPeer{}
	u, err := s.Join(context.Background(), p)
	require.NoError(t, err)
	return u, p
}

func send(t *testing.T, s *Session, id string, typ protocol.Type, payload any) {
	t.Helper()
	env := protocol.Envelope{Type: typ}
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		env.Payload = b
	}
	require.NoError(t, s.Handle(context.Background(), id, env))
}

func decode[T any](t *testing.T, env protocol.Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Payload, &v))
	return v
}

func logOf(t *testing.T, s *Session) []models.Operation {
	t.Helper()
	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	return snap.History
}
