// Package session is the authoritative core of a shared board. A Session
// owns the presence registry, the operation log, the undo/redo coordinator
// and the broadcast router, and mutates them from a single goroutine: every
// public method hands a command to the loop started by Run and waits for it
// to finish. Handlers therefore run one at a time, in arrival order, without
// locks.
package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/sketchboard/internal/board/history"
	"github.com/dmitrijs2005/sketchboard/internal/board/models"
	"github.com/dmitrijs2005/sketchboard/internal/board/oplog"
	"github.com/dmitrijs2005/sketchboard/internal/board/presence"
	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/board/router"
	"github.com/dmitrijs2005/sketchboard/internal/common"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
)

// Peer is the outbound side of a connection, implemented by transports.
type Peer = router.Peer

// Options tune a Session. Zero values pick the defaults.
type Options struct {
	RedoPolicy    history.Policy
	LookupTimeout time.Duration

	// Now and NewID are replaceable for tests.
	Now   func() time.Time
	NewID func() string
}

const DefaultLookupTimeout = 2 * time.Second

// Stats is a point-in-time count of the board contents.
type Stats struct {
	Users      int `json:"users"`
	Operations int `json:"operations"`
}

type command struct {
	ctx  context.Context
	fn   func(ctx context.Context)
	done chan struct{}
}

type Session struct {
	cmds    chan command
	stopped chan struct{}
	running atomic.Bool

	logger        logging.Logger
	lookupTimeout time.Duration
	now           func() time.Time
	newID         func() string

	// Owned by the loop goroutine.
	users   *presence.Registry
	ops     *oplog.Log
	history *history.Coordinator
	router  *router.Router
}

func New(opts Options, logger logging.Logger) *Session {
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = DefaultLookupTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	logger = logger.With("module", "session")
	users := presence.NewRegistry()
	ops := oplog.New()

	return &Session{
		cmds:          make(chan command),
		stopped:       make(chan struct{}),
		logger:        logger,
		lookupTimeout: opts.LookupTimeout,
		now:           opts.Now,
		newID:         opts.NewID,
		users:         users,
		ops:           ops,
		history:       history.NewCoordinator(ops, opts.RedoPolicy),
		router:        router.New(users, logger),
	}
}

// Run processes commands until ctx is done. After it returns every method
// fails with common.ErrSessionClosed. Run may only be called once.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("session already running")
	}
	defer close(s.stopped)

	s.logger.Info(ctx, "Session started", "redo_policy", s.history.Policy())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Session stopped", "users", s.users.Len(), "operations", s.ops.Len())
			return nil
		case c := <-s.cmds:
			c.fn(c.ctx)
			close(c.done)
		}
	}
}

// do runs fn on the loop goroutine and waits for it. ctx only bounds the
// wait for the loop to accept the command; an accepted fn always completes
// and do returns nil.
func (s *Session) do(ctx context.Context, fn func(ctx context.Context)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := command{ctx: ctx, fn: fn, done: make(chan struct{})}
	select {
	case s.cmds <- c:
	case <-s.stopped:
		return common.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// Loop functions never block, so this wait is short.
	<-c.done
	return nil
}

// Join registers a new connection. The peer receives its identity and a full
// snapshot before anyone else hears about it.
func (s *Session) Join(ctx context.Context, p Peer) (models.User, error) {
	var u models.User

	err := s.do(ctx, func(ctx context.Context) {
		id := s.newID()
		u = s.users.Join(id)
		s.router.Attach(id, p)

		s.emit(ctx, id, protocol.TypeIdentity, protocol.Identity{ID: u.ID, Color: u.Color, Name: u.Name})
		s.emit(ctx, id, protocol.TypeSnapshot, protocol.Snapshot{
			Users:   s.users.Snapshot(),
			History: s.ops.Snapshot(),
		})
		s.emit(ctx, id, protocol.TypeUserJoined, u)

		s.logger.Info(ctx, "User joined", "conn", id, "name", u.Name, "users", s.users.Len())
	})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Leave deregisters a connection. Operations it authored stay in the log,
// including a stroke it never finished.
func (s *Session) Leave(ctx context.Context, id string) error {
	return s.do(ctx, func(ctx context.Context) {
		s.router.Detach(id)
		if _, ok := s.users.Leave(id); !ok {
			return
		}
		s.emit(ctx, id, protocol.TypeUserLeft, protocol.UserLeft{UserID: id})
		s.logger.Info(ctx, "User left", "conn", id, "users", s.users.Len())
	})
}

// Handle dispatches one inbound event from connection id. Problems with the
// event itself are logged and never reported back to the sender.
func (s *Session) Handle(ctx context.Context, id string, env protocol.Envelope) error {
	return s.do(ctx, func(ctx context.Context) {
		s.dispatch(ctx, id, env)
	})
}

// LookupUser fetches a user from outside the event loop, bounded by the
// lookup timeout.
func (s *Session) LookupUser(ctx context.Context, id string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	var (
		u     models.User
		found bool
	)
	err := s.do(ctx, func(context.Context) {
		u, found = s.users.Get(id)
	})
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.User{}, common.ErrLookupTimeout
	case err != nil:
		return models.User{}, err
	case !found:
		return models.User{}, common.ErrorNotFound
	}
	return u, nil
}

// Snapshot copies the current board.
func (s *Session) Snapshot(ctx context.Context) (protocol.Snapshot, error) {
	var snap protocol.Snapshot
	err := s.do(ctx, func(context.Context) {
		snap = protocol.Snapshot{Users: s.users.Snapshot(), History: s.ops.Snapshot()}
	})
	return snap, err
}

func (s *Session) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.do(ctx, func(context.Context) {
		st = Stats{Users: s.users.Len(), Operations: s.ops.Len()}
	})
	return st, err
}

// emit encodes v and routes it relative to sender.
func (s *Session) emit(ctx context.Context, sender string, t protocol.Type, v any) {
	env, err := protocol.NewEnvelope(t, v)
	if err != nil {
		s.logger.Error(ctx, err.Error(), "conn", sender)
		return
	}
	s.router.Route(ctx, sender, env)
}
