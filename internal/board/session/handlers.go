package session

import (
	"context"

	"github.com/dmitrijs2005/sketchboard/internal/board/models"
	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/common"
)

// dispatch runs on the loop goroutine.
func (s *Session) dispatch(ctx context.Context, id string, env protocol.Envelope) {
	if _, ok := s.users.Get(id); !ok {
		s.logger.Warn(ctx, "event from unregistered connection", "conn", id, "event", env.Type)
		return
	}
	s.logger.Debug(ctx, "event", "conn", id, "event", env.Type)

	switch env.Type {
	case protocol.TypeStrokeStart:
		s.onStrokeStart(ctx, id, env)
	case protocol.TypeStrokePoints:
		s.onStrokePoints(ctx, id, env)
	case protocol.TypeStrokeEnd:
		s.router.Route(ctx, id, protocol.Relay(env.Type, env.Payload))
	case protocol.TypeErase:
		s.onErase(ctx, id, env)
	case protocol.TypeCursorUpdate:
		s.onCursor(ctx, id, env)
	case protocol.TypeUserLookup:
		s.onUserLookup(ctx, id, env)
	case protocol.TypeUndo:
		s.onUndo(ctx, id)
	case protocol.TypeRedo:
		s.onRedo(ctx, id, env)
	default:
		s.logger.Warn(ctx, common.ErrUnknownEvent.Error(), "conn", id, "event", env.Type)
	}
}

// The stroke handlers relay the inbound payload untouched even when it
// could not be applied to the log.

func (s *Session) onStrokeStart(ctx context.Context, id string, env protocol.Envelope) {
	var p protocol.StrokeStart
	if err := env.Bind(&p); err != nil {
		s.logger.Warn(ctx, "stroke not recorded", "conn", id, "err", err)
	} else {
		s.ops.Append(p.Operation(id, s.now().UnixMilli()))
	}
	s.router.Route(ctx, id, protocol.Relay(env.Type, env.Payload))
}

func (s *Session) onStrokePoints(ctx context.Context, id string, env protocol.Envelope) {
	var p protocol.StrokePoints
	if err := env.Bind(&p); err != nil {
		s.logger.Warn(ctx, "points not recorded", "conn", id, "err", err)
	} else if !s.ops.AppendPoints(p.OperationID, p.Points) {
		s.logger.Warn(ctx, "points for unknown operation", "conn", id, "operation", p.OperationID)
	}
	s.router.Route(ctx, id, protocol.Relay(env.Type, env.Payload))
}

func (s *Session) onErase(ctx context.Context, id string, env protocol.Envelope) {
	var p protocol.Erase
	if err := env.Bind(&p); err != nil {
		s.logger.Warn(ctx, "erase not recorded", "conn", id, "err", err)
	} else {
		s.ops.Append(p.Operation(id, s.now().UnixMilli()))
	}
	s.router.Route(ctx, id, protocol.Relay(env.Type, env.Payload))
}

func (s *Session) onCursor(ctx context.Context, id string, env protocol.Envelope) {
	var c protocol.CursorMove
	if err := env.Bind(&c); err != nil {
		s.logger.Warn(ctx, "cursor dropped", "conn", id, "err", err)
		return
	}
	u, ok := s.users.MoveCursor(id, c)
	if !ok {
		return
	}
	s.emit(ctx, id, protocol.TypeCursorUpdate, protocol.CursorUpdate{
		UserID: u.ID,
		Cursor: c,
		User:   u.Public(),
	})
}

func (s *Session) onUserLookup(ctx context.Context, id string, env protocol.Envelope) {
	var target string
	if err := env.Bind(&target); err != nil {
		s.logger.Warn(ctx, "lookup answered with null", "conn", id, "err", err)
	}

	var found *models.User
	if u, ok := s.users.Get(target); ok && target != "" {
		found = &u
	}

	reply, err := protocol.NewEnvelope(protocol.TypeUserLookup, found)
	if err != nil {
		s.logger.Error(ctx, err.Error(), "conn", id)
		return
	}
	reply.RequestID = env.RequestID
	s.router.SendTo(ctx, id, reply)
}

func (s *Session) onUndo(ctx context.Context, id string) {
	op, ok := s.history.Undo()
	if !ok {
		s.logger.Debug(ctx, "undo on empty log", "conn", id)
		return
	}
	s.emit(ctx, id, protocol.TypeUndo, protocol.Undo{OperationID: op.ID})
}

func (s *Session) onRedo(ctx context.Context, id string, env protocol.Envelope) {
	var p protocol.Redo
	if err := env.Bind(&p); err != nil || p.Operation == nil {
		s.logger.Warn(ctx, "redo without operation", "conn", id, "err", err)
		return
	}
	op, err := s.history.Redo(*p.Operation)
	if err != nil {
		s.logger.Warn(ctx, "redo dropped", "conn", id, "err", err)
		return
	}
	s.emit(ctx, id, protocol.TypeRedo, protocol.Redo{Operation: &op})
}
