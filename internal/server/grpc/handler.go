package grpc

import (
	"context"
	"errors"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/sketchboard/internal/common"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
)

const leaveTimeout = time.Second

// Connect joins the board for the lifetime of the stream. Inbound frames are
// envelopes handed to the session; outbound frames are whatever the router
// delivers to this peer.
func (s *GRPCServer) Connect(stream grpc.ServerStream) error {
	ctx := stream.Context()

	p := newStreamPeer(s.sendBuffer)
	user, err := s.board.Join(ctx, p)
	if err != nil {
		return toStatus(err)
	}

	log := s.logger.With("conn", user.ID)
	log.Info(ctx, "stream connected")

	defer func() {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaveTimeout)
		defer cancel()
		if err := s.board.Leave(lctx, user.ID); err != nil {
			log.Warn(ctx, "leave failed", "error", err)
		}
		log.Info(ctx, "stream disconnected")
	}()

	recvErr := make(chan error, 1)
	go func() { recvErr <- s.recvLoop(ctx, stream, user.ID, log) }()

	for {
		select {
		case env := <-p.send:
			frame, err := EncodeFrame(env)
			if err != nil {
				log.Error(ctx, "encode frame", "type", env.Type, "error", err)
				continue
			}
			if err := stream.SendMsg(frame); err != nil {
				return err
			}
		case <-p.quit:
			return status.Error(codes.ResourceExhausted, common.ErrPeerBackedUp.Error())
		case err := <-recvErr:
			return err
		case <-s.shutdown:
			return status.Error(codes.Unavailable, "server is shutting down")
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		}
	}
}

func (s *GRPCServer) recvLoop(ctx context.Context, stream grpc.ServerStream, id string, log logging.Logger) error {
	for {
		frame := new(structpb.Struct)
		if err := stream.RecvMsg(frame); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		env, err := DecodeFrame(frame)
		if err != nil {
			log.Warn(ctx, "dropping malformed frame", "error", err)
			continue
		}

		if err := s.board.Handle(ctx, id, env); err != nil {
			return toStatus(err)
		}
	}
}

// LookupUser returns the record of a present user, cursor included.
func (s *GRPCServer) LookupUser(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "user id is required")
	}

	u, err := s.board.LookupUser(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := toStruct(u)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrLookupTimeout):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, common.ErrSessionClosed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
