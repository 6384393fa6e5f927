package grpc

import (
	"context"
	"net"
	"sync"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/sketchboard/internal/board/models"
	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/board/session"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
)

// Board is the part of a session the gRPC transport needs.
type Board interface {
	Join(ctx context.Context, p session.Peer) (models.User, error)
	Leave(ctx context.Context, id string) error
	Handle(ctx context.Context, id string, env protocol.Envelope) error
	LookupUser(ctx context.Context, id string) (models.User, error)
}

const defaultSendBuffer = 256

type GRPCServer struct {
	address    string
	board      Board
	logger     logging.Logger
	sendBuffer int

	// closed when Run's context ends so open Connect streams let go
	// before GracefulStop waits on them.
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

func NewGRPCServer(a string, l logging.Logger, b Board, sendBuffer int) *GRPCServer {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &GRPCServer{
		address:    a,
		board:      b,
		logger:     l.With("module", "grpc_server"),
		sendBuffer: sendBuffer,
		shutdown:   make(chan struct{}),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor),
		grpc.ChainStreamInterceptor(s.streamLoggingInterceptor),
	)

	srv.RegisterService(&BoardServiceDesc, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.shutdownOnce.Do(func() { close(s.shutdown) })
		srv.GracefulStop()
	}()

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
