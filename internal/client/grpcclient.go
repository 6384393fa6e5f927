// Package client is a thin gRPC client for a running board: it can look up
// a present user and watch the live event stream.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/sketchboard/internal/board/models"
	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/common"
	gs "github.com/dmitrijs2005/sketchboard/internal/server/grpc"
)

var ErrUnavailable = errors.New("board unavailable")

const lookupTimeout = 5 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
}

// withRequestID tags outgoing calls so server logs can be correlated.
func withRequestID(ctx context.Context) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	if len(md.Get(common.RequestIDMetadataKey)) > 0 {
		return ctx
	}
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.RequestIDMetadataKey, uuid.NewString())
	return metadata.NewOutgoingContext(ctx, md)
}

func requestIDInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withRequestID(ctx), method, req, reply, cc, opts...)
}

func requestIDStreamInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(withRequestID(ctx), desc, cc, method, opts...)
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults.
func NewGRPCClient(endpointURL string, extra ...grpc.DialOption) (*GRPCClient, error) {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(requestIDInterceptor),
		grpc.WithStreamInterceptor(requestIDStreamInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{endpointURL: endpointURL, conn: conn}, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// LookupUser fetches a present user by connection id.
func (s *GRPCClient) LookupUser(ctx context.Context, id string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := s.conn.Invoke(ctx, gs.LookupUserMethod, wrapperspb.String(id), out); err != nil {
		return models.User{}, s.mapError(err)
	}

	b, err := json.Marshal(out.AsMap())
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return models.User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

// Watch joins the board and calls fn for every event it receives until ctx
// ends, the server closes the stream or fn returns an error. The watcher
// counts as a present user for as long as it is connected.
func (s *GRPCClient) Watch(ctx context.Context, fn func(protocol.Envelope) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := s.conn.NewStream(ctx, &gs.BoardServiceDesc.Streams[0], gs.ConnectMethod)
	if err != nil {
		return s.mapError(err)
	}

	for {
		frame := new(structpb.Struct)
		if err := stream.RecvMsg(frame); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return s.mapError(err)
		}

		env, err := gs.DecodeFrame(frame)
		if err != nil {
			return err
		}
		if err := fn(env); err != nil {
			return err
		}
	}
}
