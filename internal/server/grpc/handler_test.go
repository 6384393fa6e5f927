package grpc

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dmitrijs2005/sketchboard/internal/board/models"
	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/board/session"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
)

func startBoard(t *testing.T) *grpc.ClientConn {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	n := 0
	sess := session.New(session.Options{
		NewID: func() string { n++; return fmt.Sprintf("c%d", n) },
	}, logging.Nop())
	go func() { _ = sess.Run(ctx) }()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", logging.Nop(), sess, 16)
	go func() { _ = srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func connect(t *testing.T, conn *grpc.ClientConn) grpc.ClientStream {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	stream, err := conn.NewStream(ctx, &BoardServiceDesc.Streams[0], ConnectMethod)
	require.NoError(t, err)
	return stream
}

func recv(t *testing.T, stream grpc.ClientStream) protocol.Envelope {
	t.Helper()
	frame := new(structpb.Struct)
	require.NoError(t, stream.RecvMsg(frame))
	env, err := DecodeFrame(frame)
	require.NoError(t, err)
	return env
}

func send(t *testing.T, stream grpc.ClientStream, typ protocol.Type, v any) {
	t.Helper()
	env, err := protocol.NewEnvelope(typ, v)
	require.NoError(t, err)
	frame, err := EncodeFrame(env)
	require.NoError(t, err)
	require.NoError(t, stream.SendMsg(frame))
}

func TestConnect_JoinRelayAndLeave(t *testing.T) {
	conn := startBoard(t)

	a := connect(t, conn)
	// the first frame is only sent once the stream is established
	idA := recv(t, a)
	require.Equal(t, protocol.TypeIdentity, idA.Type)
	var me protocol.Identity
	require.NoError(t, idA.Bind(&me))
	assert.Equal(t, "c1", me.ID)
	assert.Equal(t, "User 1", me.Name)
	assert.Equal(t, protocol.TypeSnapshot, recv(t, a).Type)

	b := connect(t, conn)
	assert.Equal(t, protocol.TypeIdentity, recv(t, b).Type)
	assert.Equal(t, protocol.TypeSnapshot, recv(t, b).Type)

	joined := recv(t, a)
	require.Equal(t, protocol.TypeUserJoined, joined.Type)
	var u models.User
	require.NoError(t, joined.Bind(&u))
	assert.Equal(t, "c2", u.ID)

	send(t, b, protocol.TypeStrokeStart, protocol.StrokeStart{
		ID:          "op1",
		Points:      []models.Point{{X: 1, Y: 2}},
		Color:       "#123456",
		StrokeWidth: 4,
	})
	relayed := recv(t, a)
	require.Equal(t, protocol.TypeStrokeStart, relayed.Type)
	var start protocol.StrokeStart
	require.NoError(t, relayed.Bind(&start))
	assert.Equal(t, "op1", start.ID)

	require.NoError(t, b.CloseSend())
	left := recv(t, a)
	require.Equal(t, protocol.TypeUserLeft, left.Type)
	var gone protocol.UserLeft
	require.NoError(t, left.Bind(&gone))
	assert.Equal(t, "c2", gone.UserID)
}

func TestLookupUser(t *testing.T) {
	conn := startBoard(t)

	a := connect(t, conn)
	recv(t, a)
	recv(t, a)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, LookupUserMethod, wrapperspb.String("c1"), out))
	assert.Equal(t, "c1", out.GetFields()["id"].GetStringValue())
	assert.Equal(t, "User 1", out.GetFields()["name"].GetStringValue())
	assert.Equal(t, models.Palette[0], out.GetFields()["color"].GetStringValue())

	err := conn.Invoke(ctx, LookupUserMethod, wrapperspb.String("ghost"), new(structpb.Struct))
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = conn.Invoke(ctx, LookupUserMethod, wrapperspb.String(""), new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestStreamPeer_FullQueue(t *testing.T) {
	p := newStreamPeer(1)
	env := protocol.Envelope{Type: protocol.TypeCursorUpdate}

	require.NoError(t, p.Send(env))
	assert.Error(t, p.Send(env))
	assert.Error(t, p.Send(env))

	select {
	case <-p.quit:
	default:
		t.Fatal("quit not closed after overflow")
	}
}
