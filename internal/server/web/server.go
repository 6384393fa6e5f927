// Package web serves the board over HTTP: the WebSocket event channel, PDF
// export and a health probe.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/board/session"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
	"github.com/dmitrijs2005/sketchboard/internal/server/ws"
)

// Board is the session surface used by the HTTP routes.
type Board interface {
	ws.Board
	Snapshot(ctx context.Context) (protocol.Snapshot, error)
	Stats(ctx context.Context) (session.Stats, error)
}

// Uploader stores rendered exports.
type Uploader interface {
	Enabled() bool
	Upload(ctx context.Context, body []byte) (string, error)
}

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type HTTPServer struct {
	address  string
	board    Board
	uploader Uploader
	events   http.Handler
	logger   logging.Logger
	now      func() time.Time
}

func NewHTTPServer(a string, l logging.Logger, b Board, u Uploader, wsOpts ws.Options) *HTTPServer {
	return &HTTPServer{
		address:  a,
		board:    b,
		uploader: u,
		events:   ws.NewHandler(b, l, wsOpts),
		logger:   l.With("module", "http_server"),
		now:      time.Now,
	}
}

// Router builds the route table.
func (s *HTTPServer) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.accessLog)

	r.Methods(http.MethodGet).Path("/ws").Handler(s.events)
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(s.health)
	r.Methods(http.MethodGet).Path("/export.pdf").HandlerFunc(s.exportPDF)
	r.Methods(http.MethodPost).Path("/exports").HandlerFunc(s.createExport)

	return r
}

func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info(r.Context(), "handled",
			"method", r.Method,
			"url", r.URL.String(),
			"status", m.Code,
			"bytes", m.Written,
			"duration", m.Duration,
		)
	})
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
		// hijacked WebSocket connections are not tracked by Shutdown; they
		// end when their request context, derived from ctx, is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
