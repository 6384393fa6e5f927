// Package server wires the board session to its transports and runs them
// until the process is asked to stop.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sketchboard/internal/board/history"
	"github.com/dmitrijs2005/sketchboard/internal/board/session"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
	"github.com/dmitrijs2005/sketchboard/internal/server/config"
	"github.com/dmitrijs2005/sketchboard/internal/server/discovery"
	"github.com/dmitrijs2005/sketchboard/internal/server/export"
	"github.com/dmitrijs2005/sketchboard/internal/server/web"
	"github.com/dmitrijs2005/sketchboard/internal/server/ws"

	gs "github.com/dmitrijs2005/sketchboard/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	session *session.Session
	http    *web.HTTPServer
	grpc    *gs.GRPCServer
}

func NewApp(c *config.Config) (*App, error) {
	return newApp(c, os.Stdout)
}

func newApp(c *config.Config, logOut io.Writer) (*App, error) {
	policy, err := history.ParsePolicy(c.RedoPolicy)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.NewJSON(logOut, c.LogLevel)

	sess := session.New(session.Options{
		RedoPolicy:    policy,
		LookupTimeout: c.LookupTimeout,
	}, logger)

	uploader := export.NewUploader(export.S3Config{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
	})

	hs := web.NewHTTPServer(c.EndpointAddrHTTP, logger, sess, uploader, ws.Options{
		SendBufferSize: c.SendBufferSize,
		WriteTimeout:   c.WriteTimeout,
	})

	grpcServer := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, sess, c.SendBufferSize)

	return &App{config: c, logger: logger, session: sess, http: hs, grpc: grpcServer}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "Signal caught", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// runComponent runs fn and stops the whole app if it fails.
func (app *App) runComponent(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, "component failed", "component", name, "error", err)
		cancelFunc()
	}
}

func (app *App) advertise(ctx context.Context) error {
	port, err := discovery.PortOf(app.config.EndpointAddrHTTP)
	if err != nil {
		return err
	}
	return discovery.Advertise(ctx, port, app.config.MDNSInstance, app.logger)
}

// Run blocks until ctx is cancelled, a termination signal arrives or a
// transport fails. The session outlives the transports so departing
// connections can still leave cleanly.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	sessionCtx, stopSession := context.WithCancel(context.WithoutCancel(ctx))
	sessionDone := make(chan struct{})
	go func() {
		defer close(sessionDone)
		app.runComponent(sessionCtx, cancelFunc, "session", app.session.Run)
	}()

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runComponent(ctx, cancelFunc, "http", app.http.Run)
	}()
	go func() {
		defer wg.Done()
		app.runComponent(ctx, cancelFunc, "grpc", app.grpc.Run)
	}()

	if app.config.MDNSEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// discovery is optional, a failure only loses the advertisement
			if err := app.advertise(ctx); err != nil {
				app.logger.Warn(ctx, "mDNS advertisement disabled", "error", err)
			}
		}()
	}

	wg.Wait()

	stopSession()
	<-sessionDone

	app.logger.Info(ctx, "App stopped")
}
