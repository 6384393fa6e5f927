// Command client inspects a running board over gRPC.
//
//	client [-s addr] lookup <user-id>
//	client [-s addr] watch
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/sketchboard/internal/board/protocol"
	"github.com/dmitrijs2005/sketchboard/internal/client"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
)

func main() {
	addr := flag.String("s", "localhost:50051", "board gRPC address")
	flag.Parse()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, flag.Args()); err != nil {
		logger.Error(ctx, "client failed", "addr", *addr, "err", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, addr string, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: client [-s addr] lookup <user-id> | watch")
	}

	c, err := client.NewGRPCClient(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	enc := json.NewEncoder(os.Stdout)

	switch args[0] {
	case "lookup":
		if len(args) != 2 {
			return errors.New("usage: client lookup <user-id>")
		}
		u, err := c.LookupUser(ctx, args[1])
		if err != nil {
			return err
		}
		return enc.Encode(u)
	case "watch":
		return c.Watch(ctx, func(env protocol.Envelope) error {
			return enc.Encode(env)
		})
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
