// Package discovery advertises the board's HTTP endpoint on the local
// network over multicast DNS.
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hashicorp/mdns"

	"github.com/dmitrijs2005/sketchboard/internal/common"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
)

var (
	newService = mdns.NewMDNSService
	newServer  = func(zone mdns.Zone) (shutdowner, error) {
		return mdns.NewServer(&mdns.Config{Zone: zone})
	}
)

type shutdowner interface {
	Shutdown() error
}

// PortOf extracts the port from a listen address such as ":8080".
func PortOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("address %q has no usable port", addr)
	}
	return port, nil
}

// Advertise announces common.ServiceType on port until ctx is done. An
// empty instance uses the host name.
func Advertise(ctx context.Context, port int, instance string, l logging.Logger) error {
	logger := l.With("module", "discovery")

	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	service, err := newService(instance, common.ServiceType, "", "", port, nil, []string{"sketchboard"})
	if err != nil {
		return fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := newServer(service)
	if err != nil {
		return fmt.Errorf("failed to start mDNS server: %w", err)
	}

	logger.Info(ctx, "Advertising board", "instance", instance, "service", common.ServiceType, "port", port)

	<-ctx.Done()

	logger.Info(ctx, "Stopping mDNS responder...")
	return server.Shutdown()
}
