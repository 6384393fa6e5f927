package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sketchboard/internal/common"
	"github.com/dmitrijs2005/sketchboard/internal/logging"
)

type fakeResponder struct{ stopped chan struct{} }

func (f *fakeResponder) Shutdown() error {
	close(f.stopped)
	return nil
}

func stubResponder(t *testing.T) {
	t.Helper()
	origService, origServer := newService, newServer
	t.Cleanup(func() { newService, newServer = origService, origServer })
}

func TestPortOf(t *testing.T) {
	tests := []struct {
		addr    string
		want    int
		wantErr bool
	}{
		{":8080", 8080, false},
		{"127.0.0.1:9000", 9000, false},
		{"[::1]:7000", 7000, false},
		{"8080", 0, true},
		{":http", 0, true},
		{":0", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, err := PortOf(tt.addr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvertise_RegistersAndShutsDown(t *testing.T) {
	stubResponder(t)

	var gotInstance, gotService string
	var gotPort int
	newService = func(instance, service, domain, hostName string, port int, ips []net.IP, txt []string) (*mdns.MDNSService, error) {
		gotInstance, gotService, gotPort = instance, service, port
		return &mdns.MDNSService{}, nil
	}
	resp := &fakeResponder{stopped: make(chan struct{})}
	newServer = func(mdns.Zone) (shutdowner, error) { return resp, nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Advertise(ctx, 8080, "studio", logging.Nop()) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Advertise did not return after cancel")
	}

	select {
	case <-resp.stopped:
	default:
		t.Fatal("responder was not shut down")
	}
	assert.Equal(t, "studio", gotInstance)
	assert.Equal(t, common.ServiceType, gotService)
	assert.Equal(t, 8080, gotPort)
}

func TestAdvertise_ServiceError(t *testing.T) {
	stubResponder(t)

	newService = func(string, string, string, string, int, []net.IP, []string) (*mdns.MDNSService, error) {
		return nil, errors.New("bad")
	}

	err := Advertise(context.Background(), 8080, "studio", logging.Nop())
	assert.ErrorContains(t, err, "failed to create mDNS service")
}
