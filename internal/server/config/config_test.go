package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 2*time.Second, c.LookupTimeout)
	assert.Equal(t, "trusted", c.RedoPolicy)
	assert.Equal(t, 256, c.SendBufferSize)
	assert.Equal(t, 10*time.Second, c.WriteTimeout)
	assert.False(t, c.MDNSEnabled)
	assert.Empty(t, c.MDNSInstance)
	assert.Empty(t, c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *c)
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr_http": ":7000",
		"log_level":          "debug",
		"redo_policy":        "verified",
	})
	os.Args = []string{"testbin", "-c", path, "-a", ":9000"}

	c := LoadConfig()

	assert.Equal(t, ":9000", c.EndpointAddrHTTP)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "verified", c.RedoPolicy)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
}
