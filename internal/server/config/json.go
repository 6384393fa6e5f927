package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sketchboard/internal/flagx"
	"github.com/dmitrijs2005/sketchboard/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations accept "2s" or
// integer nanoseconds. Fields left out of the file keep their current value.
type JsonConfig struct {
	EndpointAddrHTTP string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC string          `json:"endpoint_addr_grpc"`
	LogLevel         string          `json:"log_level"`
	LookupTimeout    *timex.Duration `json:"lookup_timeout"`
	RedoPolicy       string          `json:"redo_policy"`
	SendBufferSize   int             `json:"send_buffer_size"`
	WriteTimeout     *timex.Duration `json:"write_timeout"`
	MDNSEnabled      *bool           `json:"mdns_enabled"`
	MDNSInstance     string          `json:"mdns_instance"`
	S3Bucket         string          `json:"s3_bucket"`
	S3Region         string          `json:"s3_region"`
	S3BaseEndpoint   string          `json:"s3_base_endpoint"`
	S3RootUser       string          `json:"s3_root_user"`
	S3RootPassword   string          `json:"s3_root_password"`
}

// parseJson loads configuration values from the JSON file named by -c or
// -config into config. Without either flag nothing is loaded. An unreadable
// or invalid file panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.RedoPolicy, c.RedoPolicy)
	setString(&config.MDNSInstance, c.MDNSInstance)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)

	if c.LookupTimeout != nil {
		config.LookupTimeout = c.LookupTimeout.Duration
	}
	if c.WriteTimeout != nil {
		config.WriteTimeout = c.WriteTimeout.Duration
	}
	if c.SendBufferSize > 0 {
		config.SendBufferSize = c.SendBufferSize
	}
	if c.MDNSEnabled != nil {
		config.MDNSEnabled = *c.MDNSEnabled
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
