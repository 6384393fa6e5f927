package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/sketchboard/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string       HTTP bind address (e.g., ":8080")
//	-grpc string    gRPC bind address (e.g., ":50051")
//	-l string       log level
//	-t duration     user lookup timeout (e.g., "2s")
//	-r string       redo policy: trusted or verified
//	-q int          per-connection send buffer size
//	-w duration     per-frame write timeout
//	-mdns           advertise the HTTP endpoint over mDNS
//	-n string       mDNS instance name (defaults to the host name)
//	-b string       S3 bucket for exports
//	-region string  S3 region
//	-e string       S3 base endpoint (e.g., "http://127.0.0.1:9000")
//	-u string       S3 root user
//	-p string       S3 root password
//
// os.Args is filtered with flagx.FilterArgs first, so flags owned by other
// components (-c/-config) do not make parsing fail.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-grpc", "-l", "-t", "-r", "-q", "-w", "-n", "-b", "-region", "-e", "-u", "-p"},
		"-mdns",
	)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.DurationVar(&config.LookupTimeout, "t", config.LookupTimeout, "user lookup timeout")
	fs.StringVar(&config.RedoPolicy, "r", config.RedoPolicy, "redo policy (trusted|verified)")
	fs.IntVar(&config.SendBufferSize, "q", config.SendBufferSize, "per-connection send buffer size")
	fs.DurationVar(&config.WriteTimeout, "w", config.WriteTimeout, "write timeout")
	fs.BoolVar(&config.MDNSEnabled, "mdns", config.MDNSEnabled, "advertise over mDNS")
	fs.StringVar(&config.MDNSInstance, "n", config.MDNSInstance, "mDNS instance name")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 export bucket")
	fs.StringVar(&config.S3Region, "region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
