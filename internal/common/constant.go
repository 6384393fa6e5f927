package common

// ServiceType is the DNS-SD service type advertised on the local network.
const ServiceType = "_sketchboard._tcp"

// RequestIDMetadataKey is the gRPC metadata key echoed into access logs.
const RequestIDMetadataKey = "x-request-id"
