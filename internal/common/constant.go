package common

const (
	// AuthorizationHeaderName carries the bearer token on inbound HTTP
	// requests and the gRPC metadata key used for the same purpose.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix is the scheme prefix expected in AuthorizationHeaderName.
	BearerPrefix = "Bearer "

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
)
