// Package common contains shared constants, sentinel errors and small helpers
// used by both the HospiVibe client and its in-process test backend.
package common

// Header names and scheme used on outbound REST requests.
const (
	AuthorizationHeader = "Authorization"
	BearerScheme        = "Bearer"
	RequestIDHeader     = "X-Request-ID"
)
