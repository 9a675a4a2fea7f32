// Package common contains shared constants and sentinel errors used across
// taskdesk components.
package common

// AuthorizationHeaderName is the HTTP header that carries the API access token
// on outbound persistence API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token value in AuthorizationHeaderName.
const BearerPrefix = "Bearer "
