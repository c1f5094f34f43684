// Package api exposes the HTTP surface: slug enumeration, the process
// endpoint, health and service info, plus the middleware chain for panic
// recovery, CORS, rate limiting, access logging and request metrics.
package api
