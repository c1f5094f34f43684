// Package metrics owns the Prometheus registry for HTTP traffic, request
// dispatch and upstream model calls, and serves it in exposition format.
package metrics
