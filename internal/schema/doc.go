// Package schema defines the request, response and error envelopes exchanged
// at the HTTP boundary, along with their validation bounds.
package schema
