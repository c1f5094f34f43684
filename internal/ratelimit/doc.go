// Package ratelimit throttles inbound requests per client, either with an
// in-process token bucket or with a bucket shared through Redis.
package ratelimit
