// Package agent defines the immutable agent descriptors, the built-in and
// file-backed agent catalogs, and the executor that turns a prompt plus
// optional context into a single upstream model call.
package agent
