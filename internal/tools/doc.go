// Package tools holds the deterministic, in-process handlers. Each tool is a
// pure string transform with no I/O; invalid input is reported through
// *InputError rather than a panic.
package tools
