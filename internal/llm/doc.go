// Package llm defines the text-completion contract the router depends on.
// Provider adapters live in sub-packages and are selected once at startup by
// the provider package; the rest of the service only sees Client.
package llm
