// Package registry maps request slugs to agent or tool handlers. A registry is
// assembled once at startup through a Builder and is read-only afterwards.
package registry
