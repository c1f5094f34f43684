// Package dispatch validates process requests, resolves the target slug and
// routes the call to either the agent executor or an in-process tool. It also
// owns the per-request audit line, process metrics and alert fan-out.
package dispatch
