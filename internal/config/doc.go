// Package config loads the WebTool runtime configuration from a JSON or YAML
// file, fills in defaults, and applies the environment overrides understood by
// earlier deployments (HOST, PORT, DEBUG, CORS_ORIGINS, GEMINI_*). The result
// is immutable once the process has started.
package config
