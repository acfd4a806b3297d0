// Package logger provides structured logging for twgraph built on zerolog.
//
// The package exposes a Logger interface with field chaining, a global
// instance configured once at startup from config.LoggingConfig, and a
// handful of helpers for recurring crawl events (requests, rate limits,
// user visits). Console output is pretty-printed; a log file can be added
// through configuration, in which case both writers receive every event.
package logger
