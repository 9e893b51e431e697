// Package log provides slog handler helpers for sentinelscan.
//
// ComponentHandler wraps any slog.Handler and stamps each record with
// the component ("cli", "scan", "export") carried in the context, so
// one logger can be shared across layers while the output still shows
// where a message came from.
package log
