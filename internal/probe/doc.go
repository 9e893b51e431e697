// Package probe implements the protocol-specific probers.
//
// # Architecture
//
// Each prober is a separate concrete type with a strongly typed Scan
// method rather than implementations of a single polymorphic
// interface, because the probers take different inputs (a port range,
// a port list, a single port) and return different result shapes. The
// orchestrator in internal/engine selects probers explicitly.
//
// All probers share the same conventions:
//   - the pacing.Pacer is consulted before every network attempt
//   - per-unit network failures are folded into the result, never
//     returned as errors
//   - every connection is closed after the probe regardless of outcome
//   - context cancellation stops issuing new probes and returns the
//     partial result collected so far
package probe
