// Package pacing controls the cadence of probe attempts.
//
// A Pacer is constructed once per orchestrator run and shared by every
// prober in that run. Wait blocks the caller for the configured delay
// before each network attempt; under concurrency the pacer acts as a
// central rate cap on attempts rather than a per-goroutine sleep.
package pacing
