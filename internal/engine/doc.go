// Package engine orchestrates one scan run.
//
// The Orchestrator receives validated inputs from the CLI layer, builds
// the pacing controller shared by every prober of the run, executes the
// selected protocol modules in canonical order, and merges their
// outputs into a single model.ScanReport. Structured per-unit failures
// stay inside module results; only engine-level failures (configuration
// errors, host resolution) abort the run.
package engine
