// Package model defines the result types produced by the probe engine.
//
// Every prober emits one of the result types in this package, and the
// orchestrator merges them into a ScanReport. All types are created once
// per probe invocation and never mutated after they are merged; JSON
// field names form the output contract consumed by the report and
// export layers and must not change.
package model
