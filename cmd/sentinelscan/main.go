// Package main provides the entry point for the sentinelscan CLI.
//
// sentinelscan is a multi-protocol network probe engine. It scans a
// target host over a port range with TCP connect probes, optional HTTP
// endpoint probing, and TLS certificate inspection, under a
// configurable pacing policy.
//
// Usage:
//
//	sentinelscan scan <host>
//	sentinelscan scan -p 1-1024 -m tcp,http <host>
//
// See --help for all available options.
package main

// main is the entry point for sentinelscan.
func main() {
	Execute()
}
