// Package config holds scan configuration and its validation.
//
// A Config is populated from CLI flags (and optionally a .sentinelscan
// YAML file with per-host overrides), validated once before any network
// activity, and passed through the application by dependency injection
// rather than global state.
package config
