// Package export writes scan reports to disk and keeps track of them.
//
// Exports land in a single export directory (XDG data by default) with
// sanitized, timestamped filenames. An SQLite index records the
// metadata of each written file (name, host, modules, creation time)
// so the exports list/clean commands work without scanning the
// directory; the index never stores scan results themselves.
package export
