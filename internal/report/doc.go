// Package report renders scan reports for output.
//
// Three writers share the Writer interface: SimpleWriter (human
// readable text for terminals), JSONWriter (tool integration), and
// MarkdownWriter (documentation and sharing). Writers render the
// model.ScanReport produced by the engine and never mutate it.
package report
