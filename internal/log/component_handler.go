package log

import (
	"context"
	"log/slog"
)

// componentKey is the context key carrying the component name.
type componentKey struct{}

// ComponentAttrKey is the attribute key records are stamped with.
const ComponentAttrKey = "component"

// Component names used across the application.
const (
	ComponentCLI    = "cli"
	ComponentScan   = "scan"
	ComponentExport = "export"
)

// WithComponent returns a context whose log records are stamped with
// the given component name.
func WithComponent(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, componentKey{}, name)
}

// ComponentHandler wraps an slog.Handler and adds a component
// attribute from the context to every record.
//
// Design decision: We use a handler wrapper rather than per-component
// logger instances because the component is a property of the call
// path, not of the logger — the same orchestrator logger serves probes
// and exports, and the wrapper keeps the stamping in one place.
type ComponentHandler struct {
	// handler is the underlying slog handler that receives stamped
	// records.
	handler slog.Handler
}

// NewComponentHandler creates a ComponentHandler wrapping the given
// handler. If handler is nil, slog.Default()'s handler is used.
func NewComponentHandler(handler slog.Handler) *ComponentHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &ComponentHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *ComponentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle stamps the record with the context's component, when present,
// and passes it on.
func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	if name, ok := ctx.Value(componentKey{}).(string); ok && name != "" {
		r = r.Clone()
		r.AddAttrs(slog.String(ComponentAttrKey, name))
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ComponentHandler whose underlying handler
// has the given attributes.
func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ComponentHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ComponentHandler whose underlying handler
// has the given group.
func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{handler: h.handler.WithGroup(name)}
}
