package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/packsmith/internal/ui/output"
	"go.trai.ch/packsmith/internal/ui/style"
)

// levelStyle is the marker and color used for records at or above a level.
type levelStyle struct {
	min    slog.Level
	marker string
	color  lipgloss.Color
}

// levelStyles is ordered from most to least severe.
var levelStyles = []levelStyle{
	{min: slog.LevelError, marker: style.Cross, color: style.Red},
	{min: slog.LevelWarn, marker: style.Warning, color: style.Yellow},
}

// PrettyHandler writes one colored line per record: an optional severity marker,
// the message, then key=value pairs.
type PrettyHandler struct {
	out   *termenv.Output
	mu    *sync.Mutex
	level slog.Leveler
	// bound holds the rendered pairs of attributes added through WithAttrs.
	bound string
	// prefix qualifies keys with the open groups, e.g. "fetch.".
	prefix string
}

// NewPrettyHandler creates a PrettyHandler. A nil writer selects stderr.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}
	h := &PrettyHandler{out: output.New(w), mu: &sync.Mutex{}, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle renders and writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder
	color := style.Slate
	for _, ls := range levelStyles {
		if r.Level >= ls.min {
			line.WriteString(ls.marker + " ")
			color = ls.color
			break
		}
	}
	line.WriteString(r.Message)
	line.WriteString(h.bound)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&line, h.prefix, a)
		return true
	})

	text := h.out.String(line.String()).Foreground(termenv.RGBColor(string(color))).String()

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, text+"\n")
	return err
}

// WithAttrs returns a handler that renders attrs on every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.bound)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	clone := *h
	clone.bound = b.String()
	return &clone
}

// WithGroup returns a handler that qualifies subsequent keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// appendAttr writes " key=value", flattening nested groups into dotted keys.
func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, inner, ga)
		}
		return
	}

	value := a.Value.String()
	if value == "" || strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}
	b.WriteString(" " + prefix + a.Key + "=" + value)
}
