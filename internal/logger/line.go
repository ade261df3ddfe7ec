package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// LineHandler writes one line per record. In pretty mode the line is
//
//	[TIME] LEVEL message key=value
//
// with ANSI colors; in plain mode it is
//
//	LEVEL - message key=value
//
// which is the shape of the serial console log on the embedded target.
type LineHandler struct {
	opts   slog.HandlerOptions
	w      io.Writer
	mu     *sync.Mutex
	pretty bool
	group  string
	attrs  []slog.Attr
}

// NewPrettyHandler returns a colored, timestamped LineHandler.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *LineHandler {
	return newLineHandler(w, opts, true)
}

// NewPlainHandler returns an uncolored LineHandler without timestamps.
func NewPlainHandler(w io.Writer, opts *slog.HandlerOptions) *LineHandler {
	return newLineHandler(w, opts, false)
}

func newLineHandler(w io.Writer, opts *slog.HandlerOptions, pretty bool) *LineHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &LineHandler{
		opts:   *opts,
		w:      w,
		mu:     &sync.Mutex{},
		pretty: pretty,
	}
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	if h.pretty {
		buf = append(buf, colorGray...)
		buf = append(buf, '[')
		buf = r.Time.AppendFormat(buf, time.DateTime)
		buf = append(buf, ']')
		buf = append(buf, colorReset...)
		buf = append(buf, ' ')
		buf = append(buf, levelColor(r.Level)...)
		buf = append(buf, colorBold...)
		buf = append(buf, padLevel(r.Level.String())...)
		buf = append(buf, colorReset...)
		buf = append(buf, ' ')
	} else {
		buf = append(buf, r.Level.String()...)
		buf = append(buf, " - "...)
	}
	buf = append(buf, r.Message...)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		attrs = append(attrs, a)
		return true
	})
	if len(attrs) > 0 {
		buf = append(buf, ' ')
		if h.pretty {
			buf = append(buf, colorCyan...)
		}
		for i, attr := range attrs {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = appendAttr(buf, attr)
		}
		if h.pretty {
			buf = append(buf, colorReset...)
		}
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

// WithAttrs qualifies attrs with the current group so that attributes added
// before a WithGroup keep their original key.
func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return c
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	if h.group != "" {
		c.group = h.group + "." + name
	} else {
		c.group = name
	}
	return c
}

func (h *LineHandler) clone() *LineHandler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	return &c
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorBlue
	default:
		return colorGray
	}
}

// padLevel pads to five characters.
func padLevel(level string) string {
	if len(level) == 4 {
		return level + " "
	}
	return level
}

func appendAttr(buf []byte, attr slog.Attr) []byte {
	buf = append(buf, attr.Key...)
	buf = append(buf, '=')

	v := attr.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if needsQuoting(s) {
			buf = fmt.Appendf(buf, "%q", s)
		} else {
			buf = append(buf, s...)
		}
	case slog.KindTime:
		buf = v.Time().AppendFormat(buf, time.RFC3339)
	case slog.KindDuration:
		buf = append(buf, v.Duration().String()...)
	case slog.KindGroup:
		buf = append(buf, '{')
		for i, a := range v.Group() {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = appendAttr(buf, a)
		}
		buf = append(buf, '}')
	default:
		buf = fmt.Append(buf, v.Any())
	}
	return buf
}

func needsQuoting(s string) bool {
	for _, c := range s {
		if c == ' ' || c == '\t' || c == '\n' || c == '"' {
			return true
		}
	}
	return false
}
