// Package logging renders slog records as plain text lines and routes them to the
// error and output log files.
package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// TimeLayout is the timestamp format at the start of every line.
const TimeLayout = "2006-01-02 15:04:05"

// Handler implements slog.Handler. Each record becomes one line
//
//	<timestamp> [<LEVEL>] <message> <optional JSON metadata>
//
// Records at error level are written to the error sink; every enabled record is
// written to the output sink and, when set, the mirror.
type Handler struct {
	level  slog.Leveler
	output io.Writer
	errors io.Writer
	mirror io.Writer

	mu     *sync.Mutex
	attrs  []groupedAttr
	groups []string
	now    func() time.Time
}

// groupedAttr remembers the groups that were open when the attribute was added.
type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

// Options configures a Handler.
type Options struct {
	Level  slog.Leveler
	Output io.Writer
	Errors io.Writer
	Mirror io.Writer
}

// NewHandler returns a Handler writing to the sinks in opts. Nil sinks are skipped.
func NewHandler(opts Options) *Handler {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{
		level:  level,
		output: opts.Output,
		errors: opts.Errors,
		mirror: opts.Mirror,
		mu:     &sync.Mutex{},
		now:    time.Now,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats the record and writes it to the matching sinks.
//
//nolint:gocritic // slog.Record is passed by value per slog.Handler interface
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	metadata := map[string]any{}
	for _, ga := range h.attrs {
		addAttr(metadata, ga.attr, ga.groups)
	}
	record.Attrs(func(attr slog.Attr) bool {
		addAttr(metadata, attr, h.groups)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = h.now()
	}

	var buf bytes.Buffer
	buf.WriteString(ts.Format(TimeLayout))
	buf.WriteString(" [")
	buf.WriteString(record.Level.String())
	buf.WriteString("] ")
	buf.WriteString(record.Message)
	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		buf.WriteByte(' ')
		buf.Write(encoded)
	}
	buf.WriteByte('\n')
	line := buf.Bytes()

	h.mu.Lock()
	defer h.mu.Unlock()

	if record.Level >= slog.LevelError && h.errors != nil {
		if _, err := h.errors.Write(line); err != nil {
			return err
		}
	}
	if h.output != nil {
		if _, err := h.output.Write(line); err != nil {
			return err
		}
	}
	if h.mirror != nil {
		if _, err := h.mirror.Write(line); err != nil {
			return err
		}
	}
	return nil
}

// WithAttrs returns a new Handler with the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]groupedAttr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	for _, attr := range attrs {
		newAttrs = append(newAttrs, groupedAttr{groups: h.groups, attr: attr})
	}

	clone := *h
	clone.attrs = newAttrs
	return &clone
}

// WithGroup returns a new Handler with the given group name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name

	clone := *h
	clone.groups = newGroups
	return &clone
}

func addAttr(dst map[string]any, attr slog.Attr, groups []string) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		prefix := groups
		if attr.Key != "" {
			prefix = append(append([]string{}, groups...), attr.Key)
		}
		for _, ga := range attr.Value.Group() {
			addAttr(dst, ga, prefix)
		}
	case slog.KindDuration:
		dst[key] = attr.Value.Duration().String()
	case slog.KindTime:
		dst[key] = attr.Value.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := attr.Value.Any().(error); ok {
			dst[key] = err.Error()
			return
		}
		dst[key] = attr.Value.Any()
	default:
		dst[key] = attr.Value.Any()
	}
}
