package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound to
// a renderer for the handler's output, so color is dropped automatically
// when that output is not a terminal.
type palette struct {
	key     lipgloss.Style
	message lipgloss.Style
	str     lipgloss.Style
	number  lipgloss.Style
	yes     lipgloss.Style
	no      lipgloss.Style
	moment  lipgloss.Style
	muted   lipgloss.Style
	trace   lipgloss.Style
	debug   lipgloss.Style
	info    lipgloss.Style
	warn    lipgloss.Style
	error   lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)

	return palette{
		key:     r.NewStyle().Foreground(lipgloss.Color("8")),
		message: r.NewStyle().Bold(true),
		str:     r.NewStyle().Foreground(lipgloss.Color("6")),
		number:  r.NewStyle().Foreground(lipgloss.Color("3")),
		yes:     r.NewStyle().Foreground(lipgloss.Color("2")),
		no:      r.NewStyle().Foreground(lipgloss.Color("1")),
		moment:  r.NewStyle().Foreground(lipgloss.Color("5")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		trace:   r.NewStyle().Foreground(lipgloss.Color("4")).Faint(true),
		debug:   r.NewStyle().Foreground(lipgloss.Color("4")),
		info:    r.NewStyle().Foreground(lipgloss.Color("2")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		error:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.error
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes colorized records for humans. In text format each
// record is one line; in JSON format each record is an indented object.
//
// Attributes added with WithAttrs are kept with their group prefix applied,
// and values implementing slog.LogValuer are resolved before styling.
type prettyHandler struct {
	opts   slog.HandlerOptions
	style  palette
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	prefix string
	json   bool
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		style: newPalette(w),
		mu:    &sync.Mutex{},
		w:     w,
	}
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	h := newPrettyTextHandler(w, opts)
	h.json = true

	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.prefix = h.prefix + name + "."

	return &clone
}

// qualify prefixes the keys of attrs with the open group names.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.prefix == "" {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.prefix + a.Key, Value: a.Value}
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	header := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		a := slog.Time(slog.TimeKey, r.Time)
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			header = append(header, a)
		}
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			header = append(header,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify([]slog.Attr{a})...)

		return true
	})

	buf := new(bytes.Buffer)

	if h.json {
		h.writeJSON(buf, header, r.Level, r.Message, attrs)
	} else {
		h.writeText(buf, header, r.Level, r.Message, attrs)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeText(
	buf *bytes.Buffer,
	header []slog.Attr,
	level slog.Level,
	msg string,
	attrs []slog.Attr,
) {
	for _, a := range header {
		buf.WriteString(h.style.muted.Render(a.Value.String()))
		buf.WriteByte(' ')
	}

	buf.WriteString(h.style.level(level).Render(Level(level).String()))
	buf.WriteByte(' ')
	buf.WriteString(h.style.message.Render(msg))

	for _, a := range attrs {
		h.writeTextAttr(buf, "", a)
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeTextAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range a.Value.Group() {
			h.writeTextAttr(buf, prefix, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.style.key.Render(prefix + a.Key + "="))
	buf.WriteString(h.value(a.Value, false))
}

func (h *prettyHandler) writeJSON(
	buf *bytes.Buffer,
	header []slog.Attr,
	level slog.Level,
	msg string,
	attrs []slog.Attr,
) {
	fields := make([]string, 0, len(header)+len(attrs)+2)

	for _, a := range header {
		fields = append(fields, h.jsonField(a.Key, h.value(a.Value, true)))
	}

	fields = append(fields,
		h.jsonField(slog.LevelKey,
			h.style.level(level).Render(strconv.Quote(Level(level).String()))),
		h.jsonField(slog.MessageKey, h.style.message.Render(strconv.Quote(msg))),
	)

	for _, a := range attrs {
		if field, ok := h.jsonAttr(a, "  "); ok {
			fields = append(fields, field)
		}
	}

	buf.WriteString("{\n  ")
	buf.WriteString(strings.Join(fields, ",\n  "))
	buf.WriteString("\n}\n")
}

func (h *prettyHandler) jsonField(key, value string) string {
	return h.style.key.Render(strconv.Quote(key)+":") + " " + value
}

func (h *prettyHandler) jsonAttr(a slog.Attr, indent string) (string, bool) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return "", false
	}

	if a.Value.Kind() != slog.KindGroup {
		return h.jsonField(a.Key, h.value(a.Value, true)), true
	}

	inner := indent + "  "
	fields := make([]string, 0, len(a.Value.Group()))

	for _, ga := range a.Value.Group() {
		if field, ok := h.jsonAttr(ga, inner); ok {
			fields = append(fields, field)
		}
	}

	if len(fields) == 0 {
		return "", false
	}

	return h.jsonField(a.Key,
		"{\n"+inner+strings.Join(fields, ",\n"+inner)+"\n"+indent+"}"), true
}

// value renders v styled by kind. Strings are quoted when quote is set.
func (h *prettyHandler) value(v slog.Value, quote bool) string {
	switch v.Kind() {
	case slog.KindString:
		if quote {
			return h.style.str.Render(strconv.Quote(v.String()))
		}

		return h.style.str.Render(v.String())

	case slog.KindInt64:
		return h.style.number.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.style.number.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.style.number.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")

	case slog.KindDuration:
		return h.style.moment.Render(quoteIf(quote, v.Duration().String()))

	case slog.KindTime:
		return h.style.moment.Render(quoteIf(quote, v.Time().Format(time.RFC3339)))

	default:
		if v.Any() == nil {
			return h.style.muted.Render("null")
		}

		return h.style.str.Render(quoteIf(quote, v.String()))
	}
}

func quoteIf(quote bool, s string) string {
	if quote {
		return strconv.Quote(s)
	}

	return s
}
