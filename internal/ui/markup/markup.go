// Package markup provides a small error-latching writer for hand-built templ
// components.
package markup

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Writer writes HTML fragments and keeps the first error.
type Writer struct {
	w   io.Writer
	err error
}

// New wraps w.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes s unescaped.
func (m *Writer) Raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// Text writes s HTML-escaped.
func (m *Writer) Text(s string) {
	m.Raw(templ.EscapeString(s))
}

// Printf formats into the output. String arguments are escaped; use Raw for
// trusted markup.
func (m *Writer) Printf(format string, args ...any) {
	if m.err != nil {
		return
	}
	escaped := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			a = templ.EscapeString(s)
		}
		escaped[i] = a
	}
	_, m.err = fmt.Fprintf(m.w, format, escaped...)
}

// Component renders c into the output.
func (m *Writer) Component(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

// Err returns the first write error.
func (m *Writer) Err() error {
	return m.err
}

// Func builds a templ component from a function that writes through a Writer.
func Func(fn func(ctx context.Context, m *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := New(w)
		fn(ctx, m)
		return m.Err()
	})
}
