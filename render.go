package csvmd

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Render returns t as a Markdown table. It only fails under the Strict
// policy; a table without header fields renders as "".
func Render(t *Table, opts Options) (string, error) {
	var b strings.Builder
	if err := RenderTo(&b, t, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderTo writes t as a Markdown table to dst. Every line, the last one
// included, ends with '\n'.
func RenderTo(dst io.Writer, t *Table, opts Options) error {
	if t.Empty() {
		return nil
	}
	opts = opts.withDefaults()

	w := NewWriter(dst)
	w.Policy = opts.Policy
	w.LineBreak = opts.LineBreak
	if opts.Align {
		w.Widths = ColumnWidths(t, opts.LineBreak)
	}

	if err := w.WriteHeader(t.Header); err != nil {
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}
	return w.Flush()
}

// ColumnWidths returns, per header column, the widest escaped cell in display
// columns. Cells beyond the header width are ignored, as in rendering.
func ColumnWidths(t *Table, lineBreak string) []int {
	if t.Empty() {
		return nil
	}
	if lineBreak == "" {
		lineBreak = DefaultLineBreak
	}
	widths := make([]int, len(t.Header))
	measure := func(record []string) {
		for i := 0; i < len(record) && i < len(widths); i++ {
			if n := runewidth.StringWidth(EscapeCell(record[i], lineBreak)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}
	return widths
}
