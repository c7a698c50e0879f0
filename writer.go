package csvmd

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

var (
	errNilWriter      = errors.New("csvmd: writer is nil")
	errWriterNoTarget = errors.New("csvmd: writer destination cannot be nil")
	errNoHeader       = errors.New("csvmd: header must be written before data rows")
	errHeaderWritten  = errors.New("csvmd: header already written")
	errNoColumns      = errors.New("csvmd: header has no fields")
)

// Writer emits a GitHub-flavored Markdown table one record at a time. The
// first call must be WriteHeader; every later record is fitted to the header
// width according to Policy.
type Writer struct {
	dst *bufio.Writer

	// Policy decides what happens to rows whose width differs from the header.
	Policy ArityPolicy
	// LineBreak replaces embedded newlines. Default is "<br>".
	LineBreak string
	// Widths, when set, pads every cell of column i to Widths[i] display columns.
	Widths []int

	columns int
	rows    int
	cells   []string
	err     error
}

// NewWriter creates a Writer that buffers output to w.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{
		dst:       bufio.NewWriterSize(w, defaultBufferSize),
		LineBreak: DefaultLineBreak,
	}
}

// Reset switches the destination and forgets the header, keeping Policy,
// LineBreak, and Widths.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.columns = 0
	w.rows = 0
	w.err = nil
}

// WriteHeader emits the header line and the dash separator line. The header
// fixes the column count for the rest of the table.
func (w *Writer) WriteHeader(header []string) error {
	if err := w.ready(); err != nil {
		return err
	}
	if w.columns > 0 {
		return errHeaderWritten
	}
	if len(header) == 0 {
		return errNoColumns
	}
	w.columns = len(header)

	if err := w.writeLine(header); err != nil {
		return err
	}

	w.cells = w.cells[:0]
	for i := range w.columns {
		n := 3
		if i < len(w.Widths) && w.Widths[i]+2 > n {
			n = w.Widths[i] + 2
		}
		w.cells = append(w.cells, strings.Repeat("-", n))
	}
	return w.emit("|" + strings.Join(w.cells, "|") + "|\n")
}

// Write emits one data row. With PadTruncate the row is padded or cut to the
// header width; with Strict a width mismatch returns a *RowError and nothing
// is written.
func (w *Writer) Write(record []string) error {
	if err := w.ready(); err != nil {
		return err
	}
	if w.columns == 0 {
		return errNoHeader
	}
	if len(record) != w.columns && w.Policy == Strict {
		return &RowError{Row: w.rows, Want: w.columns, Got: len(record)}
	}
	if err := w.writeLine(record); err != nil {
		return err
	}
	w.rows++
	return nil
}

// WriteAll writes multiple data rows, stopping at the first error.
func (w *Writer) WriteAll(records [][]string) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.ready(); err != nil {
		return err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first I/O error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

// Rows returns the number of data rows written since the header.
func (w *Writer) Rows() int {
	return w.rows
}

func (w *Writer) ready() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	return w.err
}

// writeLine renders "| c1 | c2 | ... |" for exactly w.columns cells.
func (w *Writer) writeLine(record []string) error {
	lineBreak := w.LineBreak
	if lineBreak == "" {
		lineBreak = DefaultLineBreak
	}

	w.cells = w.cells[:0]
	for i := range w.columns {
		var cell string
		if i < len(record) {
			cell = EscapeCell(record[i], lineBreak)
		}
		if i < len(w.Widths) {
			cell = padCell(cell, w.Widths[i])
		}
		w.cells = append(w.cells, cell)
	}
	return w.emit("| " + strings.Join(w.cells, " | ") + " |\n")
}

func (w *Writer) emit(line string) error {
	if _, err := w.dst.WriteString(line); err != nil {
		w.err = err
		return err
	}
	return nil
}

// EscapeCell makes field safe inside a table cell: '|' becomes "\|" and each
// CRLF, LF, or CR becomes lineBreak.
func EscapeCell(field, lineBreak string) string {
	if !strings.ContainsAny(field, "|\r\n") {
		return field
	}
	var b strings.Builder
	b.Grow(len(field) + 8)
	for i := 0; i < len(field); i++ {
		switch c := field[i]; c {
		case '|':
			b.WriteString(`\|`)
		case '\r':
			if i+1 < len(field) && field[i+1] == '\n' {
				i++
			}
			b.WriteString(lineBreak)
		case '\n':
			b.WriteString(lineBreak)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func padCell(cell string, width int) string {
	if gap := width - runewidth.StringWidth(cell); gap > 0 {
		return cell + strings.Repeat(" ", gap)
	}
	return cell
}
