package csvmd

import (
	"bytes"
	"fmt"
	"io"
	"unsafe"
)

const defaultBufferSize = 1 << 10 // 1024 bytes

// ParseError records where in the input a malformed record was found.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("csvmd: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Is.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Reader parses delimited records from a byte stream, honoring double-quote
// quoting: quoted fields may hold the separator, newlines, and "" for a
// literal quote.
type Reader struct {
	src io.Reader

	// Comma is the field separator. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// ReuseRecord indicates whether Read should reuse the backing array of the returned slice.
	ReuseRecord bool
	// FieldsPerRecord expects each record to contain this many fields.
	// Zero captures the width of the first record; a negative value disables the check.
	FieldsPerRecord int
	// SkipBlankLines drops lines that hold no characters at all.
	SkipBlankLines bool

	buf    []byte
	bufPos int
	bufLen int
	bufErr error

	record      []string
	dataBuf     []byte
	fieldBounds []int
	finished    bool
	line        int
}

// NewReader returns a Reader consuming src with ',' as separator and '"' as
// quote. It panics if src is nil.
func NewReader(src io.Reader) *Reader {
	if src == nil {
		panic("csvmd: reader source cannot be nil")
	}

	return &Reader{
		src:         src,
		Comma:       ',',
		Quote:       '"',
		buf:         make([]byte, defaultBufferSize),
		record:      make([]string, 0, 16),
		dataBuf:     make([]byte, 0, 512),
		fieldBounds: make([]int, 0, 32),
		line:        1,
	}
}

// validSeparator reports whether c can delimit fields given quote q.
func validSeparator(c, q byte) bool {
	return c != 0 && c != q && c != '\r' && c != '\n' && c < 0x80
}

// Read returns the next record. io.EOF signals that no records remain. When
// ReuseRecord is set the returned slice is only valid until the next call.
func (r *Reader) Read() (dst []string, err error) {
	if r == nil || r.src == nil {
		return nil, io.EOF
	}
	if r.finished {
		return nil, io.EOF
	}

	comma := r.comma()
	quote := r.quote()
	if !validSeparator(comma, quote) {
		r.finished = true
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeparator, comma)
	}

	if r.ReuseRecord {
		r.record = r.record[:0]
	} else {
		r.record = nil
	}
	r.dataBuf = r.dataBuf[:0]
	r.fieldBounds = r.fieldBounds[:0]

	inQuotes := false
	sawQuotedField := false
	column := 1
	fieldStart := 0

	for {
		if r.bufPos >= r.bufLen {
			if r.bufErr != nil {
				err := r.bufErr
				r.bufErr = nil
				if err != io.EOF {
					return nil, err
				}
				r.finished = true
				if inQuotes {
					return nil, r.wrapError(column, ErrUnterminatedQuote)
				}
				// Data ended without a terminator: flush what we have.
				if len(r.fieldBounds) > 0 || len(r.dataBuf) > 0 || sawQuotedField {
					r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
					return r.buildRecord()
				}
				return nil, io.EOF
			}
			if err := r.fill(); err != nil {
				r.bufErr = err
			}
			continue
		}

		if !inQuotes {
			data := r.buf[r.bufPos:r.bufLen]
			quoteIdx := bytes.IndexByte(data, quote)
			if quoteIdx != 0 {
				// Scan plain bytes, stopping short of the next quote if any.
				limit := r.bufLen
				if quoteIdx > 0 {
					limit = r.bufPos + quoteIdx
				}
				recordDone, err := r.consumePlain(limit, comma, &column, &fieldStart, &sawQuotedField)
				if err != nil {
					return nil, err
				}
				if recordDone {
					return r.buildRecord()
				}
				if r.bufPos >= r.bufLen || quoteIdx < 0 {
					continue
				}
			}
		}

		curColumn := column
		b := r.buf[r.bufPos]
		r.bufPos++

		if inQuotes {
			switch b {
			case quote:
				next, err := r.peekByte()
				if err != nil && err != io.EOF {
					return nil, err
				}
				if err == nil && next == quote {
					r.bufPos++
					r.dataBuf = append(r.dataBuf, quote)
					column = curColumn + 2
					continue
				}
				inQuotes = false
				column = curColumn + 1
			case '\n':
				r.dataBuf = append(r.dataBuf, b)
				r.line++
				column = 1
			default:
				run := r.runUntil(quote, '\n', 0, 0)
				r.dataBuf = append(r.dataBuf, r.buf[r.bufPos-1:r.bufPos-1+run]...)
				r.bufPos += run - 1
				column = curColumn + run
			}
			continue
		}

		switch b {
		case comma:
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			fieldStart = len(r.dataBuf)
			sawQuotedField = false
			column = curColumn + 1
		case '\n', '\r':
			if b == '\r' {
				if err := r.skipLF(); err != nil {
					return nil, err
				}
			}
			if r.endRecord(fieldStart, &column, &sawQuotedField) {
				return r.buildRecord()
			}
		case quote:
			// A quote opens a quoted field only at the start of the field.
			if len(r.dataBuf) != fieldStart || sawQuotedField {
				return nil, r.wrapError(curColumn, ErrBareQuote)
			}
			inQuotes = true
			sawQuotedField = true
			column = curColumn + 1
		default:
			run := r.runUntil(comma, '\n', '\r', quote)
			r.dataBuf = append(r.dataBuf, r.buf[r.bufPos-1:r.bufPos-1+run]...)
			r.bufPos += run - 1
			column = curColumn + run
		}
	}
}

// ReadAll collects every remaining record. It returns nil records with the
// first non-EOF error.
func (r *Reader) ReadAll() (records [][]string, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// Line reports the line number the reader is positioned on.
func (r *Reader) Line() int {
	return r.line
}

func (r *Reader) comma() byte {
	if r.Comma == 0 {
		return ','
	}
	return r.Comma
}

func (r *Reader) quote() byte {
	if r.Quote == 0 {
		return '"'
	}
	return r.Quote
}

// endRecord closes the current line. It reports false when the line was blank
// and SkipBlankLines discarded it.
func (r *Reader) endRecord(fieldStart int, column *int, sawQuotedField *bool) bool {
	blank := len(r.fieldBounds) == 0 && len(r.dataBuf) == 0 && !*sawQuotedField
	r.line++
	*column = 1
	if blank && r.SkipBlankLines {
		return false
	}
	r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
	*sawQuotedField = false
	return true
}

// runUntil counts bytes from the one just consumed up to (not including) the
// first of the stop bytes. Zero stop bytes are ignored.
func (r *Reader) runUntil(a, b, c, d byte) int {
	run := 1
	for _, ch := range r.buf[r.bufPos:r.bufLen] {
		if ch == a || ch == b || (c != 0 && ch == c) || (d != 0 && ch == d) {
			break
		}
		run++
	}
	return run
}

// skipLF consumes the '\n' of a CRLF pair.
func (r *Reader) skipLF() error {
	next, err := r.peekByte()
	if err == nil && next == '\n' {
		r.bufPos++
		return nil
	}
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

// buildRecord slices the accumulated fields out of dataBuf and applies the
// FieldsPerRecord check.
func (r *Reader) buildRecord() ([]string, error) {
	fieldCount := len(r.fieldBounds) / 2

	var recordStr string
	if r.ReuseRecord {
		if len(r.dataBuf) > 0 {
			// Fields share the data buffer; they are overwritten by the next Read.
			recordStr = unsafe.String(unsafe.SliceData(r.dataBuf), len(r.dataBuf))
		}
		if cap(r.record) < fieldCount {
			r.record = make([]string, fieldCount)
		}
		r.record = r.record[:fieldCount]
	} else {
		recordStr = string(r.dataBuf)
		r.record = make([]string, fieldCount)
	}

	for i := range fieldCount {
		r.record[i] = recordStr[r.fieldBounds[2*i]:r.fieldBounds[2*i+1]]
	}

	switch {
	case r.FieldsPerRecord < 0:
		return r.record, nil
	case r.FieldsPerRecord == 0:
		r.FieldsPerRecord = len(r.record)
		return r.record, nil
	case len(r.record) != r.FieldsPerRecord:
		return r.record, ErrFieldCount
	}
	return r.record, nil
}

func (r *Reader) wrapError(column int, err error) error {
	return &ParseError{Line: r.line, Column: column, Err: err}
}

// consumePlain copies unquoted bytes into dataBuf up to buf[limit], splitting
// fields on comma. It reports whether a record terminator closed the record.
func (r *Reader) consumePlain(limit int, comma byte, column *int, fieldStart *int, sawQuotedField *bool) (bool, error) {
	for r.bufPos < limit {
		data := r.buf[r.bufPos:limit]
		next := len(data)
		delim := byte(0)
		for _, c := range [...]byte{comma, '\n', '\r'} {
			if idx := bytes.IndexByte(data, c); idx >= 0 && idx < next {
				next = idx
				delim = c
			}
		}

		if next > 0 {
			r.dataBuf = append(r.dataBuf, data[:next]...)
			r.bufPos += next
			*column += next
		}
		if delim == 0 {
			return false, nil
		}

		r.bufPos++
		switch delim {
		case comma:
			r.fieldBounds = append(r.fieldBounds, *fieldStart, len(r.dataBuf))
			*fieldStart = len(r.dataBuf)
			*sawQuotedField = false
			*column++
		case '\r':
			if err := r.skipLF(); err != nil {
				return false, err
			}
			fallthrough
		case '\n':
			if r.endRecord(*fieldStart, column, sawQuotedField) {
				return true, nil
			}
		}
	}
	return false, nil
}

// fill refills buf from src. Short reads with a nil error are retried by the caller.
func (r *Reader) fill() error {
	n, err := r.src.Read(r.buf)
	if n > 0 {
		r.bufPos = 0
		r.bufLen = n
	}
	return err
}

// peekByte returns the next byte without consuming it, refilling from src as needed.
func (r *Reader) peekByte() (byte, error) {
	for {
		if r.bufPos < r.bufLen {
			return r.buf[r.bufPos], nil
		}
		if r.bufErr != nil {
			return 0, r.bufErr
		}

		n, err := r.src.Read(r.buf)
		if n == 0 && err != nil {
			return 0, err
		}
		if n == 0 {
			continue
		}
		r.bufPos = 0
		r.bufLen = n
		r.bufErr = err
	}
}
