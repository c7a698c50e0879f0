package csvmd

import (
	"bytes"
	"errors"
	"io"
	"io/fs"

	"github.com/spf13/afero"
)

// Table is a parsed input file: a header record followed by data records in
// file order.
type Table struct {
	Header []string
	Rows   [][]string
}

// Columns returns the header's field count, which every rendered line uses.
func (t *Table) Columns() int {
	if t == nil {
		return 0
	}
	return len(t.Header)
}

// Empty reports whether the table has no header at all.
func (t *Table) Empty() bool {
	return t.Columns() == 0
}

// Jagged returns the zero-based indexes of data rows whose field count
// differs from the header's.
func (t *Table) Jagged() []int {
	if t == nil {
		return nil
	}
	var out []int
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			out = append(out, i)
		}
	}
	return out
}

// ReadTable opens path on fsys and parses it with opts. The file handle is
// closed before ReadTable returns. Failures are reported as *ConvertError.
func ReadTable(fsys afero.Fs, path string, opts Options) (*Table, error) {
	opts = opts.withDefaults()

	f, err := fsys.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, openError(path, err)
	}
	if info.IsDir() {
		return nil, &ConvertError{Kind: KindInputNotFound, Path: path, Err: errors.New("is a directory")}
	}

	t, err := ParseTable(f, opts)
	if err != nil {
		var cerr *ConvertError
		if errors.As(err, &cerr) {
			cerr.Path = path
			return nil, cerr
		}
		return nil, &ConvertError{Kind: KindParse, Path: path, Err: err}
	}
	return t, nil
}

// ParseTable decodes r with opts.Encoding and parses it into a Table. An input
// with no records yields an empty Table and no error.
func ParseTable(r io.Reader, opts Options) (*Table, error) {
	opts = opts.withDefaults()

	enc, err := LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, &ConvertError{Kind: KindDecode, Encoding: opts.Encoding, Err: err}
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &ConvertError{Kind: KindParse, Err: err}
	}
	data, err := decodeBytes(raw, enc)
	if err != nil {
		return nil, &ConvertError{Kind: KindDecode, Encoding: opts.Encoding, Err: err}
	}

	cr := NewReader(bytes.NewReader(data))
	cr.Comma = opts.Separator
	cr.FieldsPerRecord = -1
	cr.SkipBlankLines = true

	t := &Table{}
	header, err := cr.Read()
	if err == io.EOF {
		return t, nil
	}
	if err != nil {
		return nil, &ConvertError{Kind: KindParse, Err: err}
	}
	t.Header = header

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &ConvertError{Kind: KindParse, Err: err}
	}
	t.Rows = rows
	return t, nil
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return &ConvertError{Kind: KindInputNotFound, Path: path, Err: err}
	}
	return &ConvertError{Kind: KindParse, Path: path, Err: err}
}
