package csvmd

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestParseTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		opts   Options
		header []string
		rows   [][]string
	}{
		{
			name:   "headerAndRows",
			input:  "name,age\nAlice,30\nBob,25\n",
			header: []string{"name", "age"},
			rows:   [][]string{{"Alice", "30"}, {"Bob", "25"}},
		},
		{
			name:   "headerOnly",
			input:  "name,age",
			header: []string{"name", "age"},
		},
		{
			name:  "empty",
			input: "",
		},
		{
			name:  "blankLinesOnly",
			input: "\n\r\n\n",
		},
		{
			name:   "blankLinesBetweenRows",
			input:  "\nh\n\n1\n\n2\n",
			header: []string{"h"},
			rows:   [][]string{{"1"}, {"2"}},
		},
		{
			name:   "jaggedRowsKept",
			input:  "a,b\n1\n1,2,3\n",
			header: []string{"a", "b"},
			rows:   [][]string{{"1"}, {"1", "2", "3"}},
		},
		{
			name:   "semicolon",
			input:  "name;age\nAlice;30\n",
			opts:   Options{Separator: ';'},
			header: []string{"name", "age"},
			rows:   [][]string{{"Alice", "30"}},
		},
		{
			name:   "utf8BOM",
			input:  "\uFEFFid,v\n1,2\n",
			header: []string{"id", "v"},
			rows:   [][]string{{"1", "2"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			table, err := ParseTable(strings.NewReader(tc.input), tc.opts)
			if err != nil {
				t.Fatalf("ParseTable() error = %v", err)
			}
			if !reflect.DeepEqual(table.Header, tc.header) {
				t.Fatalf("Header = %q, want %q", table.Header, tc.header)
			}
			if !reflect.DeepEqual(table.Rows, tc.rows) {
				t.Fatalf("Rows = %q, want %q", table.Rows, tc.rows)
			}
		})
	}
}

func TestParseTableErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		opts  Options
		kind  Kind
		is    error
	}{
		{
			name:  "unterminatedQuote",
			input: "a,b\n\"open,2\n",
			kind:  KindParse,
			is:    ErrUnterminatedQuote,
		},
		{
			name:  "bareQuoteInHeader",
			input: "a\"b\n",
			kind:  KindParse,
			is:    ErrBareQuote,
		},
		{
			name:  "invalidSeparator",
			input: "a\n",
			opts:  Options{Separator: '"'},
			kind:  KindParse,
			is:    ErrInvalidSeparator,
		},
		{
			name:  "invalidUTF8",
			input: "a,b\n\xff\xfe,1\n",
			kind:  KindDecode,
			is:    ErrDecode,
		},
		{
			name:  "unknownEncoding",
			input: "a\n",
			opts:  Options{Encoding: "no-such-charset"},
			kind:  KindDecode,
			is:    ErrUnknownEncoding,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseTable(strings.NewReader(tc.input), tc.opts)
			if err == nil {
				t.Fatalf("ParseTable() expected error")
			}
			if got := KindOf(err); got != tc.kind {
				t.Fatalf("KindOf() = %v, want %v (err %v)", got, tc.kind, err)
			}
			if !errors.Is(err, tc.is) {
				t.Fatalf("ParseTable() error = %v, want errors.Is %v", err, tc.is)
			}
		})
	}
}

func TestReadTable(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/data/people.csv", []byte("name,age\nAlice,30\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	table, err := ReadTable(fsys, "/data/people.csv", Options{})
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if table.Columns() != 2 || len(table.Rows) != 1 {
		t.Fatalf("ReadTable() = %+v, want 2 columns and 1 row", table)
	}

	t.Run("missing", func(t *testing.T) {
		_, err := ReadTable(fsys, "/data/missing.csv", Options{})
		if !errors.Is(err, ErrInputNotFound) {
			t.Fatalf("ReadTable() error = %v, want ErrInputNotFound", err)
		}
		var cerr *ConvertError
		if !errors.As(err, &cerr) || cerr.Path != "/data/missing.csv" {
			t.Fatalf("ReadTable() error = %#v, want ConvertError with path", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		if _, err := ReadTable(fsys, "/data", Options{}); KindOf(err) != KindInputNotFound {
			t.Fatalf("ReadTable() on directory error = %v, want KindInputNotFound", err)
		}
	})

	t.Run("parseErrorCarriesPath", func(t *testing.T) {
		if err := afero.WriteFile(fsys, "/data/bad.csv", []byte("a\n\"b\n"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		_, err := ReadTable(fsys, "/data/bad.csv", Options{})
		var cerr *ConvertError
		if !errors.As(err, &cerr) || cerr.Path != "/data/bad.csv" || cerr.Kind != KindParse {
			t.Fatalf("ReadTable() error = %#v, want KindParse with path", err)
		}
		var perr *ParseError
		if !errors.As(err, &perr) || perr.Line != 3 {
			t.Fatalf("ReadTable() error = %v, want ParseError on line 3", err)
		}
	})
}

func TestTableJagged(t *testing.T) {
	t.Parallel()

	table := &Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "2"}, {"1"}, {"1", "2"}, {"1", "2", "3"}},
	}
	if got, want := table.Jagged(), []int{1, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Jagged() = %v, want %v", got, want)
	}

	var nilTable *Table
	if nilTable.Jagged() != nil || nilTable.Columns() != 0 || !nilTable.Empty() {
		t.Fatalf("nil Table should be empty")
	}
}
