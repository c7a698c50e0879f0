package csvmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWriterWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		header  []string
		records [][]string
		config  func(*Writer)
		want    string
	}{
		{
			name:    "basic",
			header:  []string{"a", "b", "c"},
			records: [][]string{{"1", "2", "3"}},
			want:    "| a | b | c |\n|---|---|---|\n| 1 | 2 | 3 |\n",
		},
		{
			name:   "headerOnly",
			header: []string{"name", "age"},
			want:   "| name | age |\n|---|---|\n",
		},
		{
			name:    "emptyField",
			header:  []string{"a", "b"},
			records: [][]string{{"", "b"}},
			want:    "| a | b |\n|---|---|\n|  | b |\n",
		},
		{
			name:    "pipeEscaped",
			header:  []string{"expr"},
			records: [][]string{{"a|b"}},
			want:    "| expr |\n|---|\n| a\\|b |\n",
		},
		{
			name:    "newlinesReplaced",
			header:  []string{"note"},
			records: [][]string{{"one\ntwo\r\nthree\rfour"}},
			want:    "| note |\n|---|\n| one<br>two<br>three<br>four |\n",
		},
		{
			name:    "customLineBreak",
			header:  []string{"note"},
			records: [][]string{{"one\ntwo"}},
			config: func(w *Writer) {
				w.LineBreak = " / "
			},
			want: "| note |\n|---|\n| one / two |\n",
		},
		{
			name:    "shortRowPadded",
			header:  []string{"a", "b", "c"},
			records: [][]string{{"1"}},
			want:    "| a | b | c |\n|---|---|---|\n| 1 |  |  |\n",
		},
		{
			name:    "longRowTruncated",
			header:  []string{"a"},
			records: [][]string{{"1", "2", "3"}},
			want:    "| a |\n|---|\n| 1 |\n",
		},
		{
			name:    "widths",
			header:  []string{"name", "n"},
			records: [][]string{{"Alice", "30"}},
			config: func(w *Writer) {
				w.Widths = []int{5, 2}
			},
			want: "| name  | n  |\n|-------|----|\n| Alice | 30 |\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if tc.config != nil {
				tc.config(w)
			}
			if err := w.WriteHeader(tc.header); err != nil {
				t.Fatalf("WriteHeader() error = %v", err)
			}
			for _, rec := range tc.records {
				if err := w.Write(rec); err != nil {
					t.Fatalf("Write() error = %v", err)
				}
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("unexpected output:\n got: %q\nwant: %q", got, tc.want)
			}
			if w.Rows() != len(tc.records) {
				t.Fatalf("Rows() = %d, want %d", w.Rows(), len(tc.records))
			}
		})
	}
}

func TestWriterStrict(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Policy = Strict

	if err := w.WriteHeader([]string{"a", "b"}); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if err := w.Write([]string{"1", "2"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	err := w.Write([]string{"3"})
	var rerr *RowError
	if !errors.As(err, &rerr) {
		t.Fatalf("Write() error = %v, want *RowError", err)
	}
	if rerr.Row != 1 || rerr.Want != 2 || rerr.Got != 1 {
		t.Fatalf("RowError = %+v, want row 1 want 2 got 1", rerr)
	}
	if !errors.Is(err, ErrFieldCount) {
		t.Fatalf("RowError should unwrap to ErrFieldCount")
	}
	if w.Error() != nil {
		t.Fatalf("row errors must not poison the writer, Error() = %v", w.Error())
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if want := "| a | b |\n|---|---|\n| 1 | 2 |\n"; buf.String() != want {
		t.Fatalf("unexpected output got %q want %q", buf.String(), want)
	}
}

func TestWriterHeaderRules(t *testing.T) {
	t.Parallel()

	w := NewWriter(&strings.Builder{})
	if err := w.Write([]string{"x"}); !errors.Is(err, errNoHeader) {
		t.Fatalf("Write() before header error = %v, want errNoHeader", err)
	}
	if err := w.WriteHeader(nil); !errors.Is(err, errNoColumns) {
		t.Fatalf("WriteHeader(nil) error = %v, want errNoColumns", err)
	}
	if err := w.WriteHeader([]string{"h"}); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if err := w.WriteHeader([]string{"h"}); !errors.Is(err, errHeaderWritten) {
		t.Fatalf("second WriteHeader() error = %v, want errHeaderWritten", err)
	}
}

func TestWriterWriteAll(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf)

	records := [][]string{
		{"alpha", "beta"},
		{"gamma", "delta"},
	}

	if err := w.WriteHeader([]string{"x", "y"}); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := "| x | y |\n|---|---|\n| alpha | beta |\n| gamma | delta |\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output got %q want %q", got, want)
	}
}

func TestWriterReset(t *testing.T) {
	t.Parallel()

	var buf1 bytes.Buffer
	var buf2 bytes.Buffer

	var w Writer
	w.Reset(&buf1)

	if err := w.WriteHeader([]string{"a"}); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := buf1.String(); got != "| a |\n|---|\n" {
		t.Fatalf("unexpected buf1 contents %q", got)
	}

	w.LineBreak = " "
	w.Reset(&buf2)
	if err := w.WriteHeader([]string{"x", "y\nz"}); err != nil {
		t.Fatalf("WriteHeader() after Reset error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := buf2.String(); got != "| x | y z |\n|---|---|\n" {
		t.Fatalf("unexpected buf2 contents %q", got)
	}
}

type flushFailWriter struct {
	fail error
}

func (f *flushFailWriter) Write([]byte) (int, error) {
	return 0, f.fail
}

func TestWriterFlushError(t *testing.T) {
	t.Parallel()

	exp := errors.New("flush failed")
	w := NewWriter(&flushFailWriter{fail: exp})

	if err := w.WriteHeader([]string{"a"}); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if err := w.Flush(); !errors.Is(err, exp) {
		t.Fatalf("expected flush error %v, got %v", exp, err)
	}
	if err := w.Write([]string{"b"}); !errors.Is(err, exp) {
		t.Fatalf("Write() should return stored error %v, got %v", exp, err)
	}
	if err := w.Error(); !errors.Is(err, exp) {
		t.Fatalf("Error() should return %v, got %v", exp, err)
	}
}

func TestEscapeCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a|b", `a\|b`},
		{"||", `\|\|`},
		{"a\nb", "a<br>b"},
		{"a\r\nb", "a<br>b"},
		{"a\rb", "a<br>b"},
		{"\n\n", "<br><br>"},
		{"x|\ny", `x\|<br>y`},
		{"héllo|wörld", `héllo\|wörld`},
	}
	for _, tc := range tests {
		if got := EscapeCell(tc.in, DefaultLineBreak); got != tc.want {
			t.Fatalf("EscapeCell(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewWriterNilPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("NewWriter should panic on nil writer")
		}
	}()
	NewWriter(nil)
}
