// # csvmd: Delimited Text to Markdown Tables
//
// csvmd reads a delimited text file (CSV, semicolon- or tab-separated, ...) and renders it as a GitHub-flavored Markdown table. Parsing follows RFC 4180 quoting rules; rendering escapes cell content so the table structure survives any input.
//
// # Features
//
// - Streaming, quote-aware `Reader` with a configurable single-byte separator, CRLF/LF/CR line endings, and blank-line skipping.
// - Input decoding from any named character encoding known to golang.org/x/text, including Python-style aliases such as `cp1257` or `utf-8-sig`.
// - Buffered Markdown table `Writer` with pipe escaping, newline replacement, and a uniform arity policy (`PadTruncate` or `Strict`).
// - Optional column alignment measured in terminal display width.
// - Structured errors: `ConvertError` carries a `Kind` (input not found, decode, parse, output write), and `ParseError` carries line and column.
// - Atomic output writes through an afero filesystem.
//
// # Getting Started
//
//	md, err := csvmd.Convert(afero.NewOsFs(), "data.csv", csvmd.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	return csvmd.WriteOutput(afero.NewOsFs(), csvmd.OutputFile, md)
package csvmd

// ArityPolicy selects how rows whose field count differs from the header are rendered.
type ArityPolicy int

const (
	// PadTruncate pads short rows with empty cells and drops extra cells from long rows.
	PadTruncate ArityPolicy = iota
	// Strict rejects the first row whose field count differs from the header.
	Strict
)

// String returns the policy name used in flags and log output.
func (p ArityPolicy) String() string {
	switch p {
	case PadTruncate:
		return "pad"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

const (
	// DefaultEncoding is used when Options.Encoding is empty.
	DefaultEncoding = "utf-8"
	// DefaultSeparator is used when Options.Separator is zero.
	DefaultSeparator byte = ','
	// DefaultLineBreak replaces embedded newlines inside table cells.
	DefaultLineBreak = "<br>"
)

// Options configures reading and rendering. The zero value is usable and
// equivalent to DefaultOptions.
type Options struct {
	// Encoding names the character encoding of the input. Default is "utf-8".
	Encoding string
	// Separator is the field delimiter. Default is ','.
	Separator byte
	// Policy decides how jagged rows are rendered. Default is PadTruncate.
	Policy ArityPolicy
	// Align pads every cell to the display width of its column.
	Align bool
	// LineBreak replaces CR, LF, and CRLF inside cells. Default is "<br>".
	LineBreak string
}

// DefaultOptions returns Options with every default spelled out.
func DefaultOptions() Options {
	return Options{
		Encoding:  DefaultEncoding,
		Separator: DefaultSeparator,
		Policy:    PadTruncate,
		LineBreak: DefaultLineBreak,
	}
}

func (o Options) withDefaults() Options {
	if o.Encoding == "" {
		o.Encoding = DefaultEncoding
	}
	if o.Separator == 0 {
		o.Separator = DefaultSeparator
	}
	if o.LineBreak == "" {
		o.LineBreak = DefaultLineBreak
	}
	return o
}
