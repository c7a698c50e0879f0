package csvmd

import (
	"errors"
	"fmt"
)

var (
	// ErrBareQuote is returned when a quote appears inside an unquoted field.
	ErrBareQuote = errors.New("csvmd: bare quote in non-quoted field")
	// ErrUnterminatedQuote is returned when a quoted field is still open at EOF.
	ErrUnterminatedQuote = errors.New("csvmd: unterminated quoted field")
	// ErrFieldCount is returned when a record's width differs from the expected width.
	ErrFieldCount = errors.New("csvmd: wrong number of fields")
	// ErrInvalidSeparator is returned for separators that cannot delimit fields.
	ErrInvalidSeparator = errors.New("csvmd: invalid field separator")
	// ErrUnknownEncoding is returned when an encoding name does not resolve.
	ErrUnknownEncoding = errors.New("csvmd: unknown encoding")

	// ErrInputNotFound matches any ConvertError of KindInputNotFound.
	ErrInputNotFound = errors.New("csvmd: input not found")
	// ErrDecode matches any ConvertError of KindDecode.
	ErrDecode = errors.New("csvmd: cannot decode input")
	// ErrParse matches any ConvertError of KindParse.
	ErrParse = errors.New("csvmd: cannot process input")
	// ErrOutputWrite matches any ConvertError of KindOutputWrite.
	ErrOutputWrite = errors.New("csvmd: cannot write output")
)

// Kind classifies conversion failures for reporting.
type Kind int

const (
	KindParse Kind = iota
	KindInputNotFound
	KindDecode
	KindOutputWrite
)

func (k Kind) String() string {
	switch k {
	case KindInputNotFound:
		return "input not found"
	case KindDecode:
		return "decode failure"
	case KindOutputWrite:
		return "output write failure"
	default:
		return "parse failure"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInputNotFound:
		return ErrInputNotFound
	case KindDecode:
		return ErrDecode
	case KindOutputWrite:
		return ErrOutputWrite
	default:
		return ErrParse
	}
}

// ConvertError is the error returned by ReadTable, Convert, and WriteOutput.
// Path names the input (or output for KindOutputWrite); Encoding is set for
// decode failures.
type ConvertError struct {
	Kind     Kind
	Path     string
	Encoding string
	Err      error
}

func (e *ConvertError) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindDecode:
		return fmt.Sprintf("csvmd: decode %s as %s: %v", e.Path, e.Encoding, e.Err)
	case KindOutputWrite:
		return fmt.Sprintf("csvmd: write %s: %v", e.Path, e.Err)
	case KindInputNotFound:
		return fmt.Sprintf("csvmd: open %s: %v", e.Path, e.Err)
	default:
		if e.Path == "" {
			return fmt.Sprintf("csvmd: %v", e.Err)
		}
		return fmt.Sprintf("csvmd: process %s: %v", e.Path, e.Err)
	}
}

func (e *ConvertError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is makes errors.Is(err, ErrInputNotFound) and friends match on Kind.
func (e *ConvertError) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == e.Kind.sentinel()
}

// KindOf returns the Kind carried by err. Errors that are not ConvertErrors
// are treated as parse failures.
func KindOf(err error) Kind {
	var cerr *ConvertError
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return KindParse
}

// RowError reports which data row (zero-based, header excluded) broke the
// Strict arity policy.
type RowError struct {
	Row  int
	Want int
	Got  int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("csvmd: data row %d has %d fields, header has %d", e.Row+1, e.Got, e.Want)
}

func (e *RowError) Unwrap() error {
	return ErrFieldCount
}

// UserMessage turns a conversion error into the one-line message shown to
// users. path and encoding describe the input as the user supplied it.
func UserMessage(err error, path, encoding string) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindInputNotFound:
		return fmt.Sprintf("Error: File not found at '%s'", path)
	case KindDecode:
		return fmt.Sprintf("Error: Could not decode the file with encoding '%s'. Please check the file encoding.", encoding)
	case KindOutputWrite:
		var cerr *ConvertError
		errors.As(err, &cerr)
		return fmt.Sprintf("Error writing to output file '%s': %v", cerr.Path, cerr.Err)
	default:
		var cerr *ConvertError
		if errors.As(err, &cerr) && cerr.Err != nil {
			err = cerr.Err
		}
		return fmt.Sprintf("Error processing file: %v", err)
	}
}
