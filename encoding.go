package csvmd

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LookupEncoding resolves an encoding name. IANA names and aliases are tried
// first, then WHATWG labels, which cover the cpNNNN spellings. Underscores are
// accepted in place of hyphens, and "utf-8-sig" selects UTF-8 with BOM
// removal. An empty name means DefaultEncoding.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	if key == "" {
		key = DefaultEncoding
	}

	switch key {
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	case "utf-8-sig", "utf8-sig":
		return unicode.UTF8BOM, nil
	}

	if enc, err := ianaindex.IANA.Encoding(key); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(key); err == nil && enc != nil {
		return enc, nil
	}
	if rest, ok := strings.CutPrefix(key, "cp"); ok {
		if enc, err := htmlindex.Get("windows-" + rest); err == nil && enc != nil {
			return enc, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// EncodingName returns a canonical name for enc, for log output.
func EncodingName(enc encoding.Encoding) string {
	if enc == unicode.UTF8BOM {
		return "utf-8-sig"
	}
	if name, err := ianaindex.MIME.Name(enc); err == nil && name != "" {
		return strings.ToLower(name)
	}
	if name, err := htmlindex.Name(enc); err == nil {
		return name
	}
	if name, err := ianaindex.IANA.Name(enc); err == nil && name != "" {
		return strings.ToLower(name)
	}
	return fmt.Sprint(enc)
}

// decodeBytes converts data to UTF-8. UTF-8 input is validated rather than
// repaired, and a leading byte order mark is dropped.
func decodeBytes(data []byte, enc encoding.Encoding) ([]byte, error) {
	switch enc {
	case unicode.UTF8, unicode.UTF8BOM:
		if _, _, err := transform.Bytes(encoding.UTF8Validator, data); err != nil {
			return nil, err
		}
		return bytes.TrimPrefix(data, utf8BOM), nil
	default:
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return nil, err
		}
		return bytes.TrimPrefix(out, utf8BOM), nil
	}
}
