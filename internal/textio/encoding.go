// Package textio reads and writes line-oriented text files in a named
// character encoding.
package textio

import (
	"fmt"
	"strings"

	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "utf-8"

// Lookup resolves an encoding name. IANA names are tried first so that
// "latin1" means ISO-8859-1; WHATWG labels such as "utf8" or "cp1252" are the
// fallback.
func Lookup(name string) (encoding.Encoding, error) {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		trimmed = DefaultEncoding
	}
	candidates := []string{trimmed}
	if alt := strings.ReplaceAll(trimmed, "_", "-"); alt != trimmed {
		candidates = append(candidates, alt)
	}
	if alt := strings.ReplaceAll(trimmed, "-", ""); alt != trimmed {
		candidates = append(candidates, alt)
	}

	for _, c := range candidates {
		if enc, err := ianaindex.IANA.Encoding(c); err == nil && enc != nil {
			return enc, nil
		}
		if enc, err := htmlindex.Get(c); err == nil {
			return enc, nil
		}
	}
	return nil, apperrors.Config(fmt.Sprintf("Unknown encoding %q.", name), nil)
}

func isUTF8(enc encoding.Encoding) bool {
	return enc == unicode.UTF8 || enc == unicode.UTF8BOM
}
