package textio

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"github.com/oukeidos/filtertranslate/internal/files"
	"golang.org/x/text/encoding"
)

// SplitLines splits text after every "\n", keeping the terminator on each
// line. A final line without a terminator is kept as is.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ReadLines decodes the whole file at path and splits it into lines.
func ReadLines(path string, enc encoding.Encoding) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, err := Decode(data, enc)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

// Decode converts raw file content to a UTF-8 string.
func Decode(data []byte, enc encoding.Encoding) (string, error) {
	if isUTF8(enc) {
		if !utf8.Valid(data) {
			return "", apperrors.Config("Input is not valid UTF-8. Use --encoding to select the file's encoding.", nil)
		}
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", apperrors.Config("Failed to decode input with the selected encoding.", err)
	}
	return string(out), nil
}

// Encode converts text to the target encoding. Characters the encoding cannot
// represent are an error, not silently replaced.
func Encode(text string, enc encoding.Encoding) ([]byte, error) {
	if isUTF8(enc) {
		return []byte(text), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	return out, nil
}

// WriteFile encodes text and replaces path atomically.
func WriteFile(path, text string, enc encoding.Encoding) error {
	data, err := Encode(text, enc)
	if err != nil {
		return err
	}
	return files.AtomicWrite(path, data, 0644)
}
