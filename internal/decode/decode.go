// Package decode turns raw uploaded bytes into text using a declared encoding.
// Undecodable bytes are replaced rather than failing the parse: loggers lie
// about their encoding often enough that a hard failure here would reject
// otherwise usable telemetry.
package decode

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Text decodes content using the named encoding. Unknown or empty encoding
// names fall back to UTF-8. Never returns an error: malformed byte sequences
// decode to U+FFFD replacement runes.
func Text(content []byte, encodingName string) string {
	enc := resolve(encodingName)
	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		// Decoders configured for replacement should not error; if one does,
		// salvage what UTF-8 validation can.
		return strings.ToValidUTF8(string(content), "�")
	}
	return string(out)
}

// Lines decodes content and splits it into lines, tolerating both LF and
// CRLF endings. A trailing newline does not produce a final empty line.
func Lines(content []byte, encodingName string) []string {
	text := Text(content, encodingName)
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func resolve(name string) encoding.Encoding {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return unicode.UTF8
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return unicode.UTF8
	}
	return enc
}
