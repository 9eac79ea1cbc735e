package netx

import (
	"net/url"
	"strings"
)

// FilenameFromContentDisposition extracts the download filename from a
// Content-Disposition header value.
//
// Grammar (parameters are ';'-separated, names are case-insensitive):
//
//	filename*=charset'lang'percent-encoded   RFC 5987, preferred when present
//	filename="quoted \"value\""              backslash escapes honoured
//	filename=token                           up to the next ';'
//
// Values containing '%' are percent-decoded; an undecodable value is
// returned as is. ok is false when the header is empty or names no file.
func FilenameFromContentDisposition(header string) (name string, ok bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}

	var plain, extended string
	for _, param := range splitParams(header) {
		key, value, found := strings.Cut(param, "=")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "filename*":
			extended = decodeExtValue(value)
		case "filename":
			plain = percentDecode(unquote(value))
		}
	}

	if extended != "" {
		return extended, true
	}
	if plain != "" {
		return plain, true
	}
	return "", false
}

// splitParams splits on ';' outside double quotes.
func splitParams(s string) []string {
	var (
		parts   []string
		b       strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ';' && !quoted:
			parts = append(parts, b.String())
			b.Reset()
			continue
		}
		b.WriteRune(r)
	}
	return append(parts, b.String())
}

func unquote(v string) string {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v
	}
	v = v[1 : len(v)-1]

	var b strings.Builder
	escaped := false
	for _, r := range v {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func percentDecode(v string) string {
	if !strings.Contains(v, "%") {
		return v
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return decoded
}

// decodeExtValue handles charset'lang'value. Only UTF-8 and US-ASCII are
// understood; anything else yields "" so the plain parameter wins.
func decodeExtValue(v string) string {
	v = unquote(v)
	parts := strings.SplitN(v, "'", 3)
	if len(parts) != 3 {
		return ""
	}
	switch strings.ToLower(parts[0]) {
	case "utf-8", "us-ascii", "":
	default:
		return ""
	}
	decoded, err := url.PathUnescape(parts[2])
	if err != nil {
		return ""
	}
	return decoded
}
