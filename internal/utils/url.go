package utils

import (
	"net/url"
	"strings"
)

// SanitizeURL re-encodes every path segment of an absolute URL so that
// spaces and other reserved characters survive a download request. Empty
// segments are dropped, so repeated and trailing slashes collapse. Query and
// fragment are kept verbatim. Input without both a scheme and a host is
// returned unchanged. Applying SanitizeURL twice yields the same result.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	var sb strings.Builder
	sb.WriteString(u.Scheme)
	sb.WriteString("://")

	if u.User != nil {
		if password, ok := u.User.Password(); ok && password != "" && u.User.Username() != "" {
			sb.WriteString(u.User.String())
			sb.WriteString("@")
		}
	}
	sb.WriteString(u.Host)

	for _, segment := range strings.Split(u.EscapedPath(), "/") {
		if segment == "" {
			continue
		}
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			decoded = segment
		}
		sb.WriteString("/")
		sb.WriteString(rawURLEncode(decoded))
	}

	if u.RawQuery != "" {
		sb.WriteString("?")
		sb.WriteString(u.RawQuery)
	}

	if i := strings.Index(raw, "#"); i >= 0 && i < len(raw)-1 {
		sb.WriteString(raw[i:])
	}

	return sb.String()
}

// rawURLEncode percent-encodes everything except the RFC 3986 unreserved set.
func rawURLEncode(s string) string {
	const hex = "0123456789ABCDEF"

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	}
	return false
}
