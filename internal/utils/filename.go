package utils

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxFilenameBytes = 200

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	// Whitespace characters to normalize
	whitespaceChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFilename strips characters that are invalid in filenames and
// collapses whitespace. An empty result becomes fallback.
func SanitizeFilename(filename, fallback string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	// Limit length (most filesystems support 255 bytes, but leave room for a suffix)
	if len(filename) > maxFilenameBytes {
		n := maxFilenameBytes
		for n > 0 && !utf8.RuneStart(filename[n]) {
			n--
		}
		filename = strings.TrimSpace(filename[:n])
	}

	if filename == "" {
		filename = fallback
	}

	return filename
}

// FileExtension returns the lowercased extension of the last path element,
// including the leading dot.
func FileExtension(p string) string {
	return strings.ToLower(path.Ext(path.Base(p)))
}
