package utils

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxTagLength is the longest tag name kept, counted in characters.
	MaxTagLength = 50

	tagSeparator = "|"
)

// NormalizeTag truncates a raw tag to MaxTagLength characters and trims
// surrounding whitespace. The result may be empty.
func NormalizeTag(raw string) string {
	if utf8.RuneCountInString(raw) > MaxTagLength {
		raw = string([]rune(raw)[:MaxTagLength])
	}
	return strings.TrimSpace(raw)
}

// SplitTags parses a pipe-separated tag list. Empty entries are dropped and
// duplicates are removed case-insensitively, keeping the first spelling.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, tagSeparator)
	tags := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		tag := NormalizeTag(part)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
