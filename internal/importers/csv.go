package importers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var (
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrUnknownDelimiter    = errors.New("unknown delimiter")
	ErrEmptyFile           = errors.New("import file is empty")
)

const DefaultEncoding = "UTF-8"

// Delimiter names the field separator of an import file.
type Delimiter string

const (
	DelimiterComma     Delimiter = "comma"
	DelimiterSemicolon Delimiter = "semicolon"
	DelimiterTab       Delimiter = "tab"
	DelimiterColon     Delimiter = "colon"
	// DelimiterConfig defers to the configured default delimiter.
	DelimiterConfig Delimiter = "cfg"
)

var delimiterRunes = map[Delimiter]rune{
	DelimiterComma:     ',',
	DelimiterSemicolon: ';',
	DelimiterTab:       '\t',
	DelimiterColon:     ':',
}

// Delimiters lists the accepted delimiter names.
var Delimiters = []Delimiter{DelimiterComma, DelimiterSemicolon, DelimiterTab, DelimiterColon, DelimiterConfig}

// Rune returns the separator character. DelimiterConfig and the empty value
// resolve through fallback, which itself defaults to a comma.
func (d Delimiter) Rune(fallback Delimiter) (rune, error) {
	name := Delimiter(strings.ToLower(strings.TrimSpace(string(d))))
	if name == "" || name == DelimiterConfig {
		name = Delimiter(strings.ToLower(strings.TrimSpace(string(fallback))))
		if name == "" || name == DelimiterConfig {
			name = DelimiterComma
		}
	}
	r, ok := delimiterRunes[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDelimiter, d)
	}
	return r, nil
}

// Decode converts content in the named encoding to UTF-8 and strips a
// leading byte order mark. UTF-8 input must be valid.
func Decode(content []byte, encoding string) ([]byte, error) {
	if strings.TrimSpace(encoding) == "" {
		encoding = DefaultEncoding
	}

	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
	}
	name, _ := htmlindex.Name(enc)

	if name == "utf-8" {
		if !utf8.Valid(content) {
			return nil, errors.New("content is not valid UTF-8")
		}
	} else {
		decoded, _, err := transform.Bytes(enc.NewDecoder(), content)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", encoding, err)
		}
		content = decoded
	}

	return bytes.TrimPrefix(content, []byte("\xef\xbb\xbf")), nil
}

// ReadCSV splits decoded content into a header row and data rows. Rows in
// which every field is blank are skipped.
func ReadCSV(content []byte, comma rune) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row: %w", err)
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}

	return header, rows, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
