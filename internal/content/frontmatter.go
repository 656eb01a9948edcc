package content

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v2"
)

const (
	yamlDelimiter = "---"
	tomlDelimiter = "+++"
)

var formats = map[string]*frontmatter.Format{
	yamlDelimiter: frontmatter.NewFormat(yamlDelimiter, yamlDelimiter, yaml.Unmarshal),
	tomlDelimiter: frontmatter.NewFormat(tomlDelimiter, tomlDelimiter, toml.Unmarshal),
}

// Split separates a document into its front matter and body.
//
// A document whose first line is not a delimiter has no front matter: the
// record carries empty Data and the whole source as Content. An opening
// delimiter with no closing line, or a block that fails to decode, returns a
// *ParseError.
func Split(source []byte) (Record, error) {
	first, rest := cutLine(source)
	delim := strings.TrimSpace(string(first))

	format, ok := formats[delim]
	if !ok {
		return Record{Content: string(source), Data: map[string]any{}}, nil
	}

	matter, closing, body, ok := closingBlock(rest, delim)
	if !ok {
		return Record{}, &ParseError{Err: fmt.Errorf("missing closing %q delimiter", delim)}
	}

	data := map[string]any{}
	if _, err := frontmatter.Parse(bytes.NewReader(source), &data, format); err != nil {
		return Record{}, &ParseError{Err: err}
	}

	return Record{
		Content:     string(body),
		Data:        data,
		Matter:      string(matter),
		Delimiter:   delim,
		OpeningLine: string(first),
		ClosingLine: string(closing),
	}, nil
}

// Join re-serializes a record. Delimiter lines are written exactly as they
// were read, so Join(Split(src)) reproduces src for well-formed front matter
// whatever its line endings.
func Join(rec Record) []byte {
	if rec.Delimiter == "" {
		return []byte(rec.Content)
	}

	opening, closing := rec.OpeningLine, rec.ClosingLine
	if opening == "" {
		opening = rec.Delimiter + "\n"
	}
	if closing == "" {
		closing = rec.Delimiter + "\n"
	}

	var buf bytes.Buffer
	buf.WriteString(opening)
	buf.WriteString(rec.Matter)
	buf.WriteString(closing)
	buf.WriteString(rec.Content)
	return buf.Bytes()
}

// Marshal builds a new document with YAML front matter. Empty data yields the
// body alone.
func Marshal(data map[string]any, body string) ([]byte, error) {
	if len(data) == 0 {
		return []byte(body), nil
	}

	matter, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}
	return Join(Record{Content: body, Matter: string(matter), Delimiter: yamlDelimiter}), nil
}

// cutLine returns the first line including its line ending, and everything
// after it.
func cutLine(b []byte) (line, rest []byte) {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i+1], b[i+1:]
	}
	return b, nil
}

// closingBlock scans for the line closing a block opened with delim. It
// returns the raw text in between, the closing line as written and the body
// that follows.
func closingBlock(b []byte, delim string) (matter, closing, body []byte, ok bool) {
	offset := 0
	for offset < len(b) {
		line, rest := cutLine(b[offset:])
		if strings.TrimSpace(string(line)) == delim {
			return b[:offset], line, rest, true
		}
		offset = len(b) - len(rest)
	}
	return nil, nil, nil, false
}
