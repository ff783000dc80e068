package mailer

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

type frontmatter struct {
	Subject string `yaml:"subject"`
}

// splitFrontmatter separates the YAML header from the Markdown body.
// Content without a leading delimiter is all body.
func splitFrontmatter(content []byte) (frontmatter, []byte, error) {
	var fm frontmatter
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(content, delimiter) {
		return fm, content, nil
	}

	rest := bytes.TrimLeft(content[len(delimiter):], "\n")
	head, body, ok := bytes.Cut(rest, append([]byte("\n"), delimiter...))
	if !ok {
		if !bytes.HasPrefix(rest, delimiter) {
			return fm, nil, wrap(ErrInvalidFrontmatter, "header", errClosingDelimiter)
		}
		head, body = nil, rest[len(delimiter):]
	}

	if err := yaml.Unmarshal(head, &fm); err != nil {
		return fm, nil, wrap(ErrInvalidFrontmatter, "header", err)
	}
	return fm, bytes.TrimPrefix(body, []byte("\n")), nil
}

var errClosingDelimiter = errors.New("closing delimiter not found")
