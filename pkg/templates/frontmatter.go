package templates

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML header of a template file.
//
//	---
//	Subject: '{{ t "reset_password.subject" }}'
//	Params:
//	  to_name: string
//	  reset_url: string
//	---
type Frontmatter struct {
	Subject string `yaml:"Subject"`
	Layout  string `yaml:"Layout"`
	Params  Schema `yaml:"Params"`
}

// ParseSource splits a template file into frontmatter and markdown body.
// Files without a leading "---" line have an empty frontmatter.
func ParseSource(content []byte) (Frontmatter, string, error) {
	var meta Frontmatter

	content = bytes.TrimPrefix(content, []byte("\ufeff"))
	first, rest, ok := bytes.Cut(content, []byte("\n"))
	if !ok || !isDelimiter(first) {
		return meta, string(content), nil
	}

	front, body, err := cutFrontmatter(rest)
	if err != nil {
		return meta, "", err
	}

	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &meta); err != nil {
			return meta, "", fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}
	if err := meta.Params.validate(); err != nil {
		return meta, "", err
	}

	return meta, string(body), nil
}

// cutFrontmatter finds the closing delimiter line in rest.
func cutFrontmatter(rest []byte) (front, body []byte, err error) {
	offset := 0
	for {
		line, next, found := bytes.Cut(rest[offset:], []byte("\n"))
		if isDelimiter(line) {
			if !found {
				return rest[:offset], nil, nil
			}
			return rest[:offset], next, nil
		}
		if !found {
			return nil, nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
		}
		offset += len(line) + 1
	}
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == "---"
}
