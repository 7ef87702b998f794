package templates

import "errors"

var (
	// ErrTemplateNotFound indicates no template exists for the requested id.
	ErrTemplateNotFound = errors.New("templates: template not found")

	// ErrLayoutNotFound indicates the layout referenced by a template is missing.
	ErrLayoutNotFound = errors.New("templates: layout not found")

	// ErrTemplateParams indicates the parameter payload does not fit the template.
	ErrTemplateParams = errors.New("templates: invalid template parameters")

	// ErrRenderFailed indicates template execution or markdown conversion failed.
	ErrRenderFailed = errors.New("templates: render failed")

	// ErrInvalidFrontmatter indicates malformed YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("templates: invalid frontmatter")
)
