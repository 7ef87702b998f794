package emails

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.md layouts/*.html
var files embed.FS

//go:embed locales
var locales embed.FS

// Templates returns the template and layout tree for templates.New.
func Templates() fs.FS {
	return files
}

// Locales returns the {lang}/emails.yaml string tables for i18n.WithYAMLDir.
func Locales() fs.FS {
	sub, err := fs.Sub(locales, "locales")
	if err != nil {
		panic(err)
	}
	return sub
}
