package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

type unmarshalFunc func([]byte, any) error

// WithJSONDir loads translations from {lang}/{namespace}.json files in fsys.
//
//	en/emails.json
//	es/emails.json
func WithJSONDir(fsys fs.FS) Option {
	return func(i *I18n) error {
		return i.loadDir(fsys, []string{".json"}, json.Unmarshal)
	}
}

// WithYAMLDir loads translations from {lang}/{namespace}.yaml (or .yml) files in fsys.
//
//	en/emails.yaml
//	es/emails.yml
func WithYAMLDir(fsys fs.FS) Option {
	return func(i *I18n) error {
		return i.loadDir(fsys, []string{".yaml", ".yml"}, yaml.Unmarshal)
	}
}

func (i *I18n) loadDir(fsys fs.FS, exts []string, unmarshal unmarshalFunc) error {
	return fs.WalkDir(fsys, ".", func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasExt(filePath, exts) {
			return nil
		}

		lang, namespace, err := splitTranslationPath(filePath)
		if err != nil {
			return err
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("reading %q: %w", filePath, err)
		}

		var translations map[string]any
		if err := unmarshal(data, &translations); err != nil {
			return fmt.Errorf("%w: parsing %q: %s", ErrInvalidFile, filePath, err)
		}

		i.store(lang, namespace, translations)
		return nil
	})
}

func hasExt(filePath string, exts []string) bool {
	ext := strings.ToLower(path.Ext(filePath))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// splitTranslationPath extracts the language from the parent directory and
// the namespace from the file name.
func splitTranslationPath(filePath string) (lang, namespace string, err error) {
	dir := path.Dir(filePath)
	if dir == "." || dir == "" {
		return "", "", fmt.Errorf("%w: file %q must be inside a language directory", ErrInvalidFile, filePath)
	}
	lang = path.Base(dir)
	namespace = strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	return lang, namespace, nil
}
