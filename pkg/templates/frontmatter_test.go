package templates_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postbox/pkg/templates"
)

func TestParseSource(t *testing.T) {
	t.Parallel()

	t.Run("without frontmatter", func(t *testing.T) {
		t.Parallel()
		meta, body, err := templates.ParseSource([]byte("Hello {{ .name }}\n"))
		require.NoError(t, err)
		require.Empty(t, meta.Subject)
		require.Empty(t, meta.Params)
		require.Equal(t, "Hello {{ .name }}\n", body)
	})

	t.Run("with frontmatter", func(t *testing.T) {
		t.Parallel()
		src := "---\nSubject: Hi {{ .name }}\nLayout: plain.html\nParams:\n  name: string\n  edit_id: int\n---\nBody\n"
		meta, body, err := templates.ParseSource([]byte(src))
		require.NoError(t, err)
		require.Equal(t, "Hi {{ .name }}", meta.Subject)
		require.Equal(t, "plain.html", meta.Layout)
		require.Equal(t, templates.Schema{"name": templates.ParamString, "edit_id": templates.ParamInt}, meta.Params)
		require.Equal(t, "Body\n", body)
	})

	t.Run("windows line endings", func(t *testing.T) {
		t.Parallel()
		meta, body, err := templates.ParseSource([]byte("---\r\nSubject: Hi\r\n---\r\nBody"))
		require.NoError(t, err)
		require.Equal(t, "Hi", meta.Subject)
		require.Equal(t, "Body", body)
	})

	t.Run("empty frontmatter", func(t *testing.T) {
		t.Parallel()
		_, body, err := templates.ParseSource([]byte("---\n---\nBody"))
		require.NoError(t, err)
		require.Equal(t, "Body", body)
	})

	t.Run("closing delimiter at end of file", func(t *testing.T) {
		t.Parallel()
		meta, body, err := templates.ParseSource([]byte("---\nSubject: Hi\n---"))
		require.NoError(t, err)
		require.Equal(t, "Hi", meta.Subject)
		require.Empty(t, body)
	})

	t.Run("unclosed frontmatter", func(t *testing.T) {
		t.Parallel()
		_, _, err := templates.ParseSource([]byte("---\nSubject: Hi\nBody"))
		require.ErrorIs(t, err, templates.ErrInvalidFrontmatter)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		_, _, err := templates.ParseSource([]byte("---\nSubject: [unclosed\n---\nBody"))
		require.ErrorIs(t, err, templates.ErrInvalidFrontmatter)
	})

	t.Run("unknown parameter type", func(t *testing.T) {
		t.Parallel()
		_, _, err := templates.ParseSource([]byte("---\nParams:\n  when: datetime\n---\nBody"))
		require.ErrorIs(t, err, templates.ErrInvalidFrontmatter)
	})
}
