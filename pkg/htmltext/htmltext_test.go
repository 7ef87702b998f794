package htmltext_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/postbox/pkg/htmltext"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	conv := htmltext.New(htmltext.WithLogoAlt("Postbox"))

	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "empty document",
			html:     "",
			expected: "",
		},
		{
			name:     "link becomes footnote",
			html:     `<p>Hi <a href="https://example.com">there</a></p>`,
			expected: "Hi [there][1]\n\n[1]: https://example.com\n",
		},
		{
			name:     "footnotes are numbered in document order",
			html:     `<p><a href="https://a.example">A</a> and <a href="https://b.example">B</a></p>`,
			expected: "[A][1] and [B][2]\n\n[1]: https://a.example\n[2]: https://b.example\n",
		},
		{
			name:     "inline emphasis",
			html:     `<p>This is <em>very</em> <strong>important</strong> and <code>x := 1</code></p>`,
			expected: "This is *very* **important** and `x := 1`\n",
		},
		{
			name:     "trailing space inside emphasis",
			html:     `<p><em>a </em>b</p>`,
			expected: "*a* b\n",
		},
		{
			name:     "headings",
			html:     `<h1>Title</h1><h3>Sub</h3><p>Body</p>`,
			expected: "# Title\n\n### Sub\n\nBody\n",
		},
		{
			name:     "lists",
			html:     `<ul><li>One</li><li>Two</li></ul><ol><li>First</li><li>Second</li></ol>`,
			expected: "* One\n* Two\n\n1. First\n2. Second\n",
		},
		{
			name:     "nested list",
			html:     `<ul><li>a<ul><li>b</li></ul></li></ul>`,
			expected: "* a\n  * b\n",
		},
		{
			name:     "blockquote",
			html:     `<p>Before</p><blockquote><p>Quoted line</p></blockquote><p>After</p>`,
			expected: "Before\n\n> Quoted line\n\nAfter\n",
		},
		{
			name:     "logo image is dropped with its link",
			html:     `<div><a href="https://example.com"><img src="logo.png" alt="Postbox"></a></div><p>Hello <img src="x.png" alt="chart"></p>`,
			expected: "Hello [chart]\n",
		},
		{
			name:     "head content is dropped",
			html:     `<html><head><title>Subject</title><style>p{color:red}</style></head><body><p>Body</p></body></html>`,
			expected: "Body\n",
		},
		{
			name:     "superscript",
			html:     `<p>x<sup>2</sup></p>`,
			expected: "x^{2}\n",
		},
		{
			name:     "line break",
			html:     `<p>line one<br>line two</p>`,
			expected: "line one\nline two\n",
		},
		{
			name:     "whitespace is collapsed",
			html:     "<p>  lots   of\n\n  space </p>",
			expected: "lots of space\n",
		},
		{
			name:     "anchor without href keeps text",
			html:     `<p><a name="top">Top</a></p>`,
			expected: "Top\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := conv.Convert(tt.html)
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestConvertWithoutLogoMarker(t *testing.T) {
	t.Parallel()

	got, err := htmltext.New().Convert(`<p><img alt="Postbox"> hi</p>`)
	require.NoError(t, err)
	require.Equal(t, "[Postbox] hi\n", got)
}

func TestConvertWrapping(t *testing.T) {
	t.Parallel()

	t.Run("paragraph", func(t *testing.T) {
		t.Parallel()
		got, err := htmltext.New(htmltext.WithWidth(20)).Convert(`<p>the quick brown fox jumps over the lazy dog</p>`)
		require.NoError(t, err)
		require.Equal(t, "the quick brown fox\njumps over the lazy\ndog\n", got)
	})

	t.Run("list item continuation is aligned", func(t *testing.T) {
		t.Parallel()
		got, err := htmltext.New(htmltext.WithWidth(14)).Convert(`<ul><li>alpha beta gamma delta</li></ul>`)
		require.NoError(t, err)
		require.Equal(t, "* alpha beta\n  gamma delta\n", got)
	})

	t.Run("footnotes are not wrapped", func(t *testing.T) {
		t.Parallel()
		got, err := htmltext.New(htmltext.WithWidth(10)).Convert(`<p><a href="https://example.com/a/very/long/path">x</a></p>`)
		require.NoError(t, err)
		require.Equal(t, "[x][1]\n\n[1]: https://example.com/a/very/long/path\n", got)
	})
}

func TestConvertConcurrent(t *testing.T) {
	t.Parallel()

	conv := htmltext.New()
	const src = `<h2>Edit</h2><p>See <a href="https://example.com/edit/1">edit #1</a>.</p>`

	want, err := conv.Convert(src)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := conv.Convert(src)
			if err == nil && got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		}()
	}
	wg.Wait()
}
