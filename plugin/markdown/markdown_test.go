package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	t.Run("headings and emphasis", func(t *testing.T) {
		html, err := r.Render("# Study Plan\n\nRead **chapter 4** first.")
		require.NoError(t, err)
		assert.Contains(t, html, `<h1 id="study-plan">Study Plan</h1>`)
		assert.Contains(t, html, "<strong>chapter 4</strong>")
	})

	t.Run("gfm table", func(t *testing.T) {
		src := "| Step | Minutes |\n|---|---|\n| Review notes | 20 |\n"
		html, err := r.Render(src)
		require.NoError(t, err)
		assert.Contains(t, html, "<table>")
		assert.Contains(t, html, "<td>Review notes</td>")
	})

	t.Run("task list", func(t *testing.T) {
		html, err := r.Render("- [ ] Skim the reading\n- [x] Take notes")
		require.NoError(t, err)
		assert.Contains(t, html, `type="checkbox"`)
	})

	t.Run("raw html dropped", func(t *testing.T) {
		html, err := r.Render("before\n\n<script>alert(1)</script>\n\nafter")
		require.NoError(t, err)
		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "after")
	})

	t.Run("empty source", func(t *testing.T) {
		html, err := r.Render("")
		require.NoError(t, err)
		assert.Equal(t, "", html)
	})
}
