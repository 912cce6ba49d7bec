package webclip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Photosynthesis Study Notes</title>
</head>
<body>
<nav><a href="/">Home</a><a href="/courses">Courses</a></nav>
<article>
<h1>Photosynthesis Study Notes</h1>
<p>Photosynthesis is the process by which green plants and some other organisms
use sunlight to synthesize foods from carbon dioxide and water. The process
takes place in chloroplasts and generates oxygen as a byproduct, which is
released into the atmosphere through small pores called stomata.</p>
<p>The light-dependent reactions capture energy from sunlight and store it in
the chemical bonds of ATP and NADPH. These reactions occur in the thylakoid
membranes, where chlorophyll and other pigments absorb photons and drive an
electron transport chain across the membrane.</p>
<p>The Calvin cycle then uses that stored energy to fix carbon dioxide into
three-carbon sugars. Over successive turns of the cycle the plant assembles
glucose, which fuels cellular respiration and provides the carbon skeletons
for building cellulose, starch, and proteins.</p>
<p>Mitochondria later oxidize those sugars to release usable energy, closing
the loop between photosynthesis and respiration that sustains nearly every
food web on the planet and anchors the global carbon cycle studied in
introductory biology courses.</p>
</article>
<script>console.log("tracking pixel");</script>
</body>
</html>`

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 15*time.Second, config.Timeout)
	assert.Equal(t, 2, config.RetryMax)
	assert.Equal(t, 20000, config.MaxTextLen)
	assert.Contains(t, config.UserAgent, "SatchelBot")
}

func TestNewExtractor(t *testing.T) {
	t.Run("with nil config", func(t *testing.T) {
		e := NewExtractor(nil)
		require.NotNil(t, e)
		assert.Equal(t, 15*time.Second, e.config.Timeout)
	})

	t.Run("with custom config", func(t *testing.T) {
		e := NewExtractor(&Config{Timeout: 3 * time.Second, MaxTextLen: 100})
		require.NotNil(t, e)
		assert.Equal(t, 3*time.Second, e.config.Timeout)
		assert.Equal(t, 100, e.config.MaxTextLen)
	})
}

func TestExtractor_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	e := NewExtractor(nil)
	page, err := e.Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, page.URL)
	assert.Equal(t, "Photosynthesis Study Notes", page.Title)
	assert.Contains(t, page.Text, "thylakoid")
	assert.Contains(t, page.Text, "Calvin cycle")
	assert.NotContains(t, page.Text, "console.log")
}

func TestExtractor_ExtractText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	e := NewExtractor(nil)
	text, err := e.ExtractText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "chloroplasts")
}

func TestExtractor_Errors(t *testing.T) {
	t.Run("status error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		e := NewExtractor(nil)
		_, err := e.Extract(context.Background(), srv.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		e := NewExtractor(nil)
		_, err := e.Extract(context.Background(), "ftp://example.com/notes.txt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported URL scheme")
	})

	t.Run("canceled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(articleHTML))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e := NewExtractor(nil)
		_, err := e.Extract(ctx, srv.URL)
		require.Error(t, err)
	})
}

func TestExtractWithSelectors(t *testing.T) {
	t.Run("article container", func(t *testing.T) {
		html := `<html><head><title>Notes</title></head><body>
			<article><p>Main content here.</p><script>junk()</script></article>
			</body></html>`
		text, title, err := extractWithSelectors([]byte(html))
		require.NoError(t, err)
		assert.Equal(t, "Notes", title)
		assert.Equal(t, "Main content here.", text)
	})

	t.Run("body fallback", func(t *testing.T) {
		html := `<html><body><div>Loose text outside containers.</div></body></html>`
		text, _, err := extractWithSelectors([]byte(html))
		require.NoError(t, err)
		assert.Equal(t, "Loose text outside containers.", text)
	})

	t.Run("no content", func(t *testing.T) {
		html := `<html><body><script>only()</script></body></html>`
		_, _, err := extractWithSelectors([]byte(html))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no readable content")
	})
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "hello world", "hello world"},
		{"runs of spaces", "hello    world   now", "hello world now"},
		{"blank lines dropped", "first\n\n\n  second  \n", "first\nsecond"},
		{"tabs squashed", "a\tb\t\tc", "a b c"},
		{"empty", "   \n \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, collapseWhitespace(tt.input))
		})
	}
}

func TestClampText(t *testing.T) {
	e := NewExtractor(&Config{MaxTextLen: 5})

	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "abc", e.clampText("abc"))
	})

	t.Run("long text truncated by runes", func(t *testing.T) {
		assert.Equal(t, "héllo", e.clampText("héllo world"))
	})

	t.Run("no cap when zero", func(t *testing.T) {
		open := NewExtractor(&Config{MaxTextLen: 0})
		long := "some considerably longer text"
		assert.Equal(t, long, open.clampText(long))
	})
}
