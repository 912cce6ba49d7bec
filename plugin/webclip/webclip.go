// Package webclip fetches web pages and extracts their readable text.
// The extracted text feeds the AI page summary pipeline, so the output is
// plain text with scripts, navigation, and boilerplate stripped.
package webclip

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// maxPageBytes caps how much of a page body is read.
const maxPageBytes = 5 << 20

// Config holds the web clipping configuration.
type Config struct {
	// Timeout is the total time allowed for fetching a page.
	Timeout time.Duration
	// RetryMax is the number of retries for transient fetch failures.
	RetryMax int
	// UserAgent is sent with every page request.
	UserAgent string
	// MaxTextLen caps the extracted text length in runes. Zero means no cap.
	MaxTextLen int
}

// DefaultConfig returns the default web clipping configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:    15 * time.Second,
		RetryMax:   2,
		UserAgent:  "Mozilla/5.0 (compatible; SatchelBot/0.4; +https://satchel.dev/bot)",
		MaxTextLen: 20000,
	}
}

// Page is the readable content extracted from a web page.
type Page struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Byline   string `json:"byline,omitempty"`
	SiteName string `json:"site_name,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
	Text     string `json:"text"`
}

// Extractor fetches pages and extracts their readable text.
type Extractor struct {
	config     *Config
	httpClient *http.Client
}

// NewExtractor creates a new page text extractor.
func NewExtractor(config *Config) *Extractor {
	if config == nil {
		config = DefaultConfig()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = config.RetryMax
	rc.HTTPClient.Timeout = config.Timeout
	rc.Logger = nil

	return &Extractor{
		config:     config,
		httpClient: rc.StandardClient(),
	}
}

// ExtractText downloads the page at rawURL and returns its readable text.
func (e *Extractor) ExtractText(ctx context.Context, rawURL string) (string, error) {
	page, err := e.Extract(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return page.Text, nil
}

// Extract downloads the page at rawURL and extracts its readable content.
// Readability runs first; pages it cannot parse fall back to a container
// selector scan.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Page, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid page URL")
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return nil, errors.Errorf("unsupported URL scheme %q", pageURL.Scheme)
	}

	body, err := e.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return &Page{
			URL:      rawURL,
			Title:    article.Title,
			Byline:   article.Byline,
			SiteName: article.SiteName,
			Excerpt:  article.Excerpt,
			Text:     e.clampText(article.TextContent),
		}, nil
	}
	if err != nil {
		slog.Warn("readability extraction failed, trying fallback", "url", rawURL, "error", err)
	}

	text, title, err := extractWithSelectors(body)
	if err != nil {
		return nil, err
	}
	return &Page{URL: rawURL, Title: title, Text: e.clampText(text)}, nil
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", e.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("page fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read page body")
	}
	return body, nil
}

// Containers checked when readability finds nothing usable.
var fallbackSelectors = []string{
	"article",
	"main",
	".article-body",
	".post-content",
	".entry-content",
	".content",
}

func extractWithSelectors(body []byte) (text, title string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", errors.Wrap(err, "failed to parse page HTML")
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range fallbackSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			s.Find("script, style, nav, iframe, noscript").Remove()
			if t := collapseWhitespace(s.Text()); t != "" {
				return t, title, nil
			}
		}
	}

	// Last resort: the whole body text.
	bodySel := doc.Find("body").First()
	bodySel.Find("script, style, nav, iframe, noscript").Remove()
	if t := collapseWhitespace(bodySel.Text()); t != "" {
		return t, title, nil
	}
	return "", "", errors.New("no readable content found")
}

// collapseWhitespace squashes runs of spaces within lines and drops blank
// lines, keeping paragraph boundaries as single newlines.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func (e *Extractor) clampText(s string) string {
	s = collapseWhitespace(s)
	if e.config.MaxTextLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= e.config.MaxTextLen {
		return s
	}
	return string(runes[:e.config.MaxTextLen])
}
