package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	t.Parallel()

	allowed := DeriveAllowedDomains([]string{"https://site.com"})
	html := `<html><body>
		<a href="/docs/x">relative</a>
		<a href="https://site.com/docs/y#section">fragment stripped</a>
		<a href="https://site.com/docs/z/">trailing slash stripped</a>
		<a href="/docs/x">duplicate</a>
		<a href="https://elsewhere.org/off-domain">disallowed</a>
		<a href="mailto:team@site.com">wrong scheme</a>
		<a href="ftp://site.com/file">wrong scheme too</a>
	</body></html>`

	links := ExtractLinks(html, "https://site.com/a/b", allowed, 0)
	require.Equal(t, []string{
		"https://site.com/docs/x",
		"https://site.com/docs/y",
		"https://site.com/docs/z",
	}, links)
}

func TestExtractLinks_RelativeResolution(t *testing.T) {
	t.Parallel()

	allowed := DeriveAllowedDomains([]string{"https://site.com"})
	links := ExtractLinks(`<a href="/docs/x">x</a>`, "https://site.com/a/b", allowed, 0)
	require.Equal(t, []string{"https://site.com/docs/x"}, links)
}

func TestExtractLinks_CapsResult(t *testing.T) {
	t.Parallel()

	allowed := DeriveAllowedDomains([]string{"https://site.com"})
	html := `<a href="/1">1</a><a href="/2">2</a><a href="/3">3</a><a href="/4">4</a>`
	links := ExtractLinks(html, "https://site.com", allowed, 2)
	require.Equal(t, []string{"https://site.com/1", "https://site.com/2"}, links)
}

func TestExtractLinks_EmptyAndGarbage(t *testing.T) {
	t.Parallel()

	var allowed AllowedDomains
	require.Empty(t, ExtractLinks("", "https://site.com", allowed, 0))
	require.Empty(t, ExtractLinks("<p>no links</p>", "https://site.com", allowed, 0))
	// A busted href is skipped, not fatal.
	links := ExtractLinks(`<a href="https://%zz">bad</a><a href="/ok">ok</a>`, "https://site.com", allowed, 0)
	require.Equal(t, []string{"https://site.com/ok"}, links)
}
