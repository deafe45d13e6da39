// Package page builds the textual representations of a fetched page that
// downstream extraction chooses between.
package page

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Snapshot holds one fetched page in decreasing order of cleanliness:
// reader-mode text, markup-stripped text, and the raw markup itself.
// Representations that could not be produced are left empty; consumers
// fall back through them in order.
type Snapshot struct {
	URL        string
	StatusCode int
	ReaderText string
	CleanText  string
	RawHTML    string
	Elapsed    time.Duration
}

// Build derives all representations from a raw response body. Parse failures
// never propagate; a representation that cannot be built is simply empty.
func Build(pageURL string, statusCode int, body []byte) Snapshot {
	snap := Snapshot{
		URL:        pageURL,
		StatusCode: statusCode,
		RawHTML:    string(body),
	}
	snap.ReaderText = readerText(pageURL, body)
	snap.CleanText = cleanText(body)
	return snap
}

// readerText runs readability extraction, the cleanest representation.
func readerText(pageURL string, body []byte) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = nil
	}
	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err != nil {
		return ""
	}
	return collapseWhitespace(article.TextContent)
}

// cleanText strips script/style subtrees and flattens the document text.
func cleanText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, template").Remove()
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
