package engine

import (
	"regexp"
	"strings"

	"github.com/ckolb-dev/webscout/internal/page"
)

const (
	// contentMinChars is the floor below which a representation is
	// considered too thin to stand alone.
	contentMinChars = 50
	// rawMarkupMinChars gates the expensive tag-stripping fallback.
	rawMarkupMinChars = 100
	// noContentFallback is returned when every representation fails.
	noContentFallback = "No content extracted"
)

var (
	markupTag     = regexp.MustCompile(`<[^>]+>`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// ExtractContent picks the best textual representation of a fetched page.
// Representations are tried cheapest-clean first; the raw markup is only
// tag-stripped as a last resort. Always returns a non-empty string.
func ExtractContent(snap page.Snapshot) string {
	if text := strings.TrimSpace(snap.ReaderText); len(text) > contentMinChars {
		return snap.ReaderText
	}
	if text := strings.TrimSpace(snap.CleanText); len(text) > contentMinChars {
		return snap.CleanText
	}
	if raw := strings.TrimSpace(snap.RawHTML); len(raw) > rawMarkupMinChars {
		text := markupTag.ReplaceAllString(raw, "")
		text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
		if len(text) > contentMinChars {
			return text
		}
	}
	return noContentFallback
}
