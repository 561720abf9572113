package news

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"stock-advisor/internal/types"
)

// markupRe spots real tags or entities, so plain text like "a<b" is left alone.
var markupRe = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(?:\s[^<>]*)?/?>|&(?:[a-zA-Z]+|#[0-9]+|#x[0-9a-fA-F]+);`)

// removedTitle is what NewsAPI puts in place of articles pulled by the publisher.
const removedTitle = "[Removed]"

// Headlines cuts articles down to at most types.MaxHeadlines clean, truncated titles,
// keeping provider order (newest first).
func Headlines(articles []types.NewsArticle) types.HeadlineSet {
	out := types.HeadlineSet{}
	seen := make(map[string]bool)
	for _, a := range articles {
		if len(out) == types.MaxHeadlines {
			break
		}
		title := cleanTitle(a.Title)
		if title == "" || title == removedTitle || seen[title] {
			continue
		}
		seen[title] = true
		out = append(out, truncate(title, types.MaxHeadlineLength))
	}
	return out
}

// cleanTitle strips markup and collapses whitespace. Feeds like Google News embed <b> and entities.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if markupRe.MatchString(s) {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max]))
}
