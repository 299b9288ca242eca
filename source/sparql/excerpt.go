package sparql

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/net/html"
)

const (
	// excerptReadLimit is how much of an error body is read for an excerpt.
	excerptReadLimit = 64 * 1024
	// maxExcerptRunes caps the excerpt carried in a StatusError.
	maxExcerptRunes = 200
)

var (
	scriptRe     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Excerpt renders an error body as one short line of plain text.
// HTML pages, the usual shape of endpoint and proxy errors, are reduced to
// their title and visible text.
func Excerpt(body []byte, contentType string) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}

	var text string
	if looksLikeHTML(body, contentType) {
		text = htmlExcerpt(body)
	} else {
		text = string(body)
	}

	return truncateRunes(whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " "), maxExcerptRunes)
}

func looksLikeHTML(body []byte, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	head := strings.ToLower(string(bytes.TrimSpace(body[:min(len(body), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func htmlExcerpt(body []byte) string {
	title := extractHTMLTitle(body)

	cleaned := scriptRe.ReplaceAllString(string(body), "")
	cleaned = styleRe.ReplaceAllString(cleaned, "")

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(cleaned)
	if err != nil {
		return title
	}
	markdown = headingRe.ReplaceAllString(markdown, "")
	markdown = strings.TrimSpace(markdown)

	// Title pages often repeat the title as the first heading.
	switch {
	case title == "":
		return markdown
	case markdown == "" || markdown == title:
		return title
	case strings.HasPrefix(markdown, title):
		return markdown
	default:
		return title + ": " + markdown
	}
}

// extractHTMLTitle extracts the title from HTML.
func extractHTMLTitle(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	var title string
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			extract(c)
		}
	}
	extract(doc)

	return title
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}
