// backend/scraper/text.go
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText collapses runs of whitespace (including NBSP and newlines) into a single space.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// cellText returns the visible text of a table cell. A <br> counts as a space,
// so "Ministerio de<br>Salud" reads as two words.
func cellText(cell *goquery.Selection) string {
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, node *goquery.Selection) {
			switch goquery.NodeName(node) {
			case "#text":
				b.WriteString(node.Text())
			case "br":
				b.WriteString(" ")
			default:
				walk(node)
			}
		})
	}
	walk(cell)
	return CleanText(b.String())
}
