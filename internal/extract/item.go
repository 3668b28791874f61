package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/quantmind-br/relnotes-go/internal/domain"
)

var (
	prLinkPattern    = regexp.MustCompile(`github\.com/[^/]+/[^/]+/pull/(\d+)`)
	issueLinkPattern = regexp.MustCompile(`github\.com/[^/]+/[^/]+/issues/(\d+)`)
	prRefPattern     = regexp.MustCompile(`#(\d+)`)
	parenRefPattern  = regexp.MustCompile(`\(\s*(?:issue:\s*)?#\d+\s*\)`)
	bareVersionRe    = regexp.MustCompile(`\d+\.\d+\.\d+`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
)

// fallbackRepo synthesizes a PR URL for items carrying a bare "#123"
// reference with no link. Known limitation: items from other repositories
// get a URL pointing at the wrong repository.
const fallbackRepo = "elastic/elasticsearch"

// parseItemLinks scans anchors for GitHub pull-request and issue links.
func parseItemLinks(sel *goquery.Selection, item *domain.ReleaseItem) {
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if m := prLinkPattern.FindStringSubmatch(href); m != nil {
			item.PRNumber, _ = strconv.Atoi(m[1])
			item.PRURL = href
			return
		}
		if m := issueLinkPattern.FindStringSubmatch(href); m != nil {
			item.IssueNumber, _ = strconv.Atoi(m[1])
			item.IssueURL = href
		}
	})
}

// fillPRFromText extracts a bare "#123" reference when no PR link was
// found, synthesizing a URL against the fallback repository.
func fillPRFromText(text string, item *domain.ReleaseItem) {
	if item.PRNumber > 0 {
		return
	}
	if m := prRefPattern.FindStringSubmatch(text); m != nil {
		item.PRNumber, _ = strconv.Atoi(m[1])
		item.PRURL = fmt.Sprintf("https://github.com/%s/pull/%d", fallbackRepo, item.PRNumber)
	}
}

// cleanDescription strips PR references, parenthesized or bare, and
// collapses whitespace.
func cleanDescription(text string) string {
	text = parenRefPattern.ReplaceAllString(text, "")
	text = prRefPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// parseListItem parses a legacy <li> or <dd> into a ReleaseItem.
func parseListItem(sel *goquery.Selection, category string) domain.ReleaseItem {
	text := strings.TrimSpace(sel.Text())
	item := domain.ReleaseItem{Category: category}

	parseItemLinks(sel, &item)
	fillPRFromText(text, &item)
	item.Description = cleanDescription(text)
	return item
}

// parseModernItem parses a modern <li>, additionally picking up inline
// "Impact:" and "Action:" annotations. Only the first line of the item
// text becomes the description.
func parseModernItem(sel *goquery.Selection, category string) domain.ReleaseItem {
	text := strings.TrimSpace(sel.Text())
	item := domain.ReleaseItem{
		Category: category,
		Impact:   strongSuffix(sel, "impact"),
		Action:   strongSuffix(sel, "action"),
	}

	parseItemLinks(sel, &item)
	fillPRFromText(text, &item)

	desc, _, _ := strings.Cut(text, "\n")
	item.Description = cleanDescription(desc)
	return item
}

// strongSuffix finds a <strong> tag whose text contains label and returns
// the text node immediately following it, stripped of a leading colon.
func strongSuffix(sel *goquery.Selection, label string) string {
	var out string
	sel.Find("strong").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(s.Text()), label) {
			return true
		}
		if node := s.Get(0); node.NextSibling != nil && node.NextSibling.Type == html.TextNode {
			out = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(node.NextSibling.Data), ":"))
		}
		return false
	})
	return out
}
