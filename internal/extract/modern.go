package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantmind-br/relnotes-go/internal/domain"
	"github.com/quantmind-br/relnotes-go/internal/semver"
)

// DefaultCategoryMaxLen bounds the length of a paragraph treated as a
// category label. The site renders categories as short paragraphs ending in
// a colon ("Allocation:"); anything longer is prose.
const DefaultCategoryMaxLen = 50

// anchorVersionDashes matches version anchors that spell the version with
// dashes, e.g. "elastic-apm-java-agent-1-55-4-release-notes".
var anchorVersionDashes = regexp.MustCompile(`(?i)-(\d+)-(\d+)-(\d+)(?:-(\w+))?-release-notes`)

// Modern extracts release notes from the consolidated single-page site
// introduced with 9.0. All versions of a product share one page; the
// extractor locates a version's anchor and walks forward through siblings
// until the next version boundary.
type Modern struct {
	categoryMaxLen int
}

// NewModern creates a modern extractor. categoryMaxLen <= 0 selects the
// default.
func NewModern(categoryMaxLen int) *Modern {
	if categoryMaxLen <= 0 {
		categoryMaxLen = DefaultCategoryMaxLen
	}
	return &Modern{categoryMaxLen: categoryMaxLen}
}

// productVariants lists the naming conventions a product appears under in
// anchor IDs. APM agents anchor as "elastic-apm-{lang}-agent"; EDOT SDKs
// anchor as either "edot-{lang}" or "elastic-otel-{lang}".
func productVariants(product string) []string {
	product = strings.ToLower(product)
	variants := []string{product}
	if lang, ok := strings.CutPrefix(product, "apm-agent-"); ok {
		variants = append(variants, "elastic-apm-"+lang+"-agent")
	}
	if lang, ok := strings.CutPrefix(product, "edot-"); ok {
		variants = append(variants, "edot-"+lang, "elastic-otel-"+lang)
	}
	return variants
}

// anchorIDs builds the candidate anchor IDs for a product/version page
// section, e.g. "elasticsearch-9.0.0-release-notes".
func anchorIDs(product string, v semver.Version, suffix string) []string {
	vstr := v.String()
	vdashes := strings.ReplaceAll(vstr, ".", "-")
	product = strings.ToLower(product)

	ids := []string{fmt.Sprintf("%s-%s-%s", product, vstr, suffix)}
	if lang, ok := strings.CutPrefix(product, "apm-agent-"); ok {
		ids = append(ids, fmt.Sprintf("elastic-apm-%s-agent-%s-%s", lang, vdashes, suffix))
	}
	if lang, ok := strings.CutPrefix(product, "edot-"); ok {
		ids = append(ids,
			fmt.Sprintf("edot-%s-%s-%s", lang, vdashes, suffix),
			fmt.Sprintf("elastic-otel-%s-%s-%s", lang, vdashes, suffix))
	}
	return ids
}

// VersionList collects every version anchored on a consolidated page,
// newest first.
func (e *Modern) VersionList(htmlText, product string) ([]semver.Version, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	product = strings.ToLower(product)
	variants := productVariants(product)
	dotsPattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(product) + `-(\d+\.\d+\.\d+(?:-\w+\d*)?)`)

	var versions []semver.Version
	collect := func(s string) {
		if m := dotsPattern.FindStringSubmatch(s); m != nil {
			if v, err := semver.Parse(m[1]); err == nil {
				versions = append(versions, v)
				return
			}
		}
		m := anchorVersionDashes.FindStringSubmatch(s)
		if m == nil {
			return
		}
		lower := strings.ToLower(s)
		for _, variant := range variants {
			if !strings.Contains(lower, variant) {
				continue
			}
			vstr := m[1] + "." + m[2] + "." + m[3]
			if m[4] != "" {
				vstr += "-" + m[4]
			}
			if v, err := semver.Parse(vstr); err == nil {
				versions = append(versions, v)
			}
			return
		}
	}

	doc.Find("[id]").Each(func(_ int, sel *goquery.Selection) {
		collect(sel.AttrOr("id", ""))
	})
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href := a.AttrOr("href", ""); strings.Contains(href, "#") {
			collect(href)
		}
	})
	// Headings sometimes carry plain version numbers with no anchor.
	doc.Find("h2, h3").Each(func(_ int, h *goquery.Selection) {
		if m := bareVersionRe.FindString(h.Text()); m != "" {
			if v, err := semver.Parse(m); err == nil {
				versions = append(versions, v)
			}
		}
	})

	return semver.Dedup(versions), nil
}

// ReleaseNotes extracts one version's notes from a consolidated page.
// Returns nil when the page has no section for that version.
func (e *Modern) ReleaseNotes(htmlText string, v semver.Version, product string) (*domain.ReleaseNote, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	wrapper := findVersionWrapper(doc, anchorIDs(product, v, "release-notes"), v)
	if wrapper == nil {
		return nil, nil
	}

	note := domain.NewReleaseNote(product, v)
	vstr := v.String()
	var current *domain.ReleaseSection
	category := ""

	handleHeading := func(heading string) bool {
		heading = strings.ToLower(strings.TrimSpace(heading))
		// A heading naming a different version marks the next release.
		if bareVersionRe.MatchString(heading) && !strings.Contains(heading, vstr) {
			return false
		}
		if typ, ok := matchSection(modernSectionPatterns, heading); ok {
			current = note.EnsureSection(typ)
			category = ""
		}
		return true
	}

	wrapper.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
		switch goquery.NodeName(sib) {
		case "div":
			if id := sib.AttrOr("id", ""); strings.HasSuffix(id, "-release-notes") && !strings.Contains(id, vstr) {
				return false
			}
			if sib.HasClass("heading-wrapper") {
				if h3 := sib.Find("h3").First(); h3.Length() > 0 {
					return handleHeading(h3.Text())
				}
			}

		case "h3":
			return handleHeading(sib.Text())

		case "details":
			if current != nil {
				if item := e.parseDetails(sib, category); item != nil {
					current.Items = append(current.Items, *item)
				}
			}

		case "p":
			if label, ok := e.categoryLabel(sib.Text()); ok {
				category = label
			}

		case "h4":
			if current != nil {
				category = strings.TrimSpace(sib.Text())
			}

		case "ul":
			if current != nil {
				sib.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
					current.Items = append(current.Items, parseModernItem(li, category))
				})
			}
		}
		return true
	})

	return note, nil
}

// BreakingChanges extracts one version's entries from the dedicated
// breaking-changes page.
func (e *Modern) BreakingChanges(htmlText string, v semver.Version, product string) ([]domain.ReleaseItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	wrapper := findVersionWrapper(doc, anchorIDs(product, v, "breaking-changes"), v)
	if wrapper == nil {
		return nil, nil
	}

	var items []domain.ReleaseItem
	category := ""

	wrapper.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
		switch goquery.NodeName(sib) {
		case "div":
			if sib.HasClass("heading-wrapper") {
				return false
			}
			if strings.HasSuffix(sib.AttrOr("id", ""), "-breaking-changes") {
				return false
			}

		case "p":
			text := strings.TrimSpace(sib.Text())
			if strings.Contains(strings.ToLower(text), "no breaking changes") {
				return false
			}
			if label, ok := e.categoryLabel(text); ok {
				category = label
			}

		case "details":
			if item := e.parseDetails(sib, category); item != nil {
				items = append(items, *item)
			}

		case "ul":
			sib.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				items = append(items, parseModernItem(li, category))
			})
		}
		return true
	})

	return items, nil
}

// Deprecations extracts one version's entries from the dedicated
// deprecations page.
func (e *Modern) Deprecations(htmlText string, v semver.Version) ([]domain.ReleaseItem, error) {
	return e.auxiliaryItems(htmlText, v, "no deprecation")
}

// KnownIssues extracts one version's entries from the dedicated
// known-issues page.
func (e *Modern) KnownIssues(htmlText string, v semver.Version) ([]domain.ReleaseItem, error) {
	return e.auxiliaryItems(htmlText, v, "")
}

// auxiliaryItems walks a dedicated auxiliary page: versions appear as
// plain headings, items as lists beneath them.
func (e *Modern) auxiliaryItems(htmlText string, v semver.Version, noneMarker string) ([]domain.ReleaseItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	vstr := v.String()
	header := findHeaderWithVersion(doc, vstr)
	if header == nil {
		return nil, nil
	}

	if noneMarker != "" {
		if next := header.Next(); next.Length() > 0 &&
			strings.Contains(strings.ToLower(next.Text()), noneMarker) {
			return nil, nil
		}
	}

	var items []domain.ReleaseItem
	category := ""

	header.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
		switch goquery.NodeName(sib) {
		case "h2":
			if text := sib.Text(); bareVersionRe.MatchString(text) && !strings.Contains(text, vstr) {
				return false
			}

		case "h3", "h4":
			text := sib.Text()
			if bareVersionRe.MatchString(text) && !strings.Contains(text, vstr) {
				return false
			}
			category = strings.TrimSpace(text)

		case "ul":
			sib.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				items = append(items, parseModernItem(li, category))
			})
		}
		return true
	})

	return items, nil
}

// categoryLabel recognizes short category paragraphs like "Allocation:".
func (e *Modern) categoryLabel(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, ":") && len(text) < e.categoryMaxLen {
		return strings.TrimSpace(strings.TrimSuffix(text, ":")), true
	}
	return "", false
}

// parseDetails parses a <details> dropdown into an item. The summary text
// is the title; paragraphs before the "Impact:" marker extend the
// description, and Impact/Action paragraphs fill the dedicated fields.
func (e *Modern) parseDetails(details *goquery.Selection, category string) *domain.ReleaseItem {
	summary := details.Find("summary").First()
	if summary.Length() == 0 {
		return nil
	}

	title := strings.TrimSpace(summary.Find(".dropdown-title__summary-text").First().Text())
	if title == "" {
		title = strings.TrimSpace(summary.Text())
	}
	if title == "" {
		return nil
	}

	item := &domain.ReleaseItem{Description: title, Category: category}

	content := details.Find(".dropdown-content").First()
	if content.Length() == 0 {
		content = details.Find("div").First()
	}
	if content.Length() == 0 {
		return item
	}

	var descParts []string
	content.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if strings.HasPrefix(text, "Impact:") || strings.HasPrefix(text, "**Impact") {
			return false
		}
		if strings.HasPrefix(text, "Action:") || strings.HasPrefix(text, "**Action") ||
			strings.HasPrefix(text, "For more information") {
			return true
		}
		descParts = append(descParts, text)
		return true
	})
	if len(descParts) > 0 {
		item.Description = title + " - " + strings.Join(descParts, " ")
	}

	content.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if item.Impact == "" && strings.Contains(text, "Impact:") {
			item.Impact = strings.TrimSpace(strings.ReplaceAll(text, "Impact:", ""))
		}
		if item.Action == "" && strings.Contains(text, "Action:") {
			item.Action = strings.TrimSpace(strings.ReplaceAll(text, "Action:", ""))
		}
		return item.Impact == "" || item.Action == ""
	})

	content.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		if m := prLinkPattern.FindStringSubmatch(href); m != nil {
			item.PRNumber, _ = strconv.Atoi(m[1])
			item.PRURL = href
			return false
		}
		return true
	})

	return item
}

// findVersionWrapper locates the element a version's content follows:
// first by candidate anchor IDs, then by scanning headings for the version
// number.
func findVersionWrapper(doc *goquery.Document, ids []string, v semver.Version) *goquery.Selection {
	// Anchor IDs contain dots, so match on the attribute value instead of a
	// CSS #id selector.
	var wrapper *goquery.Selection
	doc.Find("div[id]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		id := sel.AttrOr("id", "")
		for _, candidate := range ids {
			if id == candidate {
				wrapper = sel
				return false
			}
		}
		return true
	})
	if wrapper != nil {
		return wrapper
	}

	if header := findHeaderWithVersion(doc, v.String()); header != nil {
		if parent := header.Parent(); goquery.NodeName(parent) == "div" {
			return parent
		}
		return header
	}
	return nil
}

// findHeaderWithVersion returns the first h2/h3 whose text contains the
// version string.
func findHeaderWithVersion(doc *goquery.Document, vstr string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.Contains(h.Text(), vstr) {
			found = h
			return false
		}
		return true
	})
	return found
}
