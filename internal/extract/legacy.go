package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantmind-br/relnotes-go/internal/domain"
	"github.com/quantmind-br/relnotes-go/internal/semver"
)

// releaseNotesLink pulls the version out of legacy per-version page hrefs
// like "release-notes-8.17.2.html".
var releaseNotesLink = regexp.MustCompile(`release-notes-(\d+\.\d+\.\d+(?:-\w+\d*)?)`)

// Legacy extracts release notes from the per-minor-version multi-page site
// used through 8.x. Pages flow as a flat sequence of headings and lists;
// the extractor tracks the current section and category while walking it.
type Legacy struct{}

// NewLegacy creates a legacy extractor.
func NewLegacy() *Legacy {
	return &Legacy{}
}

// VersionList collects every version linked from a release-notes index
// page, newest first.
func (e *Legacy) VersionList(htmlText string) ([]semver.Version, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	var versions []semver.Version
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		m := releaseNotesLink.FindStringSubmatch(a.AttrOr("href", ""))
		if m == nil {
			return
		}
		if v, err := semver.Parse(m[1]); err == nil {
			versions = append(versions, v)
		}
	})
	return semver.Dedup(versions), nil
}

// ReleaseNotes parses one version's release-notes page.
func (e *Legacy) ReleaseNotes(htmlText string, v semver.Version, product string) (*domain.ReleaseNote, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	note := domain.NewReleaseNote(product, v)
	content := mainContent(doc)
	if content.Length() == 0 {
		return note, nil
	}

	var current *domain.ReleaseSection
	category := ""

	content.Find("h2, h3, h4, ul, dl").Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "h2", "h3":
			heading := sel.Text()
			if typ, ok := matchSection(legacySectionPatterns, heading); ok {
				current = note.EnsureSection(typ)
				category = ""
			} else if current != nil {
				category = strings.TrimSpace(heading)
			}

		case "h4":
			if current != nil {
				category = strings.TrimSpace(sel.Text())
			}

		case "ul":
			if current == nil {
				return
			}
			sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				current.Items = append(current.Items, parseListItem(li, category))
			})

		case "dl":
			if current == nil {
				return
			}
			// Definition lists pair <dt> category labels with <dd> items.
			dlCategory := category
			sel.Children().Each(func(_ int, child *goquery.Selection) {
				switch goquery.NodeName(child) {
				case "dt":
					dlCategory = strings.TrimSpace(child.Text())
				case "dd":
					item := parseListItem(child, dlCategory)
					if item.Description != "" {
						current.Items = append(current.Items, item)
					}
				}
			})
		}
	})

	return note, nil
}

// BreakingChanges parses a migration guide, keeping only the headings that
// textually relate to the target minor version.
func (e *Legacy) BreakingChanges(htmlText string, v semver.Version) ([]domain.ReleaseItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	content := doc.Find("div.chapter").First()
	if content.Length() == 0 {
		content = doc.Find("body").First()
	}
	if content.Length() == 0 {
		return nil, nil
	}

	var items []domain.ReleaseItem
	category := ""
	relevant := false
	minor := v.MajorMinor()

	content.Find("h2, h3, h4, ul, dl").Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "h2":
			heading := strings.ToLower(sel.Text())
			relevant = strings.Contains(heading, minor) ||
				strings.Contains(heading, "breaking") ||
				strings.Contains(heading, "migrat")

		case "h3", "h4":
			if relevant {
				category = strings.TrimSpace(sel.Text())
			}

		case "ul":
			if !relevant {
				return
			}
			sel.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
				items = append(items, parseListItem(li, category))
			})

		case "dl":
			if !relevant {
				return
			}
			// Migration guides pair a <dt> change title with a <dd>
			// impact paragraph.
			var dts, dds []*goquery.Selection
			sel.Find("dt").Each(func(_ int, s *goquery.Selection) { dts = append(dts, s) })
			sel.Find("dd").Each(func(_ int, s *goquery.Selection) { dds = append(dds, s) })
			for i := 0; i < len(dts) && i < len(dds); i++ {
				items = append(items, domain.ReleaseItem{
					Description: strings.TrimSpace(dts[i].Text()),
					Category:    category,
					Impact:      strings.TrimSpace(dds[i].Text()),
				})
			}
		}
	})

	return items, nil
}

// mainContent locates the content area of a legacy page.
func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{"div.chapter", "article", "body"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Selection.Slice(0, 0)
}
