// Package report renders compiled release notes into Markdown. The layout
// consolidates every version's items per section and category, tagging
// each entry with the versions it shipped in, followed by a per-version
// appendix.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quantmind-br/relnotes-go/internal/domain"
)

// sectionOrder is the presentation order. Highlights are folded into the
// per-version appendix only; enhancements merge into features.
var sectionOrder = []domain.SectionType{
	domain.SectionNewFeatures,
	domain.SectionBugFixes,
	domain.SectionUpgrades,
	domain.SectionKnownIssues,
	domain.SectionDeprecations,
	domain.SectionBreakingChanges,
}

// sectionHeaders overrides the default section titles where the report
// merges types.
var sectionHeaders = map[domain.SectionType]string{
	domain.SectionNewFeatures: "Features & Enhancements",
}

// mergedSections folds one section type into another's listing.
var mergedSections = map[domain.SectionType]domain.SectionType{
	domain.SectionEnhancements: domain.SectionNewFeatures,
}

// Options configures the renderer.
type Options struct {
	// IncludePRLinks renders pull-request references as links when a URL
	// is known.
	IncludePRLinks bool
	// DisplayNames maps product keys to display names. Missing keys fall
	// back to the product key itself.
	DisplayNames map[string]string
}

// Renderer produces Markdown reports from compiled release notes.
type Renderer struct {
	includePRLinks bool
	displayNames   map[string]string
}

// NewRenderer creates a renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		includePRLinks: opts.IncludePRLinks,
		displayNames:   opts.DisplayNames,
	}
}

// Render produces the full report for one or more compiled products.
func (r *Renderer) Render(compiled []*domain.CompiledReleaseNotes) string {
	var b strings.Builder

	r.writeHeader(&b, compiled)
	for _, notes := range compiled {
		r.writeProduct(&b, notes)
	}
	return b.String()
}

// RenderOne is a convenience for single-product reports.
func (r *Renderer) RenderOne(compiled *domain.CompiledReleaseNotes) string {
	return r.Render([]*domain.CompiledReleaseNotes{compiled})
}

func (r *Renderer) displayName(product string) string {
	if name, ok := r.displayNames[product]; ok {
		return name
	}
	return product
}

func (r *Renderer) writeHeader(b *strings.Builder, compiled []*domain.CompiledReleaseNotes) {
	b.WriteString("# Release Notes\n\n")

	total := 0
	for _, notes := range compiled {
		total += len(notes.Releases)
	}
	names := make([]string, len(compiled))
	for i, notes := range compiled {
		names[i] = r.displayName(notes.Product)
	}
	fmt.Fprintf(b, "Products: %s\n\n", strings.Join(names, ", "))
	fmt.Fprintf(b, "Releases covered: %d\n\n", total)
}

func (r *Renderer) writeProduct(b *strings.Builder, notes *domain.CompiledReleaseNotes) {
	fmt.Fprintf(b, "## %s\n\n", r.displayName(notes.Product))
	fmt.Fprintf(b, "Versions %s → %s (%d releases)\n\n",
		notes.StartVersion, notes.EndVersion, len(notes.Releases))

	if breaking := len(notes.AllBreakingChanges()); breaking > 0 {
		fmt.Fprintf(b, "> **Important:** %d breaking changes in this range. Review them before upgrading.\n\n", breaking)
	}

	for _, t := range sectionOrder {
		r.writeSection(b, notes, t)
	}

	r.writeAppendix(b, notes)
}

// sectionItems collects a section's consolidated items by category,
// including any section types merged into it, each category ordered by
// earliest version.
func sectionItems(notes *domain.CompiledReleaseNotes, t domain.SectionType) map[string][]*domain.ConsolidatedItem {
	byCategory := make(map[string][]*domain.ConsolidatedItem)
	for cat, items := range notes.ConsolidatedByCategory(t) {
		byCategory[cat] = append(byCategory[cat], items...)
	}
	for source, target := range mergedSections {
		if target != t {
			continue
		}
		for cat, items := range notes.ConsolidatedByCategory(source) {
			byCategory[cat] = append(byCategory[cat], items...)
		}
	}
	for _, items := range byCategory {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Versions[0].Less(items[j].Versions[0])
		})
	}
	return byCategory
}

func sectionTitle(t domain.SectionType) string {
	if title, ok := sectionHeaders[t]; ok {
		return title
	}
	return t.Title()
}

func (r *Renderer) writeSection(b *strings.Builder, notes *domain.CompiledReleaseNotes, t domain.SectionType) {
	byCategory := sectionItems(notes, t)
	if len(byCategory) == 0 {
		return
	}

	fmt.Fprintf(b, "### %s\n\n", sectionTitle(t))

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		if len(categories) > 1 || cat != domain.GeneralCategory {
			fmt.Fprintf(b, "#### %s\n\n", cat)
		}
		for _, item := range byCategory[cat] {
			r.writeItem(b, item)
		}
		b.WriteString("\n")
	}
}

func (r *Renderer) writeItem(b *strings.Builder, item *domain.ConsolidatedItem) {
	fmt.Fprintf(b, "- **%s** %s", item.VersionRangeString(), item.Description)
	if item.PRNumber > 0 && r.includePRLinks {
		if item.PRURL != "" {
			fmt.Fprintf(b, " ([#%d](%s))", item.PRNumber, item.PRURL)
		} else {
			fmt.Fprintf(b, " (#%d)", item.PRNumber)
		}
	}
	b.WriteString("\n")

	if item.Impact != "" {
		fmt.Fprintf(b, "  - Impact: %s\n", item.Impact)
	}
	if item.Action != "" {
		fmt.Fprintf(b, "  - Action: %s\n", item.Action)
	}
}

// writeAppendix lists each release with its source and per-section counts.
func (r *Renderer) writeAppendix(b *strings.Builder, notes *domain.CompiledReleaseNotes) {
	if len(notes.Releases) == 0 {
		return
	}

	b.WriteString("### Releases\n\n")
	for _, release := range notes.Releases {
		fmt.Fprintf(b, "- **%s**", release.Version)
		if counts := sectionCounts(release); counts != "" {
			fmt.Fprintf(b, " — %s", counts)
		}
		if release.SourceURL != "" {
			fmt.Fprintf(b, " ([source](%s))", release.SourceURL)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func sectionCounts(release *domain.ReleaseNote) string {
	var parts []string
	for _, t := range domain.SectionTypes {
		section := release.Section(t)
		if section.IsEmpty() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s", len(section.Items), strings.ToLower(t.Title())))
	}
	return strings.Join(parts, ", ")
}
