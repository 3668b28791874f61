package domain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/quantmind-br/relnotes-go/internal/semver"
)

// SectionType identifies a release-note section.
type SectionType string

const (
	SectionBreakingChanges SectionType = "breaking_changes"
	SectionKnownIssues     SectionType = "known_issues"
	SectionDeprecations    SectionType = "deprecations"
	SectionHighlights      SectionType = "highlights"
	SectionNewFeatures     SectionType = "new_features"
	SectionEnhancements    SectionType = "enhancements"
	SectionBugFixes        SectionType = "bug_fixes"
	SectionUpgrades        SectionType = "upgrades"
)

// SectionTypes lists every section type in presentation order.
var SectionTypes = []SectionType{
	SectionHighlights,
	SectionBreakingChanges,
	SectionDeprecations,
	SectionKnownIssues,
	SectionNewFeatures,
	SectionEnhancements,
	SectionBugFixes,
	SectionUpgrades,
}

// Title returns a human-readable section heading.
func (s SectionType) Title() string {
	switch s {
	case SectionBreakingChanges:
		return "Breaking changes"
	case SectionKnownIssues:
		return "Known issues"
	case SectionDeprecations:
		return "Deprecations"
	case SectionHighlights:
		return "Highlights"
	case SectionNewFeatures:
		return "New features"
	case SectionEnhancements:
		return "Enhancements"
	case SectionBugFixes:
		return "Bug fixes"
	case SectionUpgrades:
		return "Upgrades"
	}
	return string(s)
}

// GeneralCategory is the category assigned to items that have none.
const GeneralCategory = "General"

// dedupKeyMaxLen caps the description-based dedup key.
const dedupKeyMaxLen = 100

// ReleaseItem is a single changelog entry.
type ReleaseItem struct {
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	PRNumber    int    `json:"pr_number,omitempty"`
	PRURL       string `json:"pr_url,omitempty"`
	IssueNumber int    `json:"issue_number,omitempty"`
	IssueURL    string `json:"issue_url,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Action      string `json:"action,omitempty"`
}

// DedupKey returns the cross-version identity of an item: the pull-request
// number when present, otherwise the normalized, length-capped description.
func (i ReleaseItem) DedupKey() string {
	if i.PRNumber > 0 {
		return fmt.Sprintf("pr:%d", i.PRNumber)
	}
	desc := strings.ToLower(strings.TrimSpace(i.Description))
	if len(desc) > dedupKeyMaxLen {
		desc = desc[:dedupKeyMaxLen]
	}
	return "desc:" + desc
}

// CategoryOrGeneral returns the item category, defaulting to General.
func (i ReleaseItem) CategoryOrGeneral() string {
	if i.Category == "" {
		return GeneralCategory
	}
	return i.Category
}

// ReleaseSection groups the items of one section type within a release.
type ReleaseSection struct {
	Type  SectionType   `json:"type"`
	Items []ReleaseItem `json:"items"`
}

// NewReleaseSection creates an empty section of the given type.
func NewReleaseSection(t SectionType) *ReleaseSection {
	return &ReleaseSection{Type: t}
}

// IsEmpty reports whether the section holds no items. Safe on nil.
func (s *ReleaseSection) IsEmpty() bool {
	return s == nil || len(s.Items) == 0
}

// ItemsByCategory groups items by category, preserving document order
// within each category.
func (s *ReleaseSection) ItemsByCategory() map[string][]ReleaseItem {
	grouped := make(map[string][]ReleaseItem)
	if s == nil {
		return grouped
	}
	for _, item := range s.Items {
		cat := item.CategoryOrGeneral()
		grouped[cat] = append(grouped[cat], item)
	}
	return grouped
}

// ReleaseNote holds the complete notes for one product version. Each
// section type appears at most once.
type ReleaseNote struct {
	Version     semver.Version                  `json:"version"`
	Product     string                          `json:"product"`
	Sections    map[SectionType]*ReleaseSection `json:"sections"`
	ReleaseDate string                          `json:"release_date,omitempty"`
	SourceURL   string                          `json:"source_url,omitempty"`
}

// NewReleaseNote creates an empty note for the given product version.
func NewReleaseNote(product string, version semver.Version) *ReleaseNote {
	return &ReleaseNote{
		Version:  version,
		Product:  product,
		Sections: make(map[SectionType]*ReleaseSection),
	}
}

// Section returns the section of the given type, or nil when absent.
func (r *ReleaseNote) Section(t SectionType) *ReleaseSection {
	if r.Sections == nil {
		return nil
	}
	return r.Sections[t]
}

// EnsureSection returns the section of the given type, creating it when
// absent.
func (r *ReleaseNote) EnsureSection(t SectionType) *ReleaseSection {
	if r.Sections == nil {
		r.Sections = make(map[SectionType]*ReleaseSection)
	}
	if s, ok := r.Sections[t]; ok {
		return s
	}
	s := NewReleaseSection(t)
	r.Sections[t] = s
	return s
}

// HasBreakingChanges reports a non-empty breaking-changes section.
func (r *ReleaseNote) HasBreakingChanges() bool {
	return !r.Section(SectionBreakingChanges).IsEmpty()
}

// HasDeprecations reports a non-empty deprecations section.
func (r *ReleaseNote) HasDeprecations() bool {
	return !r.Section(SectionDeprecations).IsEmpty()
}

// ItemCount returns the total number of items across all sections.
func (r *ReleaseNote) ItemCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Items)
	}
	return n
}

// ConsolidatedItem is a changelog entry generalized across every version it
// appeared in. Versions stay ascending with no duplicates.
type ConsolidatedItem struct {
	Description string           `json:"description"`
	Versions    []semver.Version `json:"versions"`
	Category    string           `json:"category,omitempty"`
	PRNumber    int              `json:"pr_number,omitempty"`
	PRURL       string           `json:"pr_url,omitempty"`
	IssueNumber int              `json:"issue_number,omitempty"`
	IssueURL    string           `json:"issue_url,omitempty"`
	Impact      string           `json:"impact,omitempty"`
	Action      string           `json:"action,omitempty"`
}

// NewConsolidatedItem lifts a ReleaseItem into a ConsolidatedItem observed
// in a single version.
func NewConsolidatedItem(item ReleaseItem, version semver.Version) *ConsolidatedItem {
	return &ConsolidatedItem{
		Description: item.Description,
		Versions:    []semver.Version{version},
		Category:    item.Category,
		PRNumber:    item.PRNumber,
		PRURL:       item.PRURL,
		IssueNumber: item.IssueNumber,
		IssueURL:    item.IssueURL,
		Impact:      item.Impact,
		Action:      item.Action,
	}
}

// AddVersion records another version the item was observed in. Duplicates
// are ignored; the list stays sorted ascending.
func (c *ConsolidatedItem) AddVersion(v semver.Version) {
	for _, existing := range c.Versions {
		if existing.Equal(v) {
			return
		}
	}
	c.Versions = append(c.Versions, v)
	semver.Sort(c.Versions)
}

// CategoryOrGeneral returns the category, defaulting to General.
func (c *ConsolidatedItem) CategoryOrGeneral() string {
	if c.Category == "" {
		return GeneralCategory
	}
	return c.Category
}

// VersionRangeString renders the version list as "[9.0.3, 9.1.2]".
func (c *ConsolidatedItem) VersionRangeString() string {
	parts := make([]string, len(c.Versions))
	for i, v := range c.Versions {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// CompiledReleaseNotes is the aggregate of every release fetched for a
// compile request. Releases are unique per version and sorted ascending.
// Consolidated views are derived lazily and memoized per section type.
type CompiledReleaseNotes struct {
	Product      string
	StartVersion semver.Version
	EndVersion   semver.Version
	Releases     []*ReleaseNote

	mu           sync.Mutex
	consolidated map[SectionType][]*ConsolidatedItem
}

// NewCompiledReleaseNotes creates an empty compiled result.
func NewCompiledReleaseNotes(product string, start, end semver.Version) *CompiledReleaseNotes {
	return &CompiledReleaseNotes{
		Product:      product,
		StartVersion: start,
		EndVersion:   end,
	}
}

// ConsolidatedSection returns the deduplicated items of a section type
// across all releases, ordered by earliest appearance version. The result
// is cached; callers must not mutate it.
func (c *CompiledReleaseNotes) ConsolidatedSection(t SectionType) []*ConsolidatedItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.consolidated == nil {
		c.consolidated = make(map[SectionType][]*ConsolidatedItem)
	}
	if cached, ok := c.consolidated[t]; ok {
		return cached
	}

	byKey := make(map[string]*ConsolidatedItem)
	var order []string

	for _, release := range c.Releases {
		section := release.Section(t)
		if section.IsEmpty() {
			continue
		}
		for _, item := range section.Items {
			key := item.DedupKey()
			if existing, ok := byKey[key]; ok {
				existing.AddVersion(release.Version)
				continue
			}
			byKey[key] = NewConsolidatedItem(item, release.Version)
			order = append(order, key)
		}
	}

	result := make([]*ConsolidatedItem, 0, len(order))
	for _, key := range order {
		result = append(result, byKey[key])
	}
	sortConsolidated(result)

	c.consolidated[t] = result
	return result
}

// ConsolidatedByCategory groups the deduplicated items of a section type by
// category.
func (c *CompiledReleaseNotes) ConsolidatedByCategory(t SectionType) map[string][]*ConsolidatedItem {
	grouped := make(map[string][]*ConsolidatedItem)
	for _, item := range c.ConsolidatedSection(t) {
		grouped[item.CategoryOrGeneral()] = append(grouped[item.CategoryOrGeneral()], item)
	}
	return grouped
}

// AllBreakingChanges returns every breaking change, deduplicated.
func (c *CompiledReleaseNotes) AllBreakingChanges() []*ConsolidatedItem {
	return c.ConsolidatedSection(SectionBreakingChanges)
}

// AllDeprecations returns every deprecation, deduplicated.
func (c *CompiledReleaseNotes) AllDeprecations() []*ConsolidatedItem {
	return c.ConsolidatedSection(SectionDeprecations)
}

// AllBugFixes returns every bug fix, deduplicated.
func (c *CompiledReleaseNotes) AllBugFixes() []*ConsolidatedItem {
	return c.ConsolidatedSection(SectionBugFixes)
}

// sortConsolidated orders items by earliest version, stable for ties so
// document order survives.
func sortConsolidated(items []*ConsolidatedItem) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Versions[0].Less(items[j-1].Versions[0]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}
