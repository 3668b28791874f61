// Package extract turns documentation-site HTML into release-note models.
// Two page generations exist: the legacy per-version multi-page layout and
// the modern consolidated single-page layout. Both extractors fail soft,
// returning empty or partial results when expected elements are absent.
package extract

import (
	"strings"

	"github.com/quantmind-br/relnotes-go/internal/domain"
)

// sectionPattern maps a heading substring to a section type. Order matters:
// "bug fixes" must be tried before "fixes", "new features" before
// "features".
type sectionPattern struct {
	substr string
	typ    domain.SectionType
}

var legacySectionPatterns = []sectionPattern{
	{"known issues", domain.SectionKnownIssues},
	{"breaking changes", domain.SectionBreakingChanges},
	{"deprecations", domain.SectionDeprecations},
	{"deprecation", domain.SectionDeprecations},
	{"highlights", domain.SectionHighlights},
	{"new features", domain.SectionNewFeatures},
	{"enhancements", domain.SectionEnhancements},
	{"enhancement", domain.SectionEnhancements},
	{"bug fixes", domain.SectionBugFixes},
	{"fixes", domain.SectionBugFixes},
	{"upgrades", domain.SectionUpgrades},
}

// The modern site additionally uses a bare "Features" heading.
var modernSectionPatterns = []sectionPattern{
	{"known issues", domain.SectionKnownIssues},
	{"breaking changes", domain.SectionBreakingChanges},
	{"deprecations", domain.SectionDeprecations},
	{"deprecation", domain.SectionDeprecations},
	{"highlights", domain.SectionHighlights},
	{"new features", domain.SectionNewFeatures},
	{"features", domain.SectionNewFeatures},
	{"enhancements", domain.SectionEnhancements},
	{"enhancement", domain.SectionEnhancements},
	{"bug fixes", domain.SectionBugFixes},
	{"fixes", domain.SectionBugFixes},
	{"upgrades", domain.SectionUpgrades},
}

// matchSection resolves a heading to a section type, first match wins.
func matchSection(patterns []sectionPattern, heading string) (domain.SectionType, bool) {
	heading = strings.ToLower(strings.TrimSpace(heading))
	for _, p := range patterns {
		if strings.Contains(heading, p.substr) {
			return p.typ, true
		}
	}
	return "", false
}
