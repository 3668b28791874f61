package compiler

import (
	"strings"

	"github.com/quantmind-br/relnotes-go/internal/domain"
)

// mergeBreakingChanges appends migration-guide entries into the note's
// breaking-changes section, skipping entries already present under the
// same description (case-insensitive). Merging the same payload twice is a
// no-op.
func mergeBreakingChanges(note *domain.ReleaseNote, items []domain.ReleaseItem) {
	if len(items) == 0 {
		return
	}

	section := note.EnsureSection(domain.SectionBreakingChanges)
	seen := make(map[string]struct{}, len(section.Items))
	for _, it := range section.Items {
		seen[strings.ToLower(it.Description)] = struct{}{}
	}

	for _, it := range items {
		key := strings.ToLower(it.Description)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		section.Items = append(section.Items, it)
	}
}

// fillSection sets a section from an auxiliary page only when the note
// does not already carry one, so a populated section is never overwritten.
func fillSection(note *domain.ReleaseNote, t domain.SectionType, items []domain.ReleaseItem) {
	if len(items) == 0 {
		return
	}
	if !note.Section(t).IsEmpty() {
		return
	}
	section := note.EnsureSection(t)
	section.Items = append(section.Items, items...)
}
