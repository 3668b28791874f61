package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/relnotes-go/internal/semver"
)

func TestDedupKey(t *testing.T) {
	tests := []struct {
		name string
		item ReleaseItem
		want string
	}{
		{
			name: "pr number wins",
			item: ReleaseItem{Description: "Fix the thing", PRNumber: 555},
			want: "pr:555",
		},
		{
			name: "description fallback is normalized",
			item: ReleaseItem{Description: "  Fix The Thing  "},
			want: "desc:fix the thing",
		},
		{
			name: "long description is capped",
			item: ReleaseItem{Description: string(make([]byte, 300))},
			want: "desc:" + string(make([]byte, 100)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.DedupKey())
		})
	}

	// Same PR with different wording still collides.
	a := ReleaseItem{Description: "Fix the thing", PRNumber: 7}
	b := ReleaseItem{Description: "Fixed a thing", PRNumber: 7}
	assert.Equal(t, a.DedupKey(), b.DedupKey())
}

func TestReleaseSectionGrouping(t *testing.T) {
	s := NewReleaseSection(SectionBugFixes)
	s.Items = append(s.Items,
		ReleaseItem{Description: "one", Category: "Search"},
		ReleaseItem{Description: "two"},
		ReleaseItem{Description: "three", Category: "Search"},
	)

	grouped := s.ItemsByCategory()
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["Search"], 2)
	assert.Equal(t, "two", grouped[GeneralCategory][0].Description)
	assert.Equal(t, "one", grouped["Search"][0].Description, "document order kept")
}

func TestReleaseNoteSections(t *testing.T) {
	note := NewReleaseNote("elasticsearch", semver.MustParse("9.0.1"))

	assert.False(t, note.HasBreakingChanges())
	assert.False(t, note.HasDeprecations())
	assert.Nil(t, note.Section(SectionBugFixes))

	s := note.EnsureSection(SectionBreakingChanges)
	assert.Same(t, s, note.EnsureSection(SectionBreakingChanges), "ensure is idempotent")
	assert.False(t, note.HasBreakingChanges(), "empty section does not count")

	s.Items = append(s.Items, ReleaseItem{Description: "removed a setting"})
	assert.True(t, note.HasBreakingChanges())
	assert.Equal(t, 1, note.ItemCount())
}

func TestConsolidatedItemAddVersion(t *testing.T) {
	item := NewConsolidatedItem(ReleaseItem{Description: "fix", PRNumber: 1}, semver.MustParse("9.1.0"))

	item.AddVersion(semver.MustParse("9.0.0"))
	item.AddVersion(semver.MustParse("9.1.0")) // duplicate
	item.AddVersion(semver.MustParse("9.0.3"))

	require.Len(t, item.Versions, 3)
	assert.Equal(t, semver.MustParse("9.0.0"), item.Versions[0])
	assert.Equal(t, semver.MustParse("9.0.3"), item.Versions[1])
	assert.Equal(t, semver.MustParse("9.1.0"), item.Versions[2])
	assert.Equal(t, "[9.0.0, 9.0.3, 9.1.0]", item.VersionRangeString())
}

func noteWithBugFixes(product, version string, items ...ReleaseItem) *ReleaseNote {
	note := NewReleaseNote(product, semver.MustParse(version))
	s := note.EnsureSection(SectionBugFixes)
	s.Items = append(s.Items, items...)
	return note
}

func TestConsolidationAcrossVersions(t *testing.T) {
	// The same PR reported by two consecutive patch releases collapses into
	// one item carrying both versions.
	compiled := NewCompiledReleaseNotes("elasticsearch",
		semver.MustParse("8.16.0"), semver.MustParse("8.17.1"))
	compiled.Releases = []*ReleaseNote{
		noteWithBugFixes("elasticsearch", "8.17.0",
			ReleaseItem{Description: "Fix shard allocation", PRNumber: 555},
			ReleaseItem{Description: "Speed up merges", PRNumber: 600},
		),
		noteWithBugFixes("elasticsearch", "8.17.1",
			ReleaseItem{Description: "Fix shard allocation", PRNumber: 555},
		),
	}

	items := compiled.AllBugFixes()
	require.Len(t, items, 2)

	assert.Equal(t, 555, items[0].PRNumber)
	require.Len(t, items[0].Versions, 2)
	assert.Equal(t, semver.MustParse("8.17.0"), items[0].Versions[0])
	assert.Equal(t, semver.MustParse("8.17.1"), items[0].Versions[1])

	assert.Equal(t, 600, items[1].PRNumber)
	assert.Len(t, items[1].Versions, 1)
}

func TestConsolidationIsMemoized(t *testing.T) {
	compiled := NewCompiledReleaseNotes("kibana",
		semver.MustParse("9.0.0"), semver.MustParse("9.0.1"))
	compiled.Releases = []*ReleaseNote{
		noteWithBugFixes("kibana", "9.0.1", ReleaseItem{Description: "fix"}),
	}

	first := compiled.ConsolidatedSection(SectionBugFixes)
	second := compiled.ConsolidatedSection(SectionBugFixes)
	require.Len(t, first, 1)
	assert.Equal(t, &first[0], &second[0], "same backing array returned")
}

func TestConsolidatedByCategory(t *testing.T) {
	compiled := NewCompiledReleaseNotes("kibana",
		semver.MustParse("9.0.0"), semver.MustParse("9.0.2"))
	compiled.Releases = []*ReleaseNote{
		noteWithBugFixes("kibana", "9.0.1",
			ReleaseItem{Description: "a", Category: "Dashboards"},
			ReleaseItem{Description: "b"},
		),
		noteWithBugFixes("kibana", "9.0.2",
			ReleaseItem{Description: "c", Category: "Dashboards"},
		),
	}

	grouped := compiled.ConsolidatedByCategory(SectionBugFixes)
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["Dashboards"], 2)
	assert.Len(t, grouped[GeneralCategory], 1)
}

func TestConsolidatedOrderedByEarliestVersion(t *testing.T) {
	compiled := NewCompiledReleaseNotes("logstash",
		semver.MustParse("8.0.0"), semver.MustParse("9.0.0"))
	compiled.Releases = []*ReleaseNote{
		noteWithBugFixes("logstash", "8.17.0", ReleaseItem{Description: "later", PRNumber: 2}),
		noteWithBugFixes("logstash", "8.16.0", ReleaseItem{Description: "earlier", PRNumber: 1}),
	}

	items := compiled.AllBugFixes()
	require.Len(t, items, 2)
	assert.Equal(t, "earlier", items[0].Description)
	assert.Equal(t, "later", items[1].Description)
}
