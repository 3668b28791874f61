package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/relnotes-go/internal/domain"
	"github.com/quantmind-br/relnotes-go/internal/semver"
)

func TestMatchSectionOrdering(t *testing.T) {
	// "bug fixes" must win over the bare "fixes" pattern.
	typ, ok := matchSection(legacySectionPatterns, "Bug fixes")
	require.True(t, ok)
	assert.Equal(t, domain.SectionBugFixes, typ)

	typ, ok = matchSection(legacySectionPatterns, "Fixes")
	require.True(t, ok)
	assert.Equal(t, domain.SectionBugFixes, typ)

	typ, ok = matchSection(modernSectionPatterns, "Features and enhancements")
	require.True(t, ok)
	assert.Equal(t, domain.SectionNewFeatures, typ)

	_, ok = matchSection(legacySectionPatterns, "Installation")
	assert.False(t, ok)
}

func TestLegacyVersionList(t *testing.T) {
	html := `<html><body>
		<a href="release-notes-8.17.2.html">8.17.2</a>
		<a href="release-notes-8.17.1.html">8.17.1</a>
		<a href="release-notes-8.17.2.html">duplicate</a>
		<a href="release-notes-9.0.0-beta1.html">beta</a>
		<a href="setup.html">setup</a>
	</body></html>`

	e := NewLegacy()
	versions, err := e.VersionList(html)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, semver.MustParse("8.17.1"), versions[0])
	assert.Equal(t, semver.MustParse("8.17.2"), versions[1])
	assert.Equal(t, semver.MustParse("9.0.0-beta1"), versions[2])
}

func TestLegacyReleaseNotesBugFixes(t *testing.T) {
	// A "Bug fixes" heading followed by a list yields a bug_fixes section.
	html := `<div class="chapter">
		<h2>Bug fixes</h2>
		<ul>
			<li>Fixed crash (#1234)</li>
		</ul>
	</div>`

	e := NewLegacy()
	note, err := e.ReleaseNotes(html, semver.MustParse("8.17.0"), "elasticsearch")
	require.NoError(t, err)

	section := note.Section(domain.SectionBugFixes)
	require.False(t, section.IsEmpty())
	require.Len(t, section.Items, 1)

	item := section.Items[0]
	assert.Equal(t, "Fixed crash", item.Description)
	assert.Equal(t, 1234, item.PRNumber)
	assert.Equal(t, "https://github.com/elastic/elasticsearch/pull/1234", item.PRURL)
}

func TestLegacyReleaseNotesFullPage(t *testing.T) {
	html := `<div class="chapter">
		<h2>Enhancements</h2>
		<h3>Search</h3>
		<ul>
			<li>Faster queries <a href="https://github.com/elastic/elasticsearch/pull/42">#42</a></li>
		</ul>
		<h2>Bug fixes</h2>
		<dl>
			<dt>Allocation</dt>
			<dd>Fix shard stall <a href="https://github.com/elastic/elasticsearch/pull/77">#77</a>
				(issue: <a href="https://github.com/elastic/elasticsearch/issues/70">#70</a>)</dd>
			<dd></dd>
		</dl>
	</div>`

	e := NewLegacy()
	note, err := e.ReleaseNotes(html, semver.MustParse("8.17.0"), "elasticsearch")
	require.NoError(t, err)

	enh := note.Section(domain.SectionEnhancements)
	require.Len(t, enh.Items, 1)
	assert.Equal(t, "Faster queries", enh.Items[0].Description)
	assert.Equal(t, "Search", enh.Items[0].Category)
	assert.Equal(t, 42, enh.Items[0].PRNumber)
	assert.Equal(t, "https://github.com/elastic/elasticsearch/pull/42", enh.Items[0].PRURL)

	fixes := note.Section(domain.SectionBugFixes)
	require.Len(t, fixes.Items, 1, "empty <dd> entries are dropped")
	item := fixes.Items[0]
	assert.Equal(t, "Allocation", item.Category)
	assert.Equal(t, 77, item.PRNumber)
	assert.Equal(t, 70, item.IssueNumber)
	assert.Equal(t, "https://github.com/elastic/elasticsearch/issues/70", item.IssueURL)
}

func TestLegacyReleaseNotesEmptyPage(t *testing.T) {
	e := NewLegacy()
	note, err := e.ReleaseNotes("<html></html>", semver.MustParse("8.17.0"), "kibana")
	require.NoError(t, err)
	assert.Empty(t, note.Sections)
	assert.Equal(t, "kibana", note.Product)
}

func TestLegacyBreakingChanges(t *testing.T) {
	html := `<div class="chapter">
		<h2>Migrating to 8.17</h2>
		<h3>REST API changes</h3>
		<ul>
			<li>Removed the legacy endpoint (#900)</li>
		</ul>
		<dl>
			<dt>Setting xyz removed</dt>
			<dd>Deployments using xyz fail to start.</dd>
		</dl>
		<h2>Migrating to 8.16</h2>
		<ul>
			<li>Old change, different minor (#800)</li>
		</ul>
	</div>`

	e := NewLegacy()
	items, err := e.BreakingChanges(html, semver.MustParse("8.17.1"))
	require.NoError(t, err)
	// The 8.16 heading still matches the "migrat" keyword, so its list is
	// included too.
	require.Len(t, items, 3)

	assert.Equal(t, "Removed the legacy endpoint", items[0].Description)
	assert.Equal(t, "REST API changes", items[0].Category)
	assert.Equal(t, 900, items[0].PRNumber)

	assert.Equal(t, "Setting xyz removed", items[1].Description)
	assert.Equal(t, "Deployments using xyz fail to start.", items[1].Impact)
}

func TestLegacyBreakingChangesIrrelevantHeadings(t *testing.T) {
	html := `<div class="chapter">
		<h2>Overview</h2>
		<ul><li>Not a breaking change</li></ul>
	</div>`

	e := NewLegacy()
	items, err := e.BreakingChanges(html, semver.MustParse("8.17.0"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fixed crash (#1234)", "Fixed crash"},
		{"Fixed crash #1234", "Fixed crash"},
		{"Fix thing (issue: #70)", "Fix thing"},
		{"Multiple   spaces\n here", "Multiple spaces here"},
		{"No refs at all", "No refs at all"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanDescription(tt.in), "input %q", tt.in)
	}
}
