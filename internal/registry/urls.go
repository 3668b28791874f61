package registry

import (
	"fmt"

	"github.com/quantmind-br/relnotes-go/internal/semver"
)

// Legacy site URL templates. The legacy site publishes one doc tree per
// minor version; every page is addressed under a {base}/{minor}/ prefix.

// LegacyReleaseNotesURL addresses the notes page for one version inside a
// minor-version tree.
func (p ProductConfig) LegacyReleaseNotesURL(minor string, v semver.Version) string {
	return fmt.Sprintf("%s/%s/release-notes-%s.html", p.LegacyBaseURL, minor, v)
}

// LegacyReleaseNotesIndexURL addresses the per-minor index listing every
// released version.
func (p ProductConfig) LegacyReleaseNotesIndexURL(minor string) string {
	return fmt.Sprintf("%s/%s/es-release-notes.html", p.LegacyBaseURL, minor)
}

// LegacyBreakingChangesURL addresses the migration guide covering the
// target minor version.
func (p ProductConfig) LegacyBreakingChangesURL(minor, targetMinor string) string {
	return fmt.Sprintf("%s/%s/migrating-%s.html", p.LegacyBaseURL, minor, targetMinor)
}

// LegacyBreakingChangesIndexURL addresses the breaking-changes index page.
func (p ProductConfig) LegacyBreakingChangesIndexURL(minor string) string {
	return fmt.Sprintf("%s/%s/breaking-changes.html", p.LegacyBaseURL, minor)
}

// Modern site URL templates. The modern site serves one consolidated page
// per product plus dedicated auxiliary pages.

// ModernReleaseNotesURL addresses the consolidated release-notes page.
func (p ProductConfig) ModernReleaseNotesURL() string {
	return p.ModernBaseURL
}

// ModernBreakingChangesURL addresses the dedicated breaking-changes page.
func (p ProductConfig) ModernBreakingChangesURL() string {
	return p.ModernBaseURL + "/breaking-changes"
}

// ModernDeprecationsURL addresses the dedicated deprecations page.
func (p ProductConfig) ModernDeprecationsURL() string {
	return p.ModernBaseURL + "/deprecations"
}

// ModernKnownIssuesURL addresses the dedicated known-issues page.
func (p ProductConfig) ModernKnownIssuesURL() string {
	return p.ModernBaseURL + "/known-issues"
}
