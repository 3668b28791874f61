// Package semver implements the product version grammar used by the Elastic
// documentation sites: major.minor.patch with an optional alpha/beta/rc
// prerelease suffix. It is intentionally narrower than full semantic
// versioning; build metadata and arbitrary prerelease identifiers are
// rejected.
package semver

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// versionPattern accepts "8.16.1", "9.0.0-beta1" and "9.0.0.rc1". The
// prerelease separator may be "-", "." or absent, matching what appears in
// doc-site anchors and URLs.
var versionPattern = regexp.MustCompile(`(?i)^(\d+)\.(\d+)\.(\d+)(?:[-.]?(alpha|beta|rc)(\d+))?$`)

// prerelease ranks for ordering. Release versions rank above every
// prerelease tag.
const (
	rankAlpha = iota
	rankBeta
	rankRC
	rankRelease
)

// Version is an immutable semantic version. The zero value is "0.0.0".
// Versions are comparable; two Versions are equal exactly when their
// ordering tuples are equal, so Version can be used as a map key.
type Version struct {
	Major int
	Minor int
	Patch int
	// Prerelease is the normalized lowercase tag with numeric suffix
	// ("beta1"), or empty for a release version.
	Prerelease string
}

// New returns a release version.
func New(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// Parse parses a version string like "8.16.1" or "9.0.0-alpha1".
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Version{}, fmt.Errorf("invalid version format: %q", s)
	}

	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])

	v := Version{Major: major, Minor: minor, Patch: patch}
	if m[4] != "" {
		v.Prerelease = strings.ToLower(m[4]) + m[5]
	}
	return v, nil
}

// MustParse is like Parse but panics on error. Intended for constants and
// tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsPrerelease reports whether v carries a prerelease tag.
func (v Version) IsPrerelease() bool {
	return v.Prerelease != ""
}

// MajorMinor returns "8.17" style strings for URL construction.
func (v Version) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// String renders the canonical form, e.g. "9.0.0-beta1".
func (v Version) String() string {
	base := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		return base + "-" + v.Prerelease
	}
	return base
}

// preOrder decomposes the prerelease tag into (rank, numeric suffix).
func (v Version) preOrder() (int, int) {
	if v.Prerelease == "" {
		return rankRelease, 0
	}
	tag := v.Prerelease
	num := 0
	for i, r := range tag {
		if r >= '0' && r <= '9' {
			num, _ = strconv.Atoi(tag[i:])
			tag = tag[:i]
			break
		}
	}
	switch tag {
	case "alpha":
		return rankAlpha, num
	case "beta":
		return rankBeta, num
	case "rc":
		return rankRC, num
	}
	return rankAlpha, num
}

// Compare returns -1, 0 or +1. Prereleases of a version sort before the
// release; alpha < beta < rc, then by numeric suffix.
func (v Version) Compare(o Version) int {
	va := [5]int{v.Major, v.Minor, v.Patch, 0, 0}
	vb := [5]int{o.Major, o.Minor, o.Patch, 0, 0}
	va[3], va[4] = v.preOrder()
	vb[3], vb[4] = o.preOrder()

	for i := range va {
		switch {
		case va[i] < vb[i]:
			return -1
		case va[i] > vb[i]:
			return 1
		}
	}
	return 0
}

// Less reports whether v orders strictly before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// Equal reports ordering equality.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// Sort orders versions ascending in place.
func Sort(versions []Version) {
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Less(versions[j])
	})
}

// Dedup returns the distinct versions in vs, sorted ascending. The input
// slice is not modified.
func Dedup(vs []Version) []Version {
	seen := make(map[Version]struct{}, len(vs))
	out := make([]Version, 0, len(vs))
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	Sort(out)
	return out
}

// Range selects versions after an exclusive start up to an optional
// inclusive end.
type Range struct {
	Start Version
	End   *Version
}

// NewRange builds a Range. end may be nil for an open-ended range.
func NewRange(start Version, end *Version) Range {
	return Range{Start: start, End: end}
}

/// Contains reports whether v falls inside the range: v > start and, when an
// end is set, v <= end.
func (r Range) Contains(v Version) bool {
	if v.Compare(r.Start) <= 0 {
		return false
	}
	if r.End != nil && v.Compare(*r.End) > 0 {
		return false
	}
	return true
}

// FilterVersions returns the subset of vs inside the range, deduplicated
// and sorted ascending. The result is independent of input order.
func (r Range) FilterVersions(vs []Version) []Version {
	var filtered []Version
	for _, v := range vs {
		if r.Contains(v) {
			filtered = append(filtered, v)
		}
	}
	return Dedup(filtered)
}
