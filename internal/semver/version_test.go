package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr bool
	}{
		{
			name:  "plain release",
			input: "8.16.1",
			want:  Version{Major: 8, Minor: 16, Patch: 1},
		},
		{
			name:  "prerelease with dash",
			input: "9.0.0-beta1",
			want:  Version{Major: 9, Minor: 0, Patch: 0, Prerelease: "beta1"},
		},
		{
			name:  "prerelease with dot separator",
			input: "9.0.0.rc2",
			want:  Version{Major: 9, Minor: 0, Patch: 0, Prerelease: "rc2"},
		},
		{
			name:  "prerelease without separator",
			input: "9.0.0alpha1",
			want:  Version{Major: 9, Minor: 0, Patch: 0, Prerelease: "alpha1"},
		},
		{
			name:  "uppercase tag is normalized",
			input: "9.0.0-BETA1",
			want:  Version{Major: 9, Minor: 0, Patch: 0, Prerelease: "beta1"},
		},
		{
			name:  "surrounding whitespace",
			input: "  8.17.0  ",
			want:  Version{Major: 8, Minor: 17, Patch: 0},
		},
		{name: "missing patch", input: "8.16", wantErr: true},
		{name: "unknown tag", input: "9.0.0-preview1", wantErr: true},
		{name: "tag without number", input: "9.0.0-beta", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "release-notes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"0.0.0", "8.16.1", "9.0.0-alpha1", "9.0.0-beta12", "10.2.3-rc1"} {
		v, err := Parse(s)
		require.NoError(t, err)
		again, err := Parse(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, again, "round trip for %s", s)
	}

	// Non-canonical inputs canonicalize to the same value.
	v := MustParse("9.0.0.RC1")
	assert.Equal(t, "9.0.0-rc1", v.String())
	assert.Equal(t, v, MustParse(v.String()))
}

func TestCompare(t *testing.T) {
	ordered := []string{
		"7.17.9",
		"8.0.0-alpha1",
		"8.0.0-alpha2",
		"8.0.0-beta1",
		"8.0.0-rc1",
		"8.0.0-rc2",
		"8.0.0",
		"8.0.1",
		"8.1.0",
		"9.0.0-beta1",
		"9.0.0",
	}

	for i, a := range ordered {
		for j, b := range ordered {
			va, vb := MustParse(a), MustParse(b)
			switch {
			case i < j:
				assert.Equal(t, -1, va.Compare(vb), "%s < %s", a, b)
				assert.True(t, va.Less(vb))
			case i > j:
				assert.Equal(t, 1, va.Compare(vb), "%s > %s", a, b)
			default:
				assert.Equal(t, 0, va.Compare(vb))
				assert.True(t, va.Equal(vb))
			}
		}
	}
}

func TestVersionHelpers(t *testing.T) {
	assert.True(t, MustParse("9.0.0-beta1").IsPrerelease())
	assert.False(t, MustParse("9.0.0").IsPrerelease())
	assert.Equal(t, "8.17", MustParse("8.17.3").MajorMinor())
}

func TestDedup(t *testing.T) {
	vs := []Version{
		MustParse("9.1.0"),
		MustParse("8.17.0"),
		MustParse("9.1.0"),
		MustParse("8.17.0"),
		MustParse("9.0.0-beta1"),
	}
	got := Dedup(vs)
	require.Len(t, got, 3)
	assert.Equal(t, MustParse("8.17.0"), got[0])
	assert.Equal(t, MustParse("9.0.0-beta1"), got[1])
	assert.Equal(t, MustParse("9.1.0"), got[2])
}

func TestRangeContains(t *testing.T) {
	end := MustParse("9.1.0")
	r := NewRange(MustParse("9.0.0"), &end)

	assert.False(t, r.Contains(MustParse("9.0.0")), "start is exclusive")
	assert.True(t, r.Contains(MustParse("9.0.1")))
	assert.True(t, r.Contains(MustParse("9.1.0")), "end is inclusive")
	assert.False(t, r.Contains(MustParse("9.1.1")))
	assert.False(t, r.Contains(MustParse("8.19.2")))

	open := NewRange(MustParse("9.0.0"), nil)
	assert.True(t, open.Contains(MustParse("99.0.0")))
}

func TestFilterVersions(t *testing.T) {
	available := []Version{
		MustParse("9.2.0-beta1"),
		MustParse("9.1.0"),
		MustParse("8.19.0"),
		MustParse("9.0.0"),
		MustParse("9.1.0"), // duplicate
	}

	t.Run("open ended excludes start", func(t *testing.T) {
		r := NewRange(MustParse("9.0.0"), nil)
		got := r.FilterVersions(available)
		require.Len(t, got, 2)
		assert.Equal(t, MustParse("9.1.0"), got[0])
		assert.Equal(t, MustParse("9.2.0-beta1"), got[1])
	})

	t.Run("bounded includes end", func(t *testing.T) {
		end := MustParse("9.1.0")
		r := NewRange(MustParse("8.19.0"), &end)
		got := r.FilterVersions(available)
		require.Len(t, got, 2)
		assert.Equal(t, MustParse("9.0.0"), got[0])
		assert.Equal(t, MustParse("9.1.0"), got[1])
	})

	t.Run("idempotent and order independent", func(t *testing.T) {
		r := NewRange(MustParse("8.0.0"), nil)
		once := r.FilterVersions(available)
		twice := r.FilterVersions(once)
		assert.Equal(t, once, twice)

		reversed := make([]Version, 0, len(available))
		for i := len(available) - 1; i >= 0; i-- {
			reversed = append(reversed, available[i])
		}
		assert.Equal(t, once, r.FilterVersions(reversed))
	})

	t.Run("empty result", func(t *testing.T) {
		r := NewRange(MustParse("99.0.0"), nil)
		assert.Empty(t, r.FilterVersions(available))
	})
}
