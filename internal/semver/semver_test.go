package semver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pacmjs/pacm/internal/registry"
)

func meta(versions ...string) *registry.PackageMetadata {
	m := &registry.PackageMetadata{
		Name:     "pkg",
		DistTags: map[string]string{"latest": versions[len(versions)-1]},
		Versions: map[string]registry.VersionMetadata{},
	}
	for _, v := range versions {
		m.Versions[v] = registry.VersionMetadata{Name: "pkg", Version: v}
	}
	return m
}

func TestPickLatest(t *testing.T) {
	m := meta("1.0.0", "1.2.0", "2.0.0")
	v, err := Pick(m, "latest")
	require.NoError(t, err)
	require.Equal(t, "2.0.0", v)
}

func TestPickCaret(t *testing.T) {
	m := meta("1.0.0", "1.2.0", "1.9.9", "2.0.0")
	v, err := Pick(m, "^1.0.0")
	require.NoError(t, err)
	require.Equal(t, "1.9.9", v)
}

func TestPickNoMatch(t *testing.T) {
	m := meta("1.0.0")
	_, err := Pick(m, "^2.0.0")
	require.Error(t, err)
}

func TestPickPrereleaseExcludedUnlessRangeNamesIt(t *testing.T) {
	m := meta("1.0.0")
	m.Versions["1.1.0-beta.1"] = registry.VersionMetadata{Name: "pkg", Version: "1.1.0-beta.1"}

	v, err := Pick(m, "^1.0.0")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", v, "prerelease should not satisfy a plain range")

	v, err = Pick(m, "1.1.0-beta.1")
	require.NoError(t, err)
	require.Equal(t, "1.1.0-beta.1", v)
}

func TestPickMissingLatestTag(t *testing.T) {
	m := &registry.PackageMetadata{Name: "pkg", DistTags: map[string]string{}, Versions: map[string]registry.VersionMetadata{}}
	_, err := Pick(m, "latest")
	require.Error(t, err)
}
