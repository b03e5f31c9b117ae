package lockfile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	lf, err := Load(fs, "/project/pacm.lockp")
	require.NoError(t, err)
	require.True(t, lf.IsEmpty())
}

func TestLoadWhitespaceOnlyFileReturnsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/project/pacm.lockp"
	require.NoError(t, afero.WriteFile(fs, path, []byte("  \n\t"), 0o644))

	lf, err := Load(fs, path)
	require.NoError(t, err)
	require.True(t, lf.IsEmpty())
}

func TestSetAndRemoveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	lf := Empty()
	lf.Set(false, "left-pad", Entry{Version: "1.0.0", Resolved: "https://example.com/left-pad-1.0.0.tgz", Integrity: "sha512-a"})
	lf.Set(true, "mocha", Entry{Version: "10.0.0", Resolved: "https://example.com/mocha-10.0.0.tgz", Integrity: "sha512-b"})

	path := "/project/pacm.lockp"
	require.NoError(t, Save(fs, path, lf))

	reloaded, err := Load(fs, path)
	require.NoError(t, err)
	require.Equal(t, "1.0.0", reloaded.Dependencies["left-pad"].Version)
	require.Equal(t, "10.0.0", reloaded.DevDependencies["mocha"].Version)

	require.True(t, reloaded.Remove("left-pad"))
	require.False(t, reloaded.Remove("left-pad"))
}

func TestMarshalElidesEmptyMaps(t *testing.T) {
	data, err := Marshal(Empty())
	require.NoError(t, err)
	require.NotContains(t, string(data), `"dependencies"`)
	require.NotContains(t, string(data), `"devDependencies"`)
}
