package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	m, err := Load(fs, "/project/package.json")
	require.NoError(t, err)
	require.Empty(t, m.Dependencies)
	require.Empty(t, m.DevDependencies)
}

func TestRoundTripPreservesUnknownFields(t *testing.T) {
	src := `{
  "name": "demo",
  "version": "1.0.0",
  "license": "MIT",
  "dependencies": {"left-pad": "^1.0.0"},
  "engines": {"node": ">=18"}
}`
	m, err := Unmarshal([]byte(src))
	require.NoError(t, err)
	require.Equal(t, "demo", m.Name)
	require.Equal(t, "^1.0.0", m.Dependencies["left-pad"])

	m.SetDependency(false, "left-pad", "^2.0.0")

	out, err := Marshal(m)
	require.NoError(t, err)

	var roundTripped map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &roundTripped))
	require.Equal(t, "MIT", roundTripped["license"])
	require.Equal(t, map[string]interface{}{"node": ">=18"}, roundTripped["engines"])

	deps := roundTripped["dependencies"].(map[string]interface{})
	require.Equal(t, "^2.0.0", deps["left-pad"])
}

func TestMarshalElidesEmptyDependencyMaps(t *testing.T) {
	m := Empty()
	m.Name = "demo"
	out, err := Marshal(m)
	require.NoError(t, err)

	var roundTripped map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &roundTripped))
	_, hasDeps := roundTripped["dependencies"]
	require.False(t, hasDeps)
}

func TestSaveWritesAtomically(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/project/package.json"
	m := Empty()
	m.Name = "demo"
	m.SetDependency(false, "left-pad", "^1.0.0")

	require.NoError(t, Save(fs, path, m))

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	require.Contains(t, string(data), "left-pad")

	exists, err := afero.Exists(fs, path+".tmp")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSaveOnRealFilesystemRoundTrips(t *testing.T) {
	fs := afero.NewOsFs()
	path := filepath.Join(t.TempDir(), "package.json")
	m := Empty()
	m.Name = "demo"

	require.NoError(t, Save(fs, path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "demo")
}

func TestRemoveDependencyReportsPresence(t *testing.T) {
	m := Empty()
	m.SetDependency(false, "left-pad", "^1.0.0")
	require.True(t, m.RemoveDependency("left-pad"))
	require.False(t, m.RemoveDependency("left-pad"))
}
