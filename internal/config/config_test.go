package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pacmjs/pacm/internal/manifest"
	"github.com/pacmjs/pacm/internal/registry"
)

func TestResolveRegistryPrefersProjectNpmrc(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".npmrc"), []byte("registry = https://project.example.com\n"), 0o644))

	m := manifest.Empty()
	m.PublishConfig = &manifest.PublishConfig{Registry: "https://manifest.example.com"}

	require.Equal(t, "https://project.example.com", ResolveRegistry(dir, m))
}

func TestResolveRegistryFallsBackToManifestPublishConfig(t *testing.T) {
	dir := t.TempDir()

	m := manifest.Empty()
	m.PublishConfig = &manifest.PublishConfig{Registry: "https://manifest.example.com"}

	require.Equal(t, "https://manifest.example.com", ResolveRegistry(dir, m))
}

func TestResolveRegistryDefaultsToNpmjs(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, registry.DefaultRegistry, ResolveRegistry(dir, manifest.Empty()))
}
