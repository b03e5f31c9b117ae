// Package config discovers the registry base URL from project and user
// .npmrc files, following npm's own resolution order (§4.1/§6). Parsing
// is grounded on osv-scalibr's npmrc.go, trimmed to the single "registry ="
// line pacm actually reads — pacm doesn't need npmrc's auth/scope machinery.
package config

import (
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/ini.v1"

	"github.com/pacmjs/pacm/internal/manifest"
	"github.com/pacmjs/pacm/internal/registry"
)

var loadOptions = ini.LoadOptions{
	Loose:              true, // missing files are fine
	KeyValueDelimiters: "=",
}

// registryFromNpmrc reads the top-level "registry" key from path, if the
// file exists and sets one.
func registryFromNpmrc(path string) string {
	cfg, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return ""
	}
	return cfg.Section("").Key("registry").String()
}

// ResolveRegistry implements the priority chain from §4.1/§6: project
// .npmrc, then user .npmrc, then the manifest's publishConfig.registry,
// then registry.DefaultRegistry.
func ResolveRegistry(projectDir string, m *manifest.Manifest) string {
	if url := registryFromNpmrc(filepath.Join(projectDir, ".npmrc")); url != "" {
		return url
	}

	if home, err := homedir.Dir(); err == nil {
		if url := registryFromNpmrc(filepath.Join(home, ".npmrc")); url != "" {
			return url
		}
	}

	if m != nil {
		if url := m.RegistryURL(); url != "" {
			return url
		}
	}

	return registry.DefaultRegistry
}

// CacheRoot returns the default tarball cache directory, {HOME}/.pacm-cache.
func CacheRoot() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pacm-cache"), nil
}

// ProjectPaths bundles the file paths an operation reads and writes,
// resolved relative to a project directory.
type ProjectPaths struct {
	ManifestPath     string
	LockfilePath     string
	NodeModulesPath  string
	ProjectNpmrcPath string
}

// NewProjectPaths derives the standard file layout under projectDir.
func NewProjectPaths(projectDir string) ProjectPaths {
	return ProjectPaths{
		ManifestPath:     filepath.Join(projectDir, "package.json"),
		LockfilePath:     filepath.Join(projectDir, "pacm.lockp"),
		NodeModulesPath:  filepath.Join(projectDir, "node_modules"),
		ProjectNpmrcPath: filepath.Join(projectDir, ".npmrc"),
	}
}

// EnsureNodeModules creates the node_modules directory if it doesn't exist.
func (p ProjectPaths) EnsureNodeModules() error {
	return os.MkdirAll(p.NodeModulesPath, 0o755)
}
