// Package cmdutil builds the configuration shared by every pacm
// subcommand — logger, UI, project root, registry client, cache store —
// from cobra/pflag flags, grounded on turbo's cmdutil.go Helper.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/pacmjs/pacm/internal/config"
	"github.com/pacmjs/pacm/internal/fspath"
	"github.com/pacmjs/pacm/internal/manifest"
	"github.com/pacmjs/pacm/internal/pacmcache"
	"github.com/pacmjs/pacm/internal/registry"
	"github.com/pacmjs/pacm/internal/ui"
)

const _envLogLevel = "PACM_LOG_LEVEL"

// Helper holds configuration driven by the root command's persistent
// flags and assembles it into the dependencies a subcommand needs.
type Helper struct {
	Version string

	verbosity int
	force     bool
	devFlag   bool
	rawCwd    string
}

// NewHelper builds a Helper stamped with the running pacm version.
func NewHelper(version string) *Helper {
	return &Helper{Version: version}
}

// AddFlags registers the global flags shared by every subcommand.
func (h *Helper) AddFlags(flags *pflag.FlagSet) {
	flags.CountVarP(&h.verbosity, "verbose", "v", "increase logging verbosity")
	flags.BoolVarP(&h.force, "force", "f", false, "bypass the already-installed short-circuit")
	flags.BoolVarP(&h.devFlag, "save-dev", "D", false, "save as a development dependency")
	flags.StringVar(&h.rawCwd, "cwd", "", "the project directory to operate in (default: current directory)")
}

// Force reports the --force flag's value.
func (h *Helper) Force() bool { return h.force }

// Dev reports the --save-dev flag's value.
func (h *Helper) Dev() bool { return h.devFlag }

func (h *Helper) logger() hclog.Logger {
	level := hclog.NoLevel
	switch {
	case h.verbosity >= 3:
		level = hclog.Trace
	case h.verbosity == 2:
		level = hclog.Debug
	case h.verbosity == 1:
		level = hclog.Info
	default:
		if v := os.Getenv(_envLogLevel); v != "" {
			if parsed := hclog.LevelFromString(v); parsed != hclog.NoLevel {
				level = parsed
			}
		}
	}

	var output io.Writer = io.Discard
	color := hclog.ColorOff
	if level != hclog.NoLevel {
		output = os.Stderr
		color = hclog.AutoColor
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "pacm",
		Level:  level,
		Color:  color,
		Output: output,
	})
}

// ProjectDir resolves the --cwd flag against the process's actual working
// directory, following symlinks so repeated runs compare equal.
func (h *Helper) ProjectDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := cwd
	if h.rawCwd != "" {
		dir = h.rawCwd
	}
	abs, err := fspath.New(dir)
	if err != nil {
		return "", err
	}
	resolved, err := abs.EvalSymlinks()
	if err != nil {
		return "", err
	}
	return resolved.ToString(), nil
}

// Base bundles what every subcommand needs to run: UI, logger, project
// paths, loaded manifest, registry client and filesystem. The lockfile and
// the cache store are loaded separately by the subcommands that use them.
type Base struct {
	UI         *ui.UI
	Logger     hclog.Logger
	ProjectDir string
	Paths      config.ProjectPaths
	Manifest   *manifest.Manifest
	Registry   *registry.Client
	Fs         afero.Fs
}

// GetBase loads the manifest and assembles the shared dependencies for a
// subcommand invocation.
func (h *Helper) GetBase() (*Base, error) {
	projectDir, err := h.ProjectDir()
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}

	paths := config.NewProjectPaths(projectDir)
	fs := afero.NewOsFs()
	m, err := manifest.Load(fs, paths.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading package.json: %w", err)
	}

	logger := h.logger()
	registryURL := config.ResolveRegistry(projectDir, m)

	return &Base{
		UI:         ui.New(),
		Logger:     logger,
		ProjectDir: projectDir,
		Paths:      paths,
		Manifest:   m,
		Registry:   registry.NewClient(registryURL, logger),
		Fs:         fs,
	}, nil
}

// CacheStore builds the tarball cache store rooted at the default cache
// directory, lazily indexing any existing contents.
func CacheStore(logger hclog.Logger) (*pacmcache.Store, error) {
	root, err := config.CacheRoot()
	if err != nil {
		return nil, err
	}
	store := pacmcache.New(root, logger)
	if err := store.BuildIndex(); err != nil {
		return nil, err
	}
	return store, nil
}
