// Package install implements the Installer/Linker (§4.5): it materializes
// a ResolvedSet into node_modules, links bin shims, runs postinstall
// hooks, and writes the manifest and lockfile atomically. The bounded
// fan-out over resolved packages is grounded on turbo's async_cache.go
// worker pattern and cache.go's errgroup usage.
package install

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/pacmjs/pacm/internal/config"
	"github.com/pacmjs/pacm/internal/lockfile"
	"github.com/pacmjs/pacm/internal/manifest"
	"github.com/pacmjs/pacm/internal/pacmcache"
	"github.com/pacmjs/pacm/internal/pacmerr"
	"github.com/pacmjs/pacm/internal/progress"
	"github.com/pacmjs/pacm/internal/resolve"
)

// Report summarizes what an install/update operation did to a project.
type Report struct {
	Installed        []string
	AlreadyInstalled []string
	Warnings         []resolve.Warning
}

// Installer materializes a ResolvedSet onto disk.
type Installer struct {
	store  *pacmcache.Store
	logger hclog.Logger
	fs     afero.Fs
}

// New builds an Installer backed by store, reading and writing the
// manifest/lockfile through the real OS filesystem.
func New(store *pacmcache.Store, logger hclog.Logger) *Installer {
	return NewWithFs(store, logger, afero.NewOsFs())
}

// NewWithFs builds an Installer against a caller-supplied afero.Fs, so
// tests can substitute an in-memory filesystem.
func NewWithFs(store *pacmcache.Store, logger hclog.Logger, fs afero.Fs) *Installer {
	return &Installer{store: store, logger: logger, fs: fs}
}

// destDirName returns the node_modules directory name for a package name:
// scoped names (@scope/pkg) keep their "@scope/" prefix as a subdirectory.
func destDirName(paths config.ProjectPaths, name string) string {
	return filepath.Join(paths.NodeModulesPath, filepath.FromSlash(name))
}

// pickLastWriter partitions set.Packages by name, keeping only the last
// resolved-order entry per name (node_modules has one directory per name,
// so two different versions of the same name collide; §9 deliberately
// surfaces this as a warning rather than silently or fatally resolving it).
func pickLastWriter(set *resolve.ResolvedSet) ([]resolve.ResolvedPackage, []resolve.Warning) {
	byName := make(map[string]resolve.ResolvedPackage, len(set.Packages))
	versionsSeen := make(map[string]map[string]bool)
	order := make([]string, 0, len(set.Packages))

	for _, pkg := range set.Packages {
		if _, ok := byName[pkg.Name]; !ok {
			order = append(order, pkg.Name)
			versionsSeen[pkg.Name] = map[string]bool{}
		}
		byName[pkg.Name] = pkg
		versionsSeen[pkg.Name][pkg.Version] = true
	}

	var warnings []resolve.Warning
	for name, versions := range versionsSeen {
		if len(versions) > 1 {
			warnings = append(warnings, resolve.Warning{
				Tag:     "PACM_VERSION_COLLISION",
				Package: name,
				Message: "multiple versions resolved for this name; the last one resolved wins on disk",
			})
		}
	}

	out := make([]resolve.ResolvedPackage, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, warnings
}

// Install materializes set into projectDir/node_modules, updates the
// manifest and lockfile in memory, and writes both atomically, per §4.5.
func (i *Installer) Install(ctx context.Context, projectDir string, m *manifest.Manifest, lf *lockfile.Lockfile, set *resolve.ResolvedSet, force bool) (*Report, error) {
	paths := config.NewProjectPaths(projectDir)
	if err := paths.EnsureNodeModules(); err != nil {
		return nil, &pacmerr.FilesystemError{Op: "create node_modules", Err: err}
	}

	packages, collisionWarnings := pickLastWriter(set)

	report := &Report{Warnings: append([]resolve.Warning{}, set.Warnings...)}
	report.Warnings = append(report.Warnings, collisionWarnings...)

	var mu sync.Mutex
	var postInstallDirs []string

	bar := progress.NewBar(len(packages), "fetching")

	var g errgroup.Group
	g.SetLimit(pacmcache.MaxConcurrentFetches)

	for _, pkg := range packages {
		pkg := pkg
		g.Go(func() error {
			defer bar.Add(1)

			destDir := destDirName(paths, pkg.Name)

			if !force {
				if installed, version := readInstalledVersion(i.fs, destDir); installed && version == pkg.Version {
					mu.Lock()
					report.AlreadyInstalled = append(report.AlreadyInstalled, pkg.Name)
					mu.Unlock()
					return nil
				}
			}

			if err := i.store.EnsureExtracted(pkg.Name, pkg.Version, pkg.TarballURL, pkg.Integrity, destDir); err != nil {
				return err
			}

			if err := linkBinShims(paths, pkg); err != nil {
				return err
			}

			mu.Lock()
			report.Installed = append(report.Installed, pkg.Name)
			if _, hasPostinstall := pkg.Scripts["postinstall"]; hasPostinstall {
				postInstallDirs = append(postInstallDirs, destDir)
			}
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	bar.Finish()
	if err != nil {
		return nil, err
	}

	for _, dir := range postInstallDirs {
		if err := runPostInstall(ctx, i.fs, dir); err != nil {
			report.Warnings = append(report.Warnings, resolve.Warning{
				Tag:     "PACM_POSTINSTALL_ERROR",
				Package: filepath.Base(dir),
				Message: err.Error(),
			})
		}
	}

	if err := RunProjectPostInstall(ctx, projectDir, m); err != nil {
		report.Warnings = append(report.Warnings, resolve.Warning{
			Tag:     "PACM_POSTINSTALL_ERROR",
			Package: filepath.Base(projectDir),
			Message: err.Error(),
		})
	}

	for _, name := range set.DirectProd {
		if v := findVersion(packages, name); v != "" {
			m.SetDependency(false, name, v)
			lf.Set(false, name, lockfile.Entry{Version: v, Resolved: findTarball(packages, name), Integrity: findIntegrity(packages, name)})
		}
	}
	for _, name := range set.DirectDev {
		if v := findVersion(packages, name); v != "" {
			m.SetDependency(true, name, v)
			lf.Set(true, name, lockfile.Entry{Version: v, Resolved: findTarball(packages, name), Integrity: findIntegrity(packages, name)})
		}
	}

	if err := manifest.Save(i.fs, paths.ManifestPath, m); err != nil {
		return nil, &pacmerr.FilesystemError{Op: "write package.json", Err: err}
	}
	if err := lockfile.Save(i.fs, paths.LockfilePath, lf); err != nil {
		return nil, &pacmerr.FilesystemError{Op: "write pacm.lockp", Err: err}
	}

	return report, nil
}

func findVersion(packages []resolve.ResolvedPackage, name string) string {
	for _, p := range packages {
		if p.Name == name {
			return p.Version
		}
	}
	return ""
}

func findTarball(packages []resolve.ResolvedPackage, name string) string {
	for _, p := range packages {
		if p.Name == name {
			return p.TarballURL
		}
	}
	return ""
}

func findIntegrity(packages []resolve.ResolvedPackage, name string) string {
	for _, p := range packages {
		if p.Name == name {
			return p.Integrity
		}
	}
	return ""
}

// readInstalledVersion reads destDir/package.json's version field, if it
// exists, without going through the full manifest package (only the
// version field matters for the cache-hit short-circuit of §4.5 step 2).
func readInstalledVersion(fsys afero.Fs, destDir string) (found bool, version string) {
	data, err := afero.ReadFile(fsys, filepath.Join(destDir, "package.json"))
	if err != nil {
		return false, ""
	}
	var partial struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return false, ""
	}
	return true, partial.Version
}

// binShimBody is the POSIX shim script content: exec node against the
// installed file, forwarding all arguments.
const binShimBody = "#!/bin/sh\nexec node \"%s\" \"$@\"\n"

// binShimBodyWindows is the companion shim for the Windows platform.
const binShimBodyWindows = "@ECHO off\r\nnode \"%%~dp0%s\" %%*\r\n"

// linkBinShims creates projectDir/node_modules/.bin/<binName> for each bin
// entry the package declares, per §4.5 step 4.
func linkBinShims(paths config.ProjectPaths, pkg resolve.ResolvedPackage) error {
	if len(pkg.Bin) == 0 {
		return nil
	}
	binDir := filepath.Join(paths.NodeModulesPath, ".bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return &pacmerr.FilesystemError{Op: "create node_modules/.bin", Err: err}
	}

	destDir := destDirName(paths, pkg.Name)
	for binName, relTarget := range pkg.Bin {
		target := filepath.Join(destDir, filepath.FromSlash(relTarget))

		shimPath := filepath.Join(binDir, binName)
		body := []byte(fmt.Sprintf(binShimBody, target))
		if err := os.WriteFile(shimPath, body, 0o755); err != nil {
			return &pacmerr.FilesystemError{Op: "write bin shim " + binName, Err: err}
		}

		if runtime.GOOS == "windows" {
			cmdPath := shimPath + ".cmd"
			cmdBody := []byte(fmt.Sprintf(binShimBodyWindows, filepath.Base(target)))
			if err := os.WriteFile(cmdPath, cmdBody, 0o755); err != nil {
				return &pacmerr.FilesystemError{Op: "write windows bin shim " + binName, Err: err}
			}
		}
	}
	return nil
}
