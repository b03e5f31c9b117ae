package install

import (
	"context"
	"os"

	"github.com/spf13/afero"

	"github.com/pacmjs/pacm/internal/config"
	"github.com/pacmjs/pacm/internal/lockfile"
	"github.com/pacmjs/pacm/internal/manifest"
	"github.com/pacmjs/pacm/internal/pacmerr"
	"github.com/pacmjs/pacm/internal/resolve"
)

// Remove implements §4.7: for each name, record an unknown warning if it
// was in neither the manifest nor the lockfile, else fetch its metadata to
// walk `dependencies`
// transitively, deleting node_modules/<name> for the whole subtree.
func (i *Installer) Remove(ctx context.Context, fetcher resolve.MetadataFetcher, projectDir string, m *manifest.Manifest, lf *lockfile.Lockfile, names []string) (*Report, error) {
	paths := config.NewProjectPaths(projectDir)
	report := &Report{}

	for _, name := range names {
		entry, hadLockEntry := lookupEntry(lf, name)
		removedFromManifest := m.RemoveDependency(name)
		lf.Remove(name)

		if !removedFromManifest && !hadLockEntry {
			report.Warnings = append(report.Warnings, resolve.Warning{
				Tag:     "PACM_UNKNOWN_PACKAGE",
				Package: name,
				Message: "not present in the manifest",
			})
			continue
		}

		if err := removeTree(ctx, i.fs, fetcher, paths, name, entry.Version, map[string]bool{}); err != nil {
			return nil, err
		}
		report.Installed = append(report.Installed, name) // reused as "removed" list
	}

	if empty, err := dirIsEmpty(paths.NodeModulesPath); err == nil && empty {
		_ = os.Remove(paths.NodeModulesPath)
	}

	if err := manifest.Save(i.fs, paths.ManifestPath, m); err != nil {
		return nil, &pacmerr.FilesystemError{Op: "write package.json", Err: err}
	}
	if err := lockfile.Save(i.fs, paths.LockfilePath, lf); err != nil {
		return nil, &pacmerr.FilesystemError{Op: "write pacm.lockp", Err: err}
	}
	return report, nil
}

func lookupEntry(lf *lockfile.Lockfile, name string) (lockfile.Entry, bool) {
	if e, ok := lf.Dependencies[name]; ok {
		return e, true
	}
	if e, ok := lf.DevDependencies[name]; ok {
		return e, true
	}
	return lockfile.Entry{}, false
}

// removeTree deletes node_modules/<name> and recurses into the
// dependencies declared by its published metadata, per §4.7. A missing or
// unresolvable version still removes the directory; it just can't walk
// further. visited guards against dependency cycles.
func removeTree(ctx context.Context, fsys afero.Fs, fetcher resolve.MetadataFetcher, paths config.ProjectPaths, name, version string, visited map[string]bool) error {
	if visited[name] {
		return nil
	}
	visited[name] = true

	destDir := destDirName(paths, name)
	if version == "" {
		if _, installedVersion := readInstalledVersion(fsys, destDir); installedVersion != "" {
			version = installedVersion
		}
	}

	if err := os.RemoveAll(destDir); err != nil {
		return &pacmerr.FilesystemError{Op: "remove " + name, Err: err}
	}

	if fetcher == nil {
		return nil
	}
	meta, err := fetcher.FetchMetadata(ctx, name)
	if err != nil {
		return nil //nolint:nilerr // best-effort transitive walk; the directory is already gone
	}
	vm, ok := meta.Versions[version]
	if !ok {
		return nil
	}

	for dep := range vm.Dependencies {
		if err := removeTree(ctx, fsys, fetcher, paths, dep, "", visited); err != nil {
			return err
		}
	}
	return nil
}

func dirIsEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
