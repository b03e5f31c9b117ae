package install

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/pacmjs/pacm/internal/manifest"
	"github.com/pacmjs/pacm/internal/pacmerr"
)

// runPostInstall executes destDir's scripts.postinstall under the ambient
// script host, with the working directory set to destDir, per §4.5.
// Failures here are non-fatal by default; the caller demotes them to a
// warning.
func runPostInstall(ctx context.Context, fsys afero.Fs, destDir string) error {
	m, err := manifest.Load(fsys, filepath.Join(destDir, "package.json"))
	if err != nil {
		return errors.Wrap(err, "reading package.json for postinstall")
	}
	script, ok := m.Scripts["postinstall"]
	if !ok || script == "" {
		return nil
	}
	return runScript(ctx, destDir, script)
}

// RunProjectPostInstall executes the project's own postinstall script
// after all packages are linked, per §4.5's closing step.
func RunProjectPostInstall(ctx context.Context, projectDir string, m *manifest.Manifest) error {
	script, ok := m.Scripts["postinstall"]
	if !ok || script == "" {
		return nil
	}
	return runScript(ctx, projectDir, script)
}

func runScript(ctx context.Context, dir, script string) error {
	shell, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}

	cmd := exec.CommandContext(ctx, shell, flag, script)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return &pacmerr.PostInstallError{Package: dir, Err: errors.Wrapf(err, "output: %s", out)}
	}
	return nil
}
