package cmd

import (
	"github.com/pacmjs/pacm/internal/cmdutil"
	"github.com/pacmjs/pacm/internal/filelock"
	"github.com/pacmjs/pacm/internal/install"
	"github.com/pacmjs/pacm/internal/progress"
)

func startResolveSpinner() *progress.Spinner {
	s := progress.NewSpinner("resolving")
	s.Start()
	return s
}

// withProjectLock runs fn while holding the advisory per-project lock
// (§5), guarding install/remove/update against a concurrent pacm
// invocation against the same project directory.
func withProjectLock(projectDir string, fn func() error) error {
	lock, err := filelock.Acquire(projectDir)
	if err != nil {
		return err
	}
	defer lock.Unlock()
	return fn()
}

func printReport(base *cmdutil.Base, report *install.Report) {
	for _, name := range report.Installed {
		base.UI.Success("installed %s", name)
	}
	for _, name := range report.AlreadyInstalled {
		base.UI.Info("%s is already up to date", name)
	}
	for _, w := range report.Warnings {
		base.UI.Warn(w.Tag, "%s: %s", w.Package, w.Message)
	}
}
