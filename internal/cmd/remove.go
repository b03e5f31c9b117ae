package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pacmjs/pacm/internal/cmdutil"
	"github.com/pacmjs/pacm/internal/install"
	"github.com/pacmjs/pacm/internal/lockfile"
	"github.com/pacmjs/pacm/internal/pacmerr"
)

func newRemoveCommand(helper *cmdutil.Helper) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <packages...>",
		Aliases: []string{"rm", "uninstall"},
		Short:   "remove packages and their exclusive dependency subtree",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(helper, args)
		},
	}
}

func runRemove(helper *cmdutil.Helper, names []string) error {
	base, err := helper.GetBase()
	if err != nil {
		return err
	}
	store, err := cmdutil.CacheStore(base.Logger)
	if err != nil {
		return err
	}

	lf, err := lockfile.Load(base.Fs, base.Paths.LockfilePath)
	if err != nil {
		return &pacmerr.FilesystemError{Op: "read pacm.lockp", Err: err}
	}

	installer := install.NewWithFs(store, base.Logger, base.Fs)

	var report *install.Report
	err = withProjectLock(base.ProjectDir, func() error {
		report, err = installer.Remove(context.Background(), base.Registry, base.ProjectDir, base.Manifest, lf, names)
		return err
	})
	if err != nil {
		return err
	}

	for _, name := range report.Installed {
		base.UI.Success("removed %s", name)
	}
	for _, w := range report.Warnings {
		base.UI.Warn(w.Tag, "%s: %s", w.Package, w.Message)
	}
	return nil
}
