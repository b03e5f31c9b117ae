package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pacmjs/pacm/internal/cmdutil"
	"github.com/pacmjs/pacm/internal/install"
	"github.com/pacmjs/pacm/internal/lockfile"
	"github.com/pacmjs/pacm/internal/resolve"
)

func newUpdateCommand(helper *cmdutil.Helper) *cobra.Command {
	return &cobra.Command{
		Use:   "update [packages...]",
		Short: "re-resolve and reinstall the desired dependency set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(helper, args)
		},
	}
}

func runUpdate(helper *cmdutil.Helper, names []string) error {
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
		return err
	}

	installer := install.NewWithFs(store, base.Logger, base.Fs)
	resolver := resolve.New(base.Registry)

	var report *install.Report
	err = withProjectLock(base.ProjectDir, func() error {
		report, err = installer.Update(context.Background(), resolver, base.ProjectDir, base.Manifest, lf, names, helper.Force())
		return err
	})
	if err != nil {
		return err
	}

	printReport(base, report)
	return nil
}
