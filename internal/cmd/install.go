package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pacmjs/pacm/internal/cmdutil"
	"github.com/pacmjs/pacm/internal/install"
	"github.com/pacmjs/pacm/internal/lockfile"
	"github.com/pacmjs/pacm/internal/resolve"
)

func newInstallCommand(helper *cmdutil.Helper) *cobra.Command {
	c := &cobra.Command{
		Use:     "install [packages...]",
		Aliases: []string{"i", "add"},
		Short:   "resolve and install packages into node_modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(helper, args)
		},
	}
	return c
}

func runInstall(helper *cmdutil.Helper, specs []string) error {
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

	desired := specs
	if len(desired) == 0 {
		if !lf.IsEmpty() {
			desired = lf.DirectSpecs()
		} else {
			desired = base.Manifest.DirectSpecs()
		}
	}

	ctx := context.Background()
	resolver := resolve.New(base.Registry)

	spinner := startResolveSpinner()
	set, err := resolver.Resolve(ctx, desired, helper.Dev())
	spinner.Stop()
	if err != nil {
		return err
	}

	installer := install.NewWithFs(store, base.Logger, base.Fs)

	var report *install.Report
	err = withProjectLock(base.ProjectDir, func() error {
		report, err = installer.Install(ctx, base.ProjectDir, base.Manifest, lf, set, helper.Force())
		return err
	})
	if err != nil {
		return err
	}

	printReport(base, report)
	return nil
}
