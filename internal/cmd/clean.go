package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pacmjs/pacm/internal/cmdutil"
	"github.com/pacmjs/pacm/internal/install"
)

func newCleanCommand(helper *cmdutil.Helper) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "remove the user-home tarball cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(helper)
		},
	}
}

func runClean(helper *cmdutil.Helper) error {
	base, err := helper.GetBase()
	if err != nil {
		return err
	}
	store, err := cmdutil.CacheStore(base.Logger)
	if err != nil {
		return err
	}

	installer := install.New(store, base.Logger)
	removed, err := installer.Clean()
	if err != nil {
		return err
	}
	if removed {
		base.UI.Success("cache cleaned")
	} else {
		base.UI.Info("cache was already empty")
	}
	return nil
}
