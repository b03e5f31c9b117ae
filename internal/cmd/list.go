package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/pacmjs/pacm/internal/cmdutil"
)

func newListCommand(helper *cmdutil.Helper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list the direct dependencies recorded in the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(helper)
		},
	}
}

func runList(helper *cmdutil.Helper) error {
	base, err := helper.GetBase()
	if err != nil {
		return err
	}

	names := base.Manifest.DirectNames()
	sort.Strings(names)

	for _, name := range names {
		if v, ok := base.Manifest.Dependencies[name]; ok {
			base.UI.Info("%s@%s", name, v)
			continue
		}
		base.UI.Info("%s@%s (dev)", name, base.Manifest.DevDependencies[name])
	}
	return nil
}
