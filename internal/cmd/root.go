// Package cmd holds pacm's cobra command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pacmjs/pacm/internal/cmdutil"
)

// NewRootCommand builds the pacm root command, wired with the install,
// remove, update, list, and clean subcommands plus not-yet-implemented
// stubs for the rest of npm's common surface, per §6.
func NewRootCommand(helper *cmdutil.Helper) *cobra.Command {
	root := &cobra.Command{
		Use:           "pacm",
		Short:         "pacm is an npm-compatible package manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       helper.Version,
	}
	root.PersistentFlags().SortFlags = false
	helper.AddFlags(root.PersistentFlags())

	root.AddCommand(
		newInstallCommand(helper),
		newRemoveCommand(helper),
		newUpdateCommand(helper),
		newListCommand(helper),
		newCleanCommand(helper),
	)
	for _, name := range []string{"init", "run", "publish", "search", "info", "self-update"} {
		root.AddCommand(newNotImplementedCommand(name))
	}

	return root
}
