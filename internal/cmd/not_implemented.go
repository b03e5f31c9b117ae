package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pacmjs/pacm/internal/pacmerr"
)

// newNotImplementedCommand builds a stub for an npm subcommand that falls
// outside §1's scope; it accepts the name so the help text still lists
// it, and fails with an error tagged PACM_NOT_IMPLEMENTED.
func newNotImplementedCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:                name,
		Short:              name + " is not implemented",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return &notImplementedError{name: name}
		},
	}
}

type notImplementedError struct{ name string }

func (e *notImplementedError) Error() string { return e.name + " is not implemented" }
func (e *notImplementedError) Tag() string   { return "PACM_NOT_IMPLEMENTED" }

var _ pacmerr.Tagged = (*notImplementedError)(nil)
