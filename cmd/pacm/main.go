// Command pacm is an npm-compatible package manager.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pacmjs/pacm/internal/cmd"
	"github.com/pacmjs/pacm/internal/cmdutil"
	"github.com/pacmjs/pacm/internal/pacmerr"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	helper := cmdutil.NewHelper(version)
	root := cmd.NewRootCommand(helper)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		printError(err)
		return 1
	}
	return 0
}

func printError(err error) {
	var tagged pacmerr.Tagged
	if errors.As(err, &tagged) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", tagged.Tag(), tagged.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
