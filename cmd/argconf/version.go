package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version metadata, set with -ldflags during release builds.
var (
	Version   = "v0.1.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// versionString returns "argconf version v0.1.0 (commit c031b17, built ...)".
func versionString() string {
	return fmt.Sprintf("argconf version %s (commit %s, built %s)", Version, Commit, BuildTime)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show argconf version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
			fmt.Fprintf(cmd.OutOrStdout(), "go %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
