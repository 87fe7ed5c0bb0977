// Command signalz reads and watches JSON or YAML state documents through
// named selectors.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "signalz",
		Short: "Inspect and watch reactive state documents",
		Long: `signalz loads a JSON or YAML document into a Signal and reads it
through dot-delimited paths.

  signalz get state.yaml user.name
  signalz watch state.yaml --select name=user.name --select cart=cart.items

Defaults come from SIGNALZ_* environment variables and a .env file in
the working directory, if present. Flags win over both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		getCmd(),
		watchCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "signalz %s (%s)\n", version, commit)
		},
	}
}
