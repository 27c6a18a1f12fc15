package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"echotrace/cmd/echotrace/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, build.String())
		if IsVerbose() {
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
			if configPath != "" {
				fmt.Fprintf(out, "  config: %s\n", configPath)
			} else {
				fmt.Fprintf(out, "  config: (defaults)\n")
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
