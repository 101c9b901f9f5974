package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metal-toolbox/gcesync/internal/version"
)

var cmdVersion = &cobra.Command{
	Use:   "version",
	Short: "Print gcesync version along with dependency information.",
	Run: func(_ *cobra.Command, _ []string) {
		v := version.Current()
		fmt.Printf(
			"commit: %s\nbranch: %s\ngit summary: %s\nbuildDate: %s\nversion: %s\nGo version: %s\nCompute API version: %s\n",
			v.GitCommit, v.GitBranch, v.GitSummary, v.BuildDate, v.AppVersion, v.GoVersion, v.ComputeAPIVersion)
	},
}

func init() {
	rootCmd.AddCommand(cmdVersion)
}
