package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wzshiming/ctc"

	"github.com/metal-toolbox/gcesync/internal/model"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           model.AppName,
	Short:         "Sync GCE instances with the Cyberwatch asset inventory",
	Long:          "gcesync imports running GCE instances into Cyberwatch as remote accesses and deletes the Cyberwatch servers whose instance is gone.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError:%s %v\n", ctc.ForegroundRed, ctc.Reset, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file, YAML or an INI api.conf, parameters can also be set with GCESYNC_ env variables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "set logging level - info, debug, trace")
}
