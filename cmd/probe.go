package cmd

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metal-toolbox/gcesync/internal/app"
	"github.com/metal-toolbox/gcesync/internal/probe"
	"github.com/metal-toolbox/gcesync/internal/report"
)

// command probe flags
type probeFlags struct {
	address string
	output  string
}

var (
	probeFlagSet = &probeFlags{}
)

var cmdProbe = &cobra.Command{
	Use:   "probe --address <ip>",
	Short: "Check which remote access method a host accepts connections on",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProbe(cmd.Context())
	},
}

func runProbe(ctx context.Context) error {
	gcesync, err := app.New(cfgFile, logLevel)
	if err != nil {
		return err
	}

	if err := gcesync.Config.ValidateProbe(); err != nil {
		return err
	}

	renderer, err := report.New(os.Stdout, probeFlagSet.output, false)
	if err != nil {
		return err
	}

	ctx, cancelFunc := gcesync.CancelOnSignal(ctx)
	defer cancelFunc()

	prober, err := probe.New(&gcesync.Config.Probe, &gcesync.Config.Import, gcesync.Logger)
	if err != nil {
		return err
	}

	return renderer.Probe(probeFlagSet.address, prober.Classify(ctx, probeFlagSet.address))
}

func init() {
	cmdProbe.Flags().StringVar(&probeFlagSet.address, "address", "", "host address to probe")
	cmdProbe.Flags().StringVarP(&probeFlagSet.output, "output", "o", string(report.FormatText), "output format - "+strings.Join(report.Formats(), ", "))

	if err := cmdProbe.MarkFlagRequired("address"); err != nil {
		log.Fatal(err)
	}

	rootCmd.AddCommand(cmdProbe)
}
