package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metal-toolbox/gcesync/internal/app"
	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/metal-toolbox/gcesync/internal/report"
	"github.com/metal-toolbox/gcesync/internal/store"
)

var cmdGet = &cobra.Command{
	Use:   "get",
	Short: "get resources [instances|remote-accesses|servers]",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// command get flags
type getFlags struct {
	source string
	output string
}

var (
	getFlagSet = &getFlags{}
)

var cmdGetInstances = &cobra.Command{
	Use:   "instances",
	Short: "List the instances of the inventory source",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return getInstances(cmd.Context())
	},
}

var cmdGetRemoteAccesses = &cobra.Command{
	Use:   "remote-accesses",
	Short: "List the Cyberwatch remote accesses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return getFromStore(cmd.Context(), func(ctx context.Context, repository store.Repository, renderer *report.Renderer) error {
			remoteAccesses, err := repository.RemoteAccesses(ctx)
			if err != nil {
				return err
			}

			return renderer.RemoteAccesses(remoteAccesses)
		})
	},
}

var cmdGetServers = &cobra.Command{
	Use:   "servers",
	Short: "List the Cyberwatch servers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return getFromStore(cmd.Context(), func(ctx context.Context, repository store.Repository, renderer *report.Renderer) error {
			servers, err := repository.Servers(ctx)
			if err != nil {
				return err
			}

			return renderer.Servers(servers)
		})
	},
}

func getInstances(ctx context.Context) error {
	gcesync, err := app.New(cfgFile, logLevel)
	if err != nil {
		return err
	}

	if model.SourceKind(getFlagSet.source) == model.SourceGCE {
		if err := gcesync.Config.ValidateGCE(); err != nil {
			return err
		}
	}

	renderer, err := report.New(os.Stdout, getFlagSet.output, false)
	if err != nil {
		return err
	}

	ctx, cancelFunc := gcesync.CancelOnSignal(ctx)
	defer cancelFunc()

	provider, err := initProvider(ctx, gcesync, getFlagSet.source)
	if err != nil {
		return err
	}

	instances, err := provider.ListInstances(ctx)
	if err != nil {
		return err
	}

	return renderer.Instances(instances)
}

func getFromStore(ctx context.Context, fn func(context.Context, store.Repository, *report.Renderer) error) error {
	gcesync, err := app.New(cfgFile, logLevel)
	if err != nil {
		return err
	}

	if err := gcesync.Config.ValidateCyberwatch(); err != nil {
		return err
	}

	renderer, err := report.New(os.Stdout, getFlagSet.output, false)
	if err != nil {
		return err
	}

	ctx, cancelFunc := gcesync.CancelOnSignal(ctx)
	defer cancelFunc()

	repository, err := store.NewCyberwatchStore(&gcesync.Config.Cyberwatch, gcesync.Logger)
	if err != nil {
		return err
	}

	return fn(ctx, repository, renderer)
}

func init() {
	rootCmd.AddCommand(cmdGet)

	cmdGet.PersistentFlags().StringVarP(&getFlagSet.output, "output", "o", string(report.FormatText), "output format - "+strings.Join(report.Formats(), ", "))
	cmdGetInstances.Flags().StringVar(&getFlagSet.source, "source", model.SourceGCE, "instance inventory source - 'gce' or an inventory file with a .yml/.yaml extension")

	cmdGet.AddCommand(cmdGetInstances)
	cmdGet.AddCommand(cmdGetRemoteAccesses)
	cmdGet.AddCommand(cmdGetServers)
}
