package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/equinix-labs/otel-init-go/otelinit"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/metal-toolbox/gcesync/internal/app"
	"github.com/metal-toolbox/gcesync/internal/cloud"
	"github.com/metal-toolbox/gcesync/internal/metrics"
	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/metal-toolbox/gcesync/internal/probe"
	"github.com/metal-toolbox/gcesync/internal/reconcile"
	"github.com/metal-toolbox/gcesync/internal/report"
	"github.com/metal-toolbox/gcesync/internal/store"
	"github.com/metal-toolbox/gcesync/internal/version"
)

var cmdSync = &cobra.Command{
	Use:   "sync [--import_only|--delete_only|--all]",
	Short: "Import running GCE instances into Cyberwatch and delete the servers of removed instances",
	Long: `Lists the GCE instances and the Cyberwatch remote accesses and servers, then reports
the instances to import and the servers to delete. Without a mode flag nothing is changed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd.Context())
	},
}

// sync command flags
var (
	importOnly bool
	deleteOnly bool
	syncAll    bool
	source     string
	output     string
	noColor    bool
)

var (
	ErrInventorySource = errors.New("inventory source error")
)

func runSync(ctx context.Context) error {
	gcesync, err := app.New(cfgFile, logLevel)
	if err != nil {
		return err
	}

	mode := model.ModeFromFlags(importOnly, deleteOnly, syncAll)

	if err := validateSync(gcesync.Config, mode, source); err != nil {
		return err
	}

	renderer, err := report.New(os.Stdout, output, !noColor)
	if err != nil {
		return err
	}

	ctx, otelShutdown := otelinit.InitOpenTelemetry(ctx, model.AppName)
	defer otelShutdown(ctx)

	ctx, cancelFunc := gcesync.CancelOnSignal(ctx)
	defer cancelFunc()

	version.ExportBuildInfoMetric()

	logger := gcesync.Entry()
	logger.WithFields(logrus.Fields{"mode": mode, "source": source}).Info("sync started")

	startTS := time.Now()

	defer func() {
		metrics.RunTimeSummary.WithLabelValues(string(mode)).Observe(time.Since(startTS).Seconds())

		if err := metrics.WriteTextfile(gcesync.Config.Metrics.Textfile); err != nil {
			logger.WithError(err).Warn("metrics not written")
		}
	}()

	provider, err := initProvider(ctx, gcesync, source)
	if err != nil {
		return err
	}

	repository, err := store.NewCyberwatchStore(&gcesync.Config.Cyberwatch, gcesync.Logger)
	if err != nil {
		return err
	}

	var (
		templates  *reconcile.Templates
		classifier probe.Classifier
	)

	if mode.PlansImports() {
		templates, err = reconcile.LoadTemplates(&gcesync.Config.Import)
		if err != nil {
			return err
		}

		classifier, err = probe.New(&gcesync.Config.Probe, &gcesync.Config.Import, gcesync.Logger)
		if err != nil {
			return err
		}
	}

	reconciler := reconcile.New(
		provider,
		repository,
		classifier,
		templates,
		gcesync.Config.Import.ManagedGroup,
		logger,
	)

	plan, err := reconciler.Plan(ctx, mode)
	if err != nil {
		return err
	}

	applyErr := reconciler.Apply(ctx, plan)

	// the report carries the status of each item up to a failure
	if err := renderer.Plan(plan); err != nil {
		return err
	}

	if applyErr != nil {
		return applyErr
	}

	logger.WithField("elapsed", time.Since(startTS).String()).Info("sync completed")

	return nil
}

// validateSync checks the configuration sections the mode and source depend on.
func validateSync(cfg *app.Configuration, mode model.Mode, source string) error {
	var merr *multierror.Error

	if err := cfg.ValidateCyberwatch(); err != nil {
		merr = multierror.Append(merr, err)
	}

	if model.SourceKind(source) == model.SourceGCE {
		if err := cfg.ValidateGCE(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	if mode.PlansImports() {
		if err := cfg.ValidateImport(); err != nil {
			merr = multierror.Append(merr, err)
		}

		if err := cfg.ValidateProbe(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	return merr.ErrorOrNil()
}

func initProvider(ctx context.Context, gcesync *app.App, source string) (cloud.Provider, error) {
	switch model.SourceKind(source) {
	// from CLI flags
	case model.SourceYaml:
		return cloud.NewYamlProvider(source, gcesync.Logger), nil
	case model.SourceGCE:
		return cloud.NewGCE(ctx, &gcesync.Config.GCE, gcesync.Logger)
	}

	return nil, errors.Wrap(ErrInventorySource, "expected 'gce' or an inventory file with a .yml/.yaml extension, got: "+source)
}

// normalizeModeFlags accepts the hyphenated spelling of the mode flags.
func normalizeModeFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "import-only", "delete-only":
		name = strings.ReplaceAll(name, "-", "_")
	}

	return pflag.NormalizedName(name)
}

func init() {
	cmdSync.Flags().SetNormalizeFunc(normalizeModeFlags)

	cmdSync.Flags().BoolVar(&importOnly, "import_only", false, "import the running GCE instances missing from Cyberwatch")
	cmdSync.Flags().BoolVar(&deleteOnly, "delete_only", false, "delete the Cyberwatch servers whose GCE instance is gone")
	cmdSync.Flags().BoolVarP(&syncAll, "all", "a", false, "import and delete")
	cmdSync.Flags().StringVar(&source, "source", model.SourceGCE, "instance inventory source - 'gce' or an inventory file with a .yml/.yaml extension")
	cmdSync.Flags().StringVarP(&output, "output", "o", string(report.FormatText), "report format - "+strings.Join(report.Formats(), ", "))
	cmdSync.Flags().BoolVar(&noColor, "no-color", false, "disable colored report banners")

	cmdSync.MarkFlagsMutuallyExclusive("import_only", "delete_only", "all")

	rootCmd.AddCommand(cmdSync)
}
