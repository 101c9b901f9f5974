package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	runtime "github.com/banzaicloud/logrus-runtime-formatter"
	"github.com/bombsimon/logrusr/v2"
	"github.com/google/uuid"
	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

// App holds attributes for the gcesync application
type App struct {
	// Viper loads configuration parameters.
	v *viper.Viper
	// gcesync configuration.
	Config *Configuration
	// TermCh is the channel to terminate the app based on a signal
	TermCh chan os.Signal
	// Logger is the app logger
	Logger *logrus.Logger
	// RunID identifies this invocation in logs and traces.
	RunID uuid.UUID
}

// New returns a new instance of the gcesync app
func New(cfgFile, logLevel string) (*App, error) {
	app := &App{
		v:      viper.New(),
		Config: &Configuration{},
		Logger: logrus.New(),
		TermCh: make(chan os.Signal, 1),
		RunID:  uuid.New(),
	}

	if err := app.LoadConfiguration(cfgFile); err != nil {
		return nil, err
	}

	// the command line flag takes precedence over the configuration file
	if logLevel != "" {
		app.Config.LogLevel = logLevel
	}

	switch app.Config.LogLevel {
	case model.LogLevelDebug:
		app.Logger.Level = logrus.DebugLevel
	case model.LogLevelTrace:
		app.Logger.Level = logrus.TraceLevel
	default:
		app.Logger.Level = logrus.InfoLevel
	}

	app.Logger.SetFormatter(
		&runtime.Formatter{ChildFormatter: &logrus.JSONFormatter{}},
	)

	// route otel internal logs through the app logger
	otel.SetLogger(logrusr.New(app.Logger))

	// register for SIGINT, SIGTERM
	signal.Notify(app.TermCh, syscall.SIGINT, syscall.SIGTERM)

	return app, nil
}

// Entry returns a logger entry carrying the run identifier.
func (a *App) Entry() *logrus.Entry {
	return a.Logger.WithField("run_id", a.RunID.String())
}

// CancelOnSignal returns a context that is cancelled when the app receives a termination signal.
func (a *App) CancelOnSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancelFunc := context.WithCancel(ctx)

	// routine listens for termination signal and cancels the context
	go func() {
		select {
		case <-a.TermCh:
			a.Logger.Info("got TERM signal, exiting...")
			cancelFunc()
		case <-ctx.Done():
		}
	}()

	return ctx, cancelFunc
}
