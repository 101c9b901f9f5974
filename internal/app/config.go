package app

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jeremywohl/flatten"
	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	defaultProbeTimeout = 5 * time.Second
	defaultPageSize     = 100
	defaultRetryMax     = 3
	defaultNodeID       = 1
)

var (
	ErrConfig = errors.New("configuration error")
)

// Configuration holds application configuration read from a YAML/INI file or set by env variables.
//
// nolint:govet // prefer readability over field alignment optimization for this case.
type Configuration struct {
	// LogLevel is the app verbose logging level.
	// one of - info, debug, trace
	LogLevel string `mapstructure:"log_level"`

	// GCE holds the compute engine inventory source parameters.
	GCE GCEOptions `mapstructure:"gce"`

	// Cyberwatch holds the asset store API client parameters.
	Cyberwatch CyberwatchOptions `mapstructure:"cyberwatch"`

	// Import holds the parameters applied to each remote access created.
	Import ImportOptions `mapstructure:"import"`

	Probe   ProbeOptions   `mapstructure:"probe"`
	Metrics MetricsOptions `mapstructure:"metrics"`
}

// GCEOptions defines the compute engine API client configuration.
type GCEOptions struct {
	// Project defaults to the project of the service account credentials when empty.
	Project         string `mapstructure:"project"`
	CredentialsFile string `mapstructure:"credentials_file"`
	// Zones limits the instance listing to the given zones, all zones are listed when empty.
	Zones []string `mapstructure:"zones"`
}

// CyberwatchOptions defines the asset store API client configuration.
//
// The key names match the [cyberwatch] section of the api.conf INI file.
type CyberwatchOptions struct {
	URL       string `mapstructure:"url"`
	APIKey    string `mapstructure:"api_key"`
	SecretKey string `mapstructure:"secret_key"`
	PageSize  int    `mapstructure:"page_size"`
	RetryMax  int    `mapstructure:"retry_max"`
}

// ImportOptions defines the attributes of the remote accesses created for new instances.
type ImportOptions struct {
	Login         string `mapstructure:"login"`
	NodeID        int    `mapstructure:"node_id"`
	ManagedGroup  string `mapstructure:"managed_group"`
	GroupLabel    string `mapstructure:"group_label"`
	SSHKeyFile    string `mapstructure:"ssh_key_file"`
	SSHPort       int    `mapstructure:"ssh_port"`
	WinRMPassword string `mapstructure:"winrm_password"`
	WinRMPort     int    `mapstructure:"winrm_port"`
}

// ProbeOptions defines the remote access port probe parameters.
type ProbeOptions struct {
	Timeout time.Duration `mapstructure:"timeout"`
	// SocksProxy is an optional host:port of a SOCKS5 proxy the probes are dialed through.
	SocksProxy string `mapstructure:"socks_proxy"`
}

// MetricsOptions defines where run metrics are written.
type MetricsOptions struct {
	// Textfile is a path the metrics are written to in the node_exporter textfile format.
	Textfile string `mapstructure:"textfile"`
}

// LoadConfiguration loads application configuration
//
// Reads in the cfgFile when available and overrides from environment variables.
func (a *App) LoadConfiguration(cfgFile string) error {
	a.v.SetConfigType(configType(cfgFile))
	a.v.SetEnvPrefix(model.AppName)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if cfgFile != "" {
		fh, err := os.Open(cfgFile)
		if err != nil {
			return errors.Wrap(ErrConfig, err.Error())
		}

		defer fh.Close()

		if err = a.v.ReadConfig(fh); err != nil {
			return errors.Wrap(ErrConfig, "ReadConfig error: "+err.Error())
		}
	}

	a.setDefaults()

	if err := a.envBindVars(); err != nil {
		return errors.Wrap(ErrConfig, "env var bind error: "+err.Error())
	}

	if err := a.v.Unmarshal(a.Config); err != nil {
		return errors.Wrap(ErrConfig, "Unmarshal error: "+err.Error())
	}

	return nil
}

func configType(cfgFile string) string {
	switch strings.ToLower(filepath.Ext(cfgFile)) {
	case ".conf", ".ini":
		return "ini"
	default:
		return "yaml"
	}
}

func (a *App) setDefaults() {
	a.v.SetDefault("log_level", model.LogLevelInfo)
	a.v.SetDefault("cyberwatch.page_size", defaultPageSize)
	a.v.SetDefault("cyberwatch.retry_max", defaultRetryMax)
	a.v.SetDefault("import.node_id", defaultNodeID)
	a.v.SetDefault("import.managed_group", model.DefaultManagedGroup)
	a.v.SetDefault("import.group_label", model.DefaultGroupLabel)
	a.v.SetDefault("import.ssh_port", model.DefaultSSHPort)
	a.v.SetDefault("import.winrm_port", model.DefaultWinRMPort)
	a.v.SetDefault("probe.timeout", defaultProbeTimeout)
}

// envBindVars binds environment variables to the struct
// without a configuration file being unmarshalled,
// this is a workaround for a viper bug,
//
// This can be replaced by the solution in https://github.com/spf13/viper/pull/1429
// once that PR is merged.
func (a *App) envBindVars() error {
	envKeysMap := map[string]interface{}{}
	if err := mapstructure.Decode(a.Config, &envKeysMap); err != nil {
		return err
	}

	// Flatten nested conf map
	flat, err := flatten.Flatten(envKeysMap, "", flatten.DotStyle)
	if err != nil {
		return errors.Wrap(err, "Unable to flatten config")
	}

	for k := range flat {
		if err := a.v.BindEnv(k); err != nil {
			return errors.Wrap(ErrConfig, "env var bind error: "+err.Error())
		}
	}

	return nil
}

// ValidateCyberwatch checks the asset store parameters required to query the API.
func (c *Configuration) ValidateCyberwatch() error {
	var merr *multierror.Error

	if c.Cyberwatch.URL == "" {
		merr = multierror.Append(merr, errors.New("cyberwatch.url not defined"))
	} else if _, err := url.ParseRequestURI(c.Cyberwatch.URL); err != nil {
		merr = multierror.Append(merr, errors.Wrap(err, "cyberwatch.url"))
	}

	if c.Cyberwatch.APIKey == "" {
		merr = multierror.Append(merr, errors.New("cyberwatch.api_key not defined"))
	}

	if c.Cyberwatch.SecretKey == "" {
		merr = multierror.Append(merr, errors.New("cyberwatch.secret_key not defined"))
	}

	if c.Cyberwatch.PageSize <= 0 {
		merr = multierror.Append(merr, errors.New("cyberwatch.page_size must be positive"))
	}

	return wrapConfigErr(merr)
}

// ValidateGCE checks the compute engine parameters required to list instances.
func (c *Configuration) ValidateGCE() error {
	var merr *multierror.Error

	if c.GCE.CredentialsFile == "" {
		merr = multierror.Append(merr, errors.New("gce.credentials_file not defined"))
	}

	return wrapConfigErr(merr)
}

// ValidateImport checks the parameters required to build remote accesses for import.
func (c *Configuration) ValidateImport() error {
	var merr *multierror.Error

	if c.Import.Login == "" {
		merr = multierror.Append(merr, errors.New("import.login not defined"))
	}

	if c.Import.SSHKeyFile == "" {
		merr = multierror.Append(merr, errors.New("import.ssh_key_file not defined"))
	}

	if c.Import.WinRMPassword == "" {
		merr = multierror.Append(merr, errors.New("import.winrm_password not defined"))
	}

	if c.Import.ManagedGroup == "" {
		merr = multierror.Append(merr, errors.New("import.managed_group not defined"))
	}

	return wrapConfigErr(merr)
}

// ValidateProbe checks the port probe parameters.
func (c *Configuration) ValidateProbe() error {
	var merr *multierror.Error

	if c.Probe.Timeout <= 0 {
		merr = multierror.Append(merr, errors.New("probe.timeout must be positive"))
	}

	if c.Import.SSHPort <= 0 || c.Import.WinRMPort <= 0 {
		merr = multierror.Append(merr, errors.New("import.ssh_port and import.winrm_port must be positive"))
	}

	return wrapConfigErr(merr)
}

func wrapConfigErr(merr *multierror.Error) error {
	if err := merr.ErrorOrNil(); err != nil {
		return errors.Wrap(ErrConfig, err.Error())
	}

	return nil
}
