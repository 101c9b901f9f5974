package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAMLConfig = `
log_level: debug
gce:
  project: quickstart-1579112015773
  credentials_file: /etc/gcesync/sa.json
  zones:
    - europe-west1-b
cyberwatch:
  url: https://cyberwatch.example.com
  api_key: key
  secret_key: secret
import:
  login: maxime
  node_id: 2
  ssh_key_file: /etc/gcesync/id_rsa
  winrm_password: hunter2
probe:
  timeout: 2s
`

const testINIConfig = `
[cyberwatch]
url = https://cyberwatch.example.com
api_key = key
secret_key = secret
`

func newTestApp() *App {
	return &App{v: viper.New(), Config: &Configuration{}}
}

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func TestLoadConfigurationYAML(t *testing.T) {
	a := newTestApp()
	err := a.LoadConfiguration(writeConfig(t, "gcesync.yml", testYAMLConfig))
	require.NoError(t, err)

	cfg := a.Config
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "quickstart-1579112015773", cfg.GCE.Project)
	assert.Equal(t, []string{"europe-west1-b"}, cfg.GCE.Zones)
	assert.Equal(t, "https://cyberwatch.example.com", cfg.Cyberwatch.URL)
	assert.Equal(t, "maxime", cfg.Import.Login)
	assert.Equal(t, 2, cfg.Import.NodeID)
	assert.Equal(t, 2*time.Second, cfg.Probe.Timeout)

	// defaults
	assert.Equal(t, model.DefaultManagedGroup, cfg.Import.ManagedGroup)
	assert.Equal(t, model.DefaultGroupLabel, cfg.Import.GroupLabel)
	assert.Equal(t, model.DefaultSSHPort, cfg.Import.SSHPort)
	assert.Equal(t, model.DefaultWinRMPort, cfg.Import.WinRMPort)
	assert.Equal(t, defaultPageSize, cfg.Cyberwatch.PageSize)
	assert.Equal(t, defaultRetryMax, cfg.Cyberwatch.RetryMax)

	assert.NoError(t, cfg.ValidateGCE())
	assert.NoError(t, cfg.ValidateCyberwatch())
	assert.NoError(t, cfg.ValidateImport())
	assert.NoError(t, cfg.ValidateProbe())
}

func TestLoadConfigurationINI(t *testing.T) {
	a := newTestApp()
	err := a.LoadConfiguration(writeConfig(t, "api.conf", testINIConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://cyberwatch.example.com", a.Config.Cyberwatch.URL)
	assert.Equal(t, "key", a.Config.Cyberwatch.APIKey)
	assert.Equal(t, "secret", a.Config.Cyberwatch.SecretKey)
	assert.Equal(t, defaultProbeTimeout, a.Config.Probe.Timeout)
	assert.NoError(t, a.Config.ValidateCyberwatch())
}

func TestLoadConfigurationEnvOverrides(t *testing.T) {
	t.Setenv("GCESYNC_CYBERWATCH_SECRET_KEY", "from-env")
	t.Setenv("GCESYNC_IMPORT_LOGIN", "admin")

	a := newTestApp()
	err := a.LoadConfiguration(writeConfig(t, "gcesync.yaml", testYAMLConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", a.Config.Cyberwatch.SecretKey)
	assert.Equal(t, "admin", a.Config.Import.Login)
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	a := newTestApp()
	err := a.LoadConfiguration(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestValidate(t *testing.T) {
	cfg := &Configuration{}

	err := cfg.ValidateCyberwatch()
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "cyberwatch.url not defined")
	assert.Contains(t, err.Error(), "cyberwatch.api_key not defined")
	assert.Contains(t, err.Error(), "cyberwatch.secret_key not defined")

	err = cfg.ValidateGCE()
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "gce.credentials_file not defined")

	err = cfg.ValidateImport()
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "import.ssh_key_file not defined")

	err = cfg.ValidateProbe()
	assert.ErrorIs(t, err, ErrConfig)
}

func TestConfigType(t *testing.T) {
	assert.Equal(t, "ini", configType("api.conf"))
	assert.Equal(t, "ini", configType("/etc/gcesync/api.INI"))
	assert.Equal(t, "yaml", configType("gcesync.yml"))
	assert.Equal(t, "yaml", configType(""))
}
