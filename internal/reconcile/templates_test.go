package reconcile

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/metal-toolbox/gcesync/internal/app"
	"github.com/metal-toolbox/gcesync/internal/fixtures"
	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/metal-toolbox/gcesync/internal/probe"
)

func writeKeyFile(t *testing.T, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	return path
}

func newPrivateKey(t *testing.T) []byte {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(key, "test")
	require.NoError(t, err)

	return pem.EncodeToMemory(block)
}

func testImportOptions(keyFile string) *app.ImportOptions {
	return &app.ImportOptions{
		Login:         "cbw",
		NodeID:        2,
		ManagedGroup:  model.DefaultManagedGroup,
		GroupLabel:    model.DefaultGroupLabel,
		SSHKeyFile:    keyFile,
		SSHPort:       model.DefaultSSHPort,
		WinRMPassword: "s3cret",
		WinRMPort:     model.DefaultWinRMPort,
	}
}

func TestLoadTemplates(t *testing.T) {
	key := newPrivateKey(t)

	templates, err := LoadTemplates(testImportOptions(writeKeyFile(t, key)))
	require.NoError(t, err)

	assert.Equal(t, model.AccessTypeSSHWithKey, templates.SSH.Type)
	assert.Equal(t, model.DefaultSSHPort, templates.SSH.Port)
	assert.Equal(t, "cbw", templates.SSH.Login)
	assert.Equal(t, string(key), templates.SSH.Key)
	assert.Equal(t, 2, templates.SSH.NodeID)
	assert.Empty(t, templates.SSH.Password)

	assert.Equal(t, model.AccessTypeWinRMNegotiate, templates.WinRM.Type)
	assert.Equal(t, model.DefaultWinRMPort, templates.WinRM.Port)
	assert.Equal(t, "s3cret", templates.WinRM.Password)
	assert.Empty(t, templates.WinRM.Key)
}

func TestLoadTemplatesErrors(t *testing.T) {
	tests := []struct {
		name    string
		keyFile func(t *testing.T) string
	}{
		{
			"missing key file",
			func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent") },
		},
		{
			"not a private key",
			func(t *testing.T) string { return writeKeyFile(t, []byte("ssh-ed25519 AAAA user@host\n")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTemplates(testImportOptions(tt.keyFile(t)))
			assert.ErrorIs(t, err, ErrSSHKey)
		})
	}
}

func TestTemplatesRemoteAccess(t *testing.T) {
	templates := &Templates{
		SSH:   model.RemoteAccess{Type: model.AccessTypeSSHWithKey, Port: 22, Key: "key"},
		WinRM: model.RemoteAccess{Type: model.AccessTypeWinRMNegotiate, Port: 5985, Password: "pass"},
	}

	got, ok := templates.RemoteAccess(probe.MethodSSH, "203.0.113.10", "GCE_crawling")
	require.True(t, ok)
	assert.Equal(t, model.AccessTypeSSHWithKey, got.Type)
	assert.Equal(t, "203.0.113.10", got.Address)
	assert.Equal(t, "GCE_crawling", got.ServerGroups)

	got, ok = templates.RemoteAccess(probe.MethodWinRM, "203.0.113.20", "GCE_crawling")
	require.True(t, ok)
	assert.Equal(t, 5985, got.Port)
	assert.Equal(t, "pass", got.Password)

	_, ok = templates.RemoteAccess(probe.MethodNone, "203.0.113.30", "GCE_crawling")
	assert.False(t, ok)

	// the template itself is not modified
	assert.Empty(t, templates.SSH.Address)
}

func TestTemplatesServerGroups(t *testing.T) {
	templates := &Templates{ManagedGroup: model.DefaultManagedGroup, GroupLabel: model.DefaultGroupLabel}

	tests := []struct {
		name     string
		instance model.Instance
		want     string
	}{
		{"zone and label", fixtures.InstanceWeb, "GCE_crawling, europe-west1-b, frontend"},
		{"zone only", fixtures.InstanceWindows, "GCE_crawling, europe-west1-c"},
		{"no zone", model.Instance{Name: "file-1"}, "GCE_crawling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, templates.ServerGroups(&tt.instance))
		})
	}

	templates.GroupLabel = ""
	assert.Equal(t, "GCE_crawling, europe-west1-b", templates.ServerGroups(&fixtures.InstanceWeb))
}
