package reconcile

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/metal-toolbox/gcesync/internal/app"
	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/metal-toolbox/gcesync/internal/probe"
)

var (
	ErrSSHKey = errors.New("error in SSH key file")
)

// Templates holds the base remote access for each access method, imports are built by filling in the address and groups.
type Templates struct {
	SSH          model.RemoteAccess
	WinRM        model.RemoteAccess
	ManagedGroup string
	GroupLabel   string
}

// LoadTemplates reads the SSH key file and returns the import templates for the configuration.
//
// The key is parsed to catch a wrong file before it is sent to the asset store,
// passphrase protected keys are accepted as is.
func LoadTemplates(cfg *app.ImportOptions) (*Templates, error) {
	key, err := os.ReadFile(cfg.SSHKeyFile)
	if err != nil {
		return nil, errors.Wrap(ErrSSHKey, err.Error())
	}

	if _, err := ssh.ParsePrivateKey(key); err != nil {
		var passphraseErr *ssh.PassphraseMissingError
		if !errors.As(err, &passphraseErr) {
			return nil, errors.Wrap(ErrSSHKey, cfg.SSHKeyFile+": "+err.Error())
		}
	}

	return &Templates{
		SSH: model.RemoteAccess{
			Type:   model.AccessTypeSSHWithKey,
			Port:   cfg.SSHPort,
			Login:  cfg.Login,
			Key:    string(key),
			NodeID: cfg.NodeID,
		},
		WinRM: model.RemoteAccess{
			Type:     model.AccessTypeWinRMNegotiate,
			Port:     cfg.WinRMPort,
			Login:    cfg.Login,
			Password: cfg.WinRMPassword,
			NodeID:   cfg.NodeID,
		},
		ManagedGroup: cfg.ManagedGroup,
		GroupLabel:   cfg.GroupLabel,
	}, nil
}

// RemoteAccess returns the remote access to create for the method, false is returned for MethodNone.
func (t *Templates) RemoteAccess(method probe.Method, address, serverGroups string) (model.RemoteAccess, bool) {
	var remoteAccess model.RemoteAccess

	switch method {
	case probe.MethodSSH:
		remoteAccess = t.SSH
	case probe.MethodWinRM:
		remoteAccess = t.WinRM
	default:
		return remoteAccess, false
	}

	remoteAccess.Address = address
	remoteAccess.ServerGroups = serverGroups

	return remoteAccess, true
}

// ServerGroups returns the groups an instance is imported in, the managed group,
// the instance zone and the value of the group label when the instance carries it.
func (t *Templates) ServerGroups(instance *model.Instance) string {
	groups := []string{t.ManagedGroup}

	if instance.Zone != "" {
		groups = append(groups, instance.Zone)
	}

	if t.GroupLabel != "" {
		if value, ok := instance.Labels[t.GroupLabel]; ok {
			groups = append(groups, value)
		}
	}

	return strings.Join(groups, model.ServerGroupsSeparator)
}
