package fixtures

import "github.com/metal-toolbox/gcesync/internal/model"

var (
	// InstanceWeb is a running linux instance with a group label.
	InstanceWeb = model.Instance{
		Name:      "web-1",
		State:     model.InstanceStateRunning,
		PublicIPs: []string{"203.0.113.10"},
		Zone:      "europe-west1-b",
		Labels:    map[string]string{"group": "frontend"},
	}

	// InstanceWindows is a running instance reachable on WinRM.
	InstanceWindows = model.Instance{
		Name:      "win-1",
		State:     model.InstanceStateRunning,
		PublicIPs: []string{"203.0.113.20"},
		Zone:      "europe-west1-c",
	}

	// InstanceStopped is a terminated instance, its record is kept but it is never imported.
	InstanceStopped = model.Instance{
		Name:      "batch-1",
		State:     "TERMINATED",
		PublicIPs: []string{"203.0.113.30"},
		Zone:      "europe-west1-b",
	}

	// InstancePrivate has no public address.
	InstancePrivate = model.Instance{
		Name:  "db-1",
		State: model.InstanceStateRunning,
		Zone:  "europe-west1-b",
	}

	GroupManaged = model.Group{ID: 1, Name: model.DefaultManagedGroup}
	GroupOther   = model.Group{ID: 2, Name: "on-premise"}

	// ServerWeb is the asset store record of InstanceWeb.
	ServerWeb = model.Server{
		ID:       10,
		Hostname: "web-1",
		RemoteIP: "203.0.113.10",
		Groups:   []model.Group{GroupManaged},
	}

	// ServerStopped is the asset store record of InstanceStopped.
	ServerStopped = model.Server{
		ID:       11,
		Hostname: "batch-1",
		RemoteIP: "203.0.113.30",
		Groups:   []model.Group{GroupManaged},
	}

	// ServerGone is a managed server whose instance was removed.
	ServerGone = model.Server{
		ID:       12,
		Hostname: "old-1",
		RemoteIP: "198.51.100.1",
		Groups:   []model.Group{GroupManaged, GroupOther},
	}

	// ServerUnmanaged is a server outside the managed group.
	ServerUnmanaged = model.Server{
		ID:       13,
		Hostname: "lab-1",
		RemoteIP: "198.51.100.2",
		Groups:   []model.Group{GroupOther},
	}

	// RemoteAccessWeb is the existing remote access of InstanceWeb.
	RemoteAccessWeb = model.RemoteAccess{
		ID:      100,
		Type:    model.AccessTypeSSHWithKey,
		Address: "203.0.113.10",
		Port:    model.DefaultSSHPort,
	}
)
