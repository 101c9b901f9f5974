package model

// AccessType is the Cyberwatch remote access type identifier.
type AccessType string

const (
	AccessTypeSSHWithKey     AccessType = "CbwRam::RemoteAccess::Ssh::WithKey"
	AccessTypeWinRMNegotiate AccessType = "CbwRam::RemoteAccess::WinRm::WithNegotiate"
)

const (
	DefaultSSHPort   = 22
	DefaultWinRMPort = 5985

	// ServerGroupsSeparator joins the group names in RemoteAccess.ServerGroups.
	ServerGroupsSeparator = ", "
)

// RemoteAccess is the asset store record describing how a server is reached.
//
// The same type is used to list existing remote accesses and to create new ones,
// fields not returned by a listing are left empty.
//
// nolint:govet // fieldalignment struct is easier to read in the current format
type RemoteAccess struct {
	ID           int        `json:"id,omitempty"`
	Type         AccessType `json:"type"`
	Address      string     `json:"address"`
	Port         int        `json:"port"`
	Login        string     `json:"login,omitempty"`
	Password     string     `json:"password,omitempty"`
	Key          string     `json:"key,omitempty"`
	NodeID       int        `json:"node_id,omitempty"`
	ServerGroups string     `json:"server_groups,omitempty"`
	ServerID     int        `json:"server_id,omitempty"`
}

// Group is an asset store server group.
type Group struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Server is an asset store server record.
type Server struct {
	ID       int     `json:"id"`
	Hostname string  `json:"hostname"`
	RemoteIP string  `json:"remote_ip"`
	Groups   []Group `json:"groups"`
}

// InGroup returns true when the server is part of the named group.
func (s *Server) InGroup(name string) bool {
	for _, g := range s.Groups {
		if g.Name == name {
			return true
		}
	}

	return false
}
