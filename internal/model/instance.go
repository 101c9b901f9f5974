package model

// InstanceStateRunning is the only instance state eligible for import.
const InstanceStateRunning = "running"

// Instance is a virtual machine instance listed from the cloud provider.
type Instance struct {
	Name      string            `yaml:"name" json:"name"`
	State     string            `yaml:"state" json:"state"`
	PublicIPs []string          `yaml:"public_ips" json:"public_ips"`
	Zone      string            `yaml:"zone" json:"zone"`
	Labels    map[string]string `yaml:"labels" json:"labels,omitempty"`
}

// PrimaryIP returns the first public IP of the instance, or an empty string when it has none.
func (i *Instance) PrimaryIP() string {
	if len(i.PublicIPs) == 0 {
		return ""
	}

	return i.PublicIPs[0]
}

// Running returns true when the instance is in the running state.
func (i *Instance) Running() bool {
	return i.State == InstanceStateRunning
}
