package cloud

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/metal-toolbox/gcesync/internal/model"
)

// Yaml lists instances from an inventory file, it stands in for the cloud API on offline runs.
//
//	instances:
//	  - name: web-1
//	    state: running
//	    zone: us-central1-a
//	    public_ips: [203.0.113.10]
//	    labels:
//	      group: web
type Yaml struct {
	file   string
	logger *logrus.Logger
}

type inventoryFile struct {
	Instances []model.Instance `yaml:"instances"`
}

// NewYamlProvider returns a Yaml type that implements the Provider interface.
func NewYamlProvider(file string, logger *logrus.Logger) *Yaml {
	return &Yaml{file: file, logger: logger}
}

// ListInstances returns the instances listed in the inventory file.
func (y *Yaml) ListInstances(_ context.Context) ([]model.Instance, error) {
	b, err := os.ReadFile(y.file)
	if err != nil {
		return nil, errors.Wrap(ErrInventoryFile, err.Error())
	}

	inventory := &inventoryFile{}
	if err := yaml.Unmarshal(b, inventory); err != nil {
		return nil, errors.Wrap(ErrInventoryFile, y.file+": "+err.Error())
	}

	if inventory.Instances == nil {
		inventory.Instances = []model.Instance{}
	}

	recordListed(model.SourceYaml, inventory.Instances)

	y.logger.WithFields(logrus.Fields{
		"file":      y.file,
		"instances": len(inventory.Instances),
	}).Debug("listed inventory file instances")

	return inventory.Instances, nil
}
