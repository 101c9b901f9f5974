package cloud

import (
	"context"

	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/pkg/errors"
)

//go:generate mockgen -source interface.go -destination=../fixtures/mock_cloud.go -package=fixtures

var (
	// ErrCloudQuery is returned when listing instances from the cloud provider fails.
	ErrCloudQuery = errors.New("cloud inventory query returned error")

	// ErrInventoryFile is returned when the inventory file could not be loaded.
	ErrInventoryFile = errors.New("error in inventory file")
)

// Provider lists the instances of a cloud inventory source.
type Provider interface {
	// ListInstances returns every instance of the source, in any state.
	ListInstances(ctx context.Context) ([]model.Instance, error)
}
