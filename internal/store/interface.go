package store

import (
	"context"

	"github.com/metal-toolbox/gcesync/internal/model"
)

//go:generate mockgen -source interface.go -destination=../fixtures/mock_store.go -package=fixtures

// Repository is the asset store holding the server and remote access records.
type Repository interface {
	// Ping checks the store is reachable and the credentials are accepted.
	Ping(ctx context.Context) error

	// RemoteAccesses lists all remote access records.
	RemoteAccesses(ctx context.Context) ([]model.RemoteAccess, error)

	// Servers lists all server records.
	Servers(ctx context.Context) ([]model.Server, error)

	// CreateRemoteAccess creates a remote access, the store discovers and registers the server behind it.
	CreateRemoteAccess(ctx context.Context, remoteAccess *model.RemoteAccess) (*model.RemoteAccess, error)

	// DeleteServer removes the server record identified by id.
	DeleteServer(ctx context.Context, id int) error
}
