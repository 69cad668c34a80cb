// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/ssargent/rowdb/pkg/catalog"
	"github.com/ssargent/rowdb/pkg/table"
)

// TableStore persists tables between server runs
type TableStore interface {
	Save(t *table.Table) (ksuid.KSUID, error)
	Load(name string) (*table.Table, error)
	Exists(name string) (bool, error)
	List() ([]catalog.Entry, error)
	Delete(name string) error
}

// CatalogOpener opens the table store under a data directory
type CatalogOpener interface {
	// OpenCatalog opens or creates the catalog
	OpenCatalog(dataDir string, log *logrus.Entry) (*catalog.Store, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled, then flushes every table
	StartServer(ctx context.Context, store TableStore, config ServerConfig, log *logrus.Entry) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
