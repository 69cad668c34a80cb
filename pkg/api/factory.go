// Package api provides factory implementations for dependency injection
package api

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ssargent/rowdb/pkg/catalog"
)

// CatalogDir is the catalog location inside the data directory
const CatalogDir = "catalog"

// DefaultCatalogOpener is the default implementation of CatalogOpener
type DefaultCatalogOpener struct{}

// NewCatalogOpener creates a new catalog opener
func NewCatalogOpener() CatalogOpener {
	return &DefaultCatalogOpener{}
}

// OpenCatalog opens the pebble catalog in dataDir
func (o *DefaultCatalogOpener) OpenCatalog(dataDir string, log *logrus.Entry) (*catalog.Store, error) {
	return catalog.Open(filepath.Join(dataDir, CatalogDir), catalog.Options{Logger: log})
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, store TableStore, config ServerConfig, log *logrus.Entry) error {
	return StartServer(ctx, store, config, log)
}
