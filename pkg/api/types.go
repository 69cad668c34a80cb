package api

import (
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/ssargent/rowdb/pkg/schema"
	"github.com/ssargent/rowdb/pkg/table"
)

// Errors
var (
	ErrTableExists  = errors.NewKind("table %q already exists")
	ErrUnknownField = errors.NewKind("table %s has no field %q")
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateTableRequest declares a new table. Blob defaults are base64 strings.
type CreateTableRequest struct {
	Name   string                   `json:"name"`
	Fields []schema.FieldDefinition `json:"fields"`
}

// InsertRowRequest carries one row, either positional or keyed by field name.
// Blob values are base64 strings.
type InsertRowRequest struct {
	Values []interface{}          `json:"values,omitempty"`
	Row    map[string]interface{} `json:"row,omitempty"`
}

// InsertRowResponse reports where a row landed
type InsertRowResponse struct {
	Table string `json:"table"`
	Index int    `json:"index"`
}

// RowResponse is one decoded row
type RowResponse struct {
	Table  string                 `json:"table"`
	Index  int                    `json:"index"`
	Values map[string]interface{} `json:"values"`
}

// TableInfo describes a table and its current size. Blob defaults are
// base64 strings.
type TableInfo struct {
	Name      string                   `json:"name"`
	RowLength int                      `json:"row_length"`
	Fields    []schema.FieldDefinition `json:"fields"`
	Stats     table.Stats              `json:"stats"`
}

// FlushResponse reports a table written to the catalog
type FlushResponse struct {
	Table string `json:"table"`
	ID    string `json:"id"`
	Rows  int    `json:"rows"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port         int
	Bind         string
	APIKey       string
	HeapCapacity int // initial heap capacity for new tables
}
