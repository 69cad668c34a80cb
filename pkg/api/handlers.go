package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ssargent/rowdb/pkg/catalog"
	"github.com/ssargent/rowdb/pkg/schema"
	"github.com/ssargent/rowdb/pkg/table"
)

// Server holds the API server state
type Server struct {
	tables  *registry
	config  ServerConfig
	metrics *Metrics
	log     *logrus.Entry
}

// NewServer creates a new API server
func NewServer(store TableStore, config ServerConfig, metrics *Metrics, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{
		tables:  newRegistry(store, config.HeapCapacity),
		config:  config,
		metrics: metrics,
		log:     log.WithField("component", "api"),
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListTables godoc
//
//	@Summary		List tables
//	@Tags			tables
//	@Produce		json
//	@Success		200	{object}	[]catalog.Entry
//	@Failure		500	{object}	map[string]string
//	@Router			/tables [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	entries, err := s.tables.store.List()
	s.metrics.RecordTableOperation("list", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list tables: %v", err), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	sendSuccess(w, entries)
}

// handleCreateTable godoc
//
//	@Summary		Create a table
//	@Description	Declare a table from a list of typed fields
//	@Tags			tables
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateTableRequest	true	"Table definition"
//	@Success		201		{object}	TableInfo
//	@Failure		400		{object}	map[string]string
//	@Failure		409		{object}	map[string]string
//	@Router			/tables [post]
//	@Security		ApiKeyAuth
func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.RecordTableOperation("create", false, time.Since(start))
		sendError(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}

	fields, err := decodeBlobDefaults(req.Fields)
	if err != nil {
		s.metrics.RecordTableOperation("create", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sch, err := schema.FromDefinition(schema.Definition{Fields: fields})
	if err != nil {
		s.metrics.RecordTableOperation("create", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	t, err := s.tables.create(req.Name, sch)
	s.metrics.RecordTableOperation("create", err == nil, time.Since(start))
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	s.log.WithFields(logrus.Fields{"table": t.Name(), "row_length": t.RowLength()}).Info("table created")
	s.metrics.UpdateTableStats(t.Name(), t.Stats())

	info, err := tableInfo(t)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendCreated(w, info)
}

// handleGetTable godoc
//
//	@Summary		Describe a table
//	@Tags			tables
//	@Produce		json
//	@Param			name	path		string	true	"Table name"
//	@Success		200		{object}	TableInfo
//	@Failure		404		{object}	map[string]string
//	@Router			/tables/{name} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	t, err := s.tables.get(chi.URLParam(r, "name"))
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	info, err := tableInfo(t)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, info)
}

// handleDropTable godoc
//
//	@Summary		Drop a table
//	@Tags			tables
//	@Produce		json
//	@Param			name	path		string	true	"Table name"
//	@Success		200		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/tables/{name} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	err := s.tables.drop(name)
	s.metrics.RecordTableOperation("drop", err == nil, time.Since(start))
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	s.metrics.DeleteTableStats(name)
	s.log.WithField("table", name).Info("table dropped")
	sendSuccess(w, map[string]string{"message": "Table dropped successfully"})
}

// handleInsertRow godoc
//
//	@Summary		Insert a row
//	@Description	Values are positional in "values" or keyed by field in "row". Blob values are base64.
//	@Tags			rows
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string				true	"Table name"
//	@Param			request	body		InsertRowRequest	true	"Row values"
//	@Success		201		{object}	InsertRowResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/tables/{name}/rows [post]
//	@Security		ApiKeyAuth
func (s *Server) handleInsertRow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	t, err := s.tables.get(name)
	if err != nil {
		s.metrics.RecordTableOperation("insert", false, time.Since(start))
		sendError(w, err.Error(), statusFor(err))
		return
	}

	var req InsertRowRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		s.metrics.RecordTableOperation("insert", false, time.Since(start))
		sendError(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}

	values, err := rowValues(t, req)
	if err != nil {
		s.metrics.RecordTableOperation("insert", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	idx, err := s.tables.insert(name, values)
	s.metrics.RecordTableOperation("insert", err == nil, time.Since(start))
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	s.metrics.UpdateTableStats(name, t.Stats())
	sendCreated(w, InsertRowResponse{Table: name, Index: idx})
}

// handleGetRow godoc
//
//	@Summary		Read a row
//	@Tags			rows
//	@Produce		json
//	@Param			name	path		string	true	"Table name"
//	@Param			index	path		int		true	"Row index"
//	@Success		200		{object}	RowResponse
//	@Failure		400		{object}	map[string]string
//	@Failure		404		{object}	map[string]string
//	@Router			/tables/{name}/rows/{index} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.metrics.RecordTableOperation("get", false, time.Since(start))
		sendError(w, "Row index must be an integer", http.StatusBadRequest)
		return
	}

	t, err := s.tables.get(name)
	if err != nil {
		s.metrics.RecordTableOperation("get", false, time.Since(start))
		sendError(w, err.Error(), statusFor(err))
		return
	}

	row, err := t.RowMap(idx)
	s.metrics.RecordTableOperation("get", err == nil, time.Since(start))
	if err != nil {
		if table.ErrRowOutOfRange.Is(err) {
			sendError(w, err.Error(), http.StatusNotFound)
			return
		}
		s.log.WithError(err).WithFields(logrus.Fields{"table": name, "row": idx}).Error("failed to decode row")
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, RowResponse{Table: name, Index: idx, Values: row})
}

// handleFlushTable godoc
//
//	@Summary		Flush a table
//	@Description	Write the table snapshot to the catalog
//	@Tags			tables
//	@Produce		json
//	@Param			name	path		string	true	"Table name"
//	@Success		200		{object}	FlushResponse
//	@Failure		404		{object}	map[string]string
//	@Router			/tables/{name}/flush [post]
//	@Security		ApiKeyAuth
func (s *Server) handleFlushTable(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	id, t, err := s.tables.flush(name)
	s.metrics.RecordTableOperation("flush", err == nil, time.Since(start))
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	s.log.WithFields(logrus.Fields{"table": name, "rows": t.Len()}).Info("table flushed")
	sendSuccess(w, FlushResponse{Table: name, ID: id.String(), Rows: t.Len()})
}

// Flush saves every table with unsaved rows
func (s *Server) Flush() error {
	start := time.Now()
	names, err := s.tables.flushAll()
	s.metrics.RecordTableOperation("flush", err == nil, time.Since(start))
	if err != nil {
		return err
	}
	if len(names) > 0 {
		s.log.WithField("tables", names).Info("flushed tables")
	}
	return nil
}

func tableInfo(t *table.Table) (TableInfo, error) {
	def, err := t.Schema().Definition()
	if err != nil {
		return TableInfo{}, err
	}
	return TableInfo{
		Name:      t.Name(),
		RowLength: t.RowLength(),
		Fields:    encodeBlobDefaults(def.Fields),
		Stats:     t.Stats(),
	}, nil
}

// decodeBlobDefaults turns base64 blob defaults into the raw text form
// schema.FromDefinition parses
func decodeBlobDefaults(fields []schema.FieldDefinition) ([]schema.FieldDefinition, error) {
	out := make([]schema.FieldDefinition, len(fields))
	for i, fd := range fields {
		if fd.Type.Kind == schema.KindBlob && fd.Default != nil {
			raw, err := base64.StdEncoding.DecodeString(*fd.Default)
			if err != nil {
				return nil, fmt.Errorf("field %q: blob defaults must be base64: %w", fd.Name, err)
			}
			text := string(raw)
			fd.Default = &text
		}
		out[i] = fd
	}
	return out, nil
}

// encodeBlobDefaults is the inverse of decodeBlobDefaults
func encodeBlobDefaults(fields []schema.FieldDefinition) []schema.FieldDefinition {
	out := make([]schema.FieldDefinition, len(fields))
	for i, fd := range fields {
		if fd.Type.Kind == schema.KindBlob && fd.Default != nil {
			encoded := base64.StdEncoding.EncodeToString([]byte(*fd.Default))
			fd.Default = &encoded
		}
		out[i] = fd
	}
	return out
}

// rowValues orders the request values by schema position and decodes
// base64 blob values
func rowValues(t *table.Table, req InsertRowRequest) ([]any, error) {
	sch := t.Schema()

	values := req.Values
	if req.Row != nil {
		if req.Values != nil {
			return nil, fmt.Errorf("request has both values and row")
		}
		values = make([]any, sch.Len())
		for name, v := range req.Row {
			i, ok := sch.Index(name)
			if !ok {
				return nil, ErrUnknownField.New(t.Name(), name)
			}
			values[i] = v
		}
	}
	if values == nil {
		return nil, fmt.Errorf("request has no values")
	}

	for i, v := range values {
		if i >= sch.Len() {
			break
		}
		str, ok := v.(string)
		if !ok || sch.Field(i).Type.Kind != schema.KindBlob {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(str)
		if err != nil {
			return nil, fmt.Errorf("field %q: blob values must be base64: %w", sch.Field(i).Name, err)
		}
		values[i] = raw
	}

	return values, nil
}

// statusFor maps table and catalog errors onto HTTP status codes
func statusFor(err error) int {
	var fieldErr *table.FieldError
	switch {
	case catalog.ErrTableNotFound.Is(err), table.ErrRowOutOfRange.Is(err):
		return http.StatusNotFound
	case ErrTableExists.Is(err):
		return http.StatusConflict
	case catalog.ErrInvalidName.Is(err), table.ErrArity.Is(err), table.ErrMissingValue.Is(err), errors.As(err, &fieldErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
