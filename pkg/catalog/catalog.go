// Package catalog persists tables in a pebble database.
//
// Each table gets a ksuid id when first saved. Three keys describe it:
//
//	n/<name>  -> id
//	s/<id>    -> schema YAML
//	d/<id>    -> zstd compressed table snapshot
package catalog

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/ssargent/rowdb/pkg/schema"
	"github.com/ssargent/rowdb/pkg/table"
)

// Errors
var (
	ErrTableNotFound = errors.NewKind("table %q not found")
	ErrCorruptEntry  = errors.NewKind("catalog entry for %q is corrupt: %s")
	ErrInvalidName   = errors.NewKind("invalid table name %q")
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]{0,127}$`)

const (
	namePrefix   = "n/"
	schemaPrefix = "s/"
	dataPrefix   = "d/"
)

// Options configures a catalog store
type Options struct {
	// FS overrides the filesystem, vfs.NewMem() for tests
	FS     vfs.FS
	Logger *logrus.Entry
}

// Entry describes a stored table
type Entry struct {
	Name      string      `json:"name"`
	ID        ksuid.KSUID `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
}

// Store is a pebble-backed table catalog
type Store struct {
	db      *pebble.DB
	log     *logrus.Entry
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open opens or creates the catalog in dir
func Open(dir string, opts Options) (*Store, error) {
	pebbleOpts := &pebble.Options{}
	if opts.FS != nil {
		pebbleOpts.FS = opts.FS
	}

	db, err := pebble.Open(dir, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Store{
		db:      db,
		log:     log.WithField("component", "catalog"),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// ValidateName checks that name can be used as a table name: a letter or
// underscore followed by up to 127 letters, digits, underscores or hyphens
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return ErrInvalidName.New(name)
	}
	return nil
}

// Save writes the schema and a snapshot of t, replacing any earlier version
// stored under the same name. The name keeps its id across saves.
func (s *Store) Save(t *table.Table) (ksuid.KSUID, error) {
	if err := ValidateName(t.Name()); err != nil {
		return ksuid.Nil, err
	}

	id, err := s.lookup(t.Name())
	switch {
	case ErrTableNotFound.Is(err):
		id = ksuid.New()
	case err != nil:
		return ksuid.Nil, err
	}

	schemaYAML, err := t.Schema().YAML()
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	snapshot, err := t.MarshalBinary()
	if err != nil {
		return ksuid.Nil, fmt.Errorf("failed to snapshot table: %w", err)
	}
	compressed := s.encoder.EncodeAll(snapshot, nil)

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(nameKey(t.Name()), id.Bytes(), nil); err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Set(idKey(schemaPrefix, id), schemaYAML, nil); err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Set(idKey(dataPrefix, id), compressed, nil); err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to commit table %q: %w", t.Name(), err)
	}

	s.log.WithFields(logrus.Fields{
		"table":      t.Name(),
		"id":         id.String(),
		"rows":       t.Len(),
		"snapshot":   len(snapshot),
		"compressed": len(compressed),
	}).Debug("table saved")

	return id, nil
}

// Load reads the table stored under name
func (s *Store) Load(name string) (*table.Table, error) {
	id, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	schemaYAML, err := s.get(idKey(schemaPrefix, id))
	if err != nil {
		return nil, s.missingPart(name, "schema", err)
	}
	sch, err := schema.ParseYAML(schemaYAML)
	if err != nil {
		return nil, ErrCorruptEntry.Wrap(err, name, "schema")
	}

	compressed, err := s.get(idKey(dataPrefix, id))
	if err != nil {
		return nil, s.missingPart(name, "data", err)
	}
	snapshot, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, ErrCorruptEntry.Wrap(err, name, "data")
	}

	t, err := table.Unmarshal(name, sch, snapshot)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"table": name, "rows": t.Len()}).Debug("table loaded")
	return t, nil
}

// Exists reports whether a table is stored under name
func (s *Store) Exists(name string) (bool, error) {
	_, err := s.lookup(name)
	if ErrTableNotFound.Is(err) {
		return false, nil
	}
	return err == nil, err
}

// List returns every stored table ordered by name
func (s *Store) List() ([]Entry, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(namePrefix),
		UpperBound: prefixEnd(namePrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		name := string(iter.Key()[len(namePrefix):])
		id, err := ksuid.FromBytes(iter.Value())
		if err != nil {
			return nil, ErrCorruptEntry.Wrap(err, name, "id")
		}
		entries = append(entries, Entry{Name: name, ID: id, CreatedAt: id.Time()})
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes a table and its data
func (s *Store) Delete(name string) error {
	id, err := s.lookup(name)
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	if err := batch.Delete(nameKey(name), nil); err != nil {
		return err
	}
	if err := batch.Delete(idKey(schemaPrefix, id), nil); err != nil {
		return err
	}
	if err := batch.Delete(idKey(dataPrefix, id), nil); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete table %q: %w", name, err)
	}

	s.log.WithField("table", name).Info("table deleted")
	return nil
}

// Close releases the database and codecs
func (s *Store) Close() error {
	s.decoder.Close()
	if err := s.encoder.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

func (s *Store) lookup(name string) (ksuid.KSUID, error) {
	raw, err := s.get(nameKey(name))
	if err == pebble.ErrNotFound {
		return ksuid.Nil, ErrTableNotFound.New(name)
	}
	if err != nil {
		return ksuid.Nil, err
	}

	id, err := ksuid.FromBytes(raw)
	if err != nil {
		return ksuid.Nil, ErrCorruptEntry.Wrap(err, name, "id")
	}
	return id, nil
}

// get copies the value out of pebble so it outlives the closer
func (s *Store) get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return bytes.Clone(value), nil
}

func (s *Store) missingPart(name, part string, err error) error {
	if err == pebble.ErrNotFound {
		return ErrCorruptEntry.New(name, part+" missing")
	}
	return err
}

func nameKey(name string) []byte {
	return append([]byte(namePrefix), name...)
}

func idKey(prefix string, id ksuid.KSUID) []byte {
	return append([]byte(prefix), id.Bytes()...)
}

// prefixEnd returns the smallest key greater than every key with prefix
func prefixEnd(prefix string) []byte {
	end := []byte(prefix)
	end[len(end)-1]++
	return end
}

var _ io.Closer = (*Store)(nil)
