package api

import (
	"sort"
	"sync"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/rowdb/pkg/catalog"
	"github.com/ssargent/rowdb/pkg/schema"
	"github.com/ssargent/rowdb/pkg/table"
)

// registry caches the tables loaded from the store. Inserted rows live in
// memory until the table is flushed.
type registry struct {
	mutex        sync.Mutex
	store        TableStore
	tables       map[string]*table.Table
	dirty        map[string]bool
	heapCapacity int
}

func newRegistry(store TableStore, heapCapacity int) *registry {
	return &registry{
		store:        store,
		tables:       make(map[string]*table.Table),
		dirty:        make(map[string]bool),
		heapCapacity: heapCapacity,
	}
}

// get returns a cached table, loading it from the store on first use
func (r *registry) get(name string) (*table.Table, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if t, ok := r.tables[name]; ok {
		return t, nil
	}

	t, err := r.store.Load(name)
	if err != nil {
		return nil, err
	}
	r.tables[name] = t
	return t, nil
}

// create registers and persists an empty table
func (r *registry) create(name string, s *schema.Schema) (*table.Table, error) {
	if err := catalog.ValidateName(name); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.tables[name]; ok {
		return nil, ErrTableExists.New(name)
	}
	exists, err := r.store.Exists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrTableExists.New(name)
	}

	t := table.New(name, s, table.Options{HeapCapacity: r.heapCapacity})
	if _, err := r.store.Save(t); err != nil {
		return nil, err
	}
	r.tables[name] = t
	return t, nil
}

// insert adds a row and marks the table for the next flush
func (r *registry) insert(name string, values []any) (int, error) {
	t, err := r.get(name)
	if err != nil {
		return 0, err
	}

	idx, err := t.Insert(values)
	if err != nil {
		return 0, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// The table was dropped or replaced while the row was being encoded
	if r.tables[name] != t {
		return 0, catalog.ErrTableNotFound.New(name)
	}
	r.dirty[name] = true

	return idx, nil
}

// drop removes the table from the store and the cache
func (r *registry) drop(name string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.store.Delete(name); err != nil {
		return err
	}
	delete(r.tables, name)
	delete(r.dirty, name)
	return nil
}

// flush saves one table
func (r *registry) flush(name string) (ksuid.KSUID, *table.Table, error) {
	t, err := r.get(name)
	if err != nil {
		return ksuid.Nil, nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	id, err := r.store.Save(t)
	if err != nil {
		return ksuid.Nil, nil, err
	}
	delete(r.dirty, name)
	return id, t, nil
}

// flushAll saves every table with unsaved rows and returns their names
func (r *registry) flushAll() ([]string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	names := make([]string, 0, len(r.dirty))
	for name := range r.dirty {
		names = append(names, name)
	}
	sort.Strings(names)

	flushed := names[:0]
	for _, name := range names {
		t, ok := r.tables[name]
		if !ok {
			delete(r.dirty, name)
			continue
		}
		if _, err := r.store.Save(t); err != nil {
			return flushed, err
		}
		delete(r.dirty, name)
		flushed = append(flushed, name)
	}
	return flushed, nil
}

// isDirty reports whether a table has rows not yet flushed
func (r *registry) isDirty(name string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.dirty[name]
}
