package mock

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/Ratio1/userdb_sdk_go/internal/devseed"
)

// IDField is the primary key assigned to every stored document.
const IDField = "_id"

// ErrNotFound is returned when a document id is unknown.
var ErrNotFound = errors.New("mock userdb: document not found")

type collection struct {
	docs  map[string]map[string]any
	order []string
}

// Mock implements an in-memory document database holding any number of named
// collections. Documents are plain JSON objects; the mock does not interpret
// any field other than "_id".
type Mock struct {
	mu          sync.RWMutex
	collections map[string]*collection
	newID       func() string
}

// Option configures the mock instance.
type Option func(*Mock)

// WithIDGenerator overrides the "_id" generator (useful in tests).
func WithIDGenerator(fn func() string) Option {
	return func(m *Mock) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// New creates an empty mock database.
func New(opts ...Option) *Mock {
	m := &Mock{
		collections: make(map[string]*collection),
		newID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Seed loads initial documents. Seeded documents keep their "_id" when one
// is present.
func (m *Mock) Seed(docs devseed.Documents) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, items := range docs {
		if strings.TrimSpace(name) == "" {
			return errors.New("mock userdb: seed collection name is empty")
		}
		coll := m.collectionLocked(name)
		for _, item := range items {
			doc := copyDoc(item)
			id, _ := doc[IDField].(string)
			if strings.TrimSpace(id) == "" {
				id = m.newID()
				doc[IDField] = id
			}
			if _, exists := coll.docs[id]; !exists {
				coll.order = append(coll.order, id)
			}
			coll.docs[id] = doc
		}
	}
	return nil
}

// Find returns every document whose fields equal all filter entries, in
// insertion order. An empty filter matches everything.
func (m *Mock) Find(ctx context.Context, name string, filter map[string]any) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.collections[name]
	if coll == nil {
		return []map[string]any{}, nil
	}
	out := make([]map[string]any, 0)
	for _, id := range coll.order {
		doc := coll.docs[id]
		if matches(doc, filter) {
			out = append(out, copyDoc(doc))
		}
	}
	return out, nil
}

// Get returns a single document by id.
func (m *Mock) Get(ctx context.Context, name, id string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.collections[name]
	if coll == nil {
		return nil, ErrNotFound
	}
	doc, ok := coll.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(doc), nil
}

// Insert stores doc under a freshly generated "_id" and returns the stored copy.
// An "_id" supplied by the caller is ignored.
func (m *Mock) Insert(ctx context.Context, name string, doc map[string]any) (map[string]any, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("mock userdb: collection is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := copyDoc(doc)
	id := m.newID()
	stored[IDField] = id

	coll := m.collectionLocked(name)
	coll.docs[id] = stored
	coll.order = append(coll.order, id)
	return copyDoc(stored), nil
}

// Replace overwrites the document stored under id.
func (m *Mock) Replace(ctx context.Context, name, id string, doc map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collections[name]
	if coll == nil {
		return nil, ErrNotFound
	}
	if _, ok := coll.docs[id]; !ok {
		return nil, ErrNotFound
	}
	stored := copyDoc(doc)
	stored[IDField] = id
	coll.docs[id] = stored
	return copyDoc(stored), nil
}

// Remove deletes the document stored under id.
func (m *Mock) Remove(ctx context.Context, name, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collections[name]
	if coll == nil {
		return ErrNotFound
	}
	if _, ok := coll.docs[id]; !ok {
		return ErrNotFound
	}
	delete(coll.docs, id)
	for i, existing := range coll.order {
		if existing == id {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports the number of documents in a collection.
func (m *Mock) Len(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if coll := m.collections[name]; coll != nil {
		return len(coll.docs)
	}
	return 0
}

func (m *Mock) collectionLocked(name string) *collection {
	coll := m.collections[name]
	if coll == nil {
		coll = &collection{docs: make(map[string]map[string]any)}
		m.collections[name] = coll
	}
	return coll
}

func matches(doc, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func copyDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyDoc(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
