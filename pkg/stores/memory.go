package stores

// The in-memory collection is the default backing store. It is safe for
// concurrent use and keeps records in insertion order, which is perfectly
// sufficient for dev & unit tests. Production deployments can swap in the
// object-store implementation.

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/erpforge/orchestrator-go/pkg/errors"
)

// InMemoryCollection is the default Collection implementation.
type InMemoryCollection struct {
	mu    sync.RWMutex
	name  string
	docs  map[string]Document
	order []string
}

func NewInMemoryCollection(name string) *InMemoryCollection {
	return &InMemoryCollection{
		name: name,
		docs: make(map[string]Document),
	}
}

func (c *InMemoryCollection) Name() string { return c.name }

func (c *InMemoryCollection) Insert(ctx context.Context, doc Document) (string, *errors.ApiError) {
	id := uuid.Must(uuid.NewV7()).String()

	stored := CloneDocument(doc)
	stored["_id"] = id

	c.mu.Lock()
	c.docs[id] = stored
	c.order = append(c.order, id)
	c.mu.Unlock()

	return id, nil
}

func (c *InMemoryCollection) FindOne(ctx context.Context, id string) (Document, *errors.ApiError) {
	c.mu.RLock()
	doc, ok := c.docs[id]
	c.mu.RUnlock()

	if !ok {
		return nil, errors.ErrTaskNotFound
	}
	return CloneDocument(doc), nil
}

func (c *InMemoryCollection) FindMany(ctx context.Context, limit int) ([]Document, *errors.ApiError) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, CloneDocument(c.docs[id]))
	}
	return out, nil
}

func (c *InMemoryCollection) Update(ctx context.Context, id string, update Update) *errors.ApiError {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[id]
	if !ok {
		return errors.ErrTaskNotFound
	}
	ApplyUpdate(doc, update)
	return nil
}

func (c *InMemoryCollection) Ping(ctx context.Context) *errors.ApiError { return nil }
