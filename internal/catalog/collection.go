package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kadro/pricing-estimator/internal/estimate"
	"github.com/kadro/pricing-estimator/internal/storage"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Collection is an ordered, id-keyed list of entities held in memory and
// written through to its backend as a single document on every mutation.
// All access is serialized by one mutex per collection.
type Collection[T any] struct {
	name    string
	backend storage.Backend
	now     func() time.Time

	id       func(*T) int
	setID    func(*T, int)
	onCreate func(*T, time.Time)
	onUpdate func(*T, time.Time)

	// stamped lists JSON fields besides "id" that the collection sets
	// itself. Request bodies never override them.
	stamped []string

	mu    sync.Mutex
	items []T
}

func (c *Collection[T]) Name() string {
	return c.name
}

// load reads the stored document. ok is false when nothing is stored yet.
func (c *Collection[T]) load(ctx context.Context) (ok bool, err error) {
	data, err := c.backend.Load(ctx, c.name)
	if errors.Is(err, storage.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", c.name, err)
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return true, nil
}

// seed stores items as the initial document.
func (c *Collection[T]) seed(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.persist(ctx, items); err != nil {
		return err
	}
	c.items = items
	return nil
}

// persist writes next as the whole collection. Callers hold mu and only
// commit next to c.items once persist succeeds.
func (c *Collection[T]) persist(ctx context.Context, next []T) error {
	if next == nil {
		next = []T{}
	}
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.name, err)
	}
	if err := c.backend.Save(ctx, c.name, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.name, err)
	}
	return nil
}

func (c *Collection[T]) indexOf(id int) int {
	return slices.IndexFunc(c.items, func(item T) bool {
		return c.id(&item) == id
	})
}

func (c *Collection[T]) nextID() int {
	ids := make([]int, len(c.items))
	for i := range c.items {
		ids[i] = c.id(&c.items[i])
	}
	return estimate.NextID(ids)
}

// List returns a copy of the collection in insertion order.
func (c *Collection[T]) List() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collection[T]) Get(id int) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, fmt.Errorf("%s %d: %w", c.name, id, ErrNotFound)
	}
	return c.items[i], nil
}

// Create assigns the next id to item, stamps it and appends it.
func (c *Collection[T]) Create(ctx context.Context, item T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setID(&item, c.nextID())
	if c.onCreate != nil {
		c.onCreate(&item, c.now())
	}

	next := append(slices.Clone(c.items), item)
	if err := c.persist(ctx, next); err != nil {
		var zero T
		return zero, err
	}
	c.items = next
	return item, nil
}

// CreateJSON decodes a partial entity and creates it. The id and stamped
// fields in the body are ignored whatever their type.
func (c *Collection[T]) CreateJSON(ctx context.Context, body []byte) (T, error) {
	var item T
	overlay, err := c.overlay(body)
	if err != nil {
		return item, err
	}
	if err := mergeJSON(&item, overlay); err != nil {
		return item, err
	}
	return c.Create(ctx, item)
}

// Modify applies fn to the entity with the given id, forces the id back to
// its original value, stamps it and persists the collection. Nothing changes
// if fn or the write fails.
func (c *Collection[T]) Modify(ctx context.Context, id int, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, fmt.Errorf("%s %d: %w", c.name, id, ErrNotFound)
	}

	item := c.items[i]
	if err := fn(&item); err != nil {
		return zero, err
	}
	c.setID(&item, id)
	if c.onUpdate != nil {
		c.onUpdate(&item, c.now())
	}

	next := slices.Clone(c.items)
	next[i] = item
	if err := c.persist(ctx, next); err != nil {
		return zero, err
	}
	c.items = next
	return item, nil
}

// Update shallow-merges the top-level fields present in body onto the
// stored entity. Fields absent from body keep their values. The id and
// stamped fields in the body are ignored.
func (c *Collection[T]) Update(ctx context.Context, id int, body []byte) (T, error) {
	overlay, err := c.overlay(body)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Modify(ctx, id, func(item *T) error {
		return mergeJSON(item, overlay)
	})
}

// Delete removes the entity if present. Deleting a missing id is not an
// error.
func (c *Collection[T]) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(c.items), func(item T) bool {
		return c.id(&item) == id
	})
	if err := c.persist(ctx, next); err != nil {
		return err
	}
	c.items = next
	return nil
}

// overlay parses a partial entity body into its top-level fields, minus the
// ones the collection owns.
func (c *Collection[T]) overlay(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	delete(fields, "id")
	for _, k := range c.stamped {
		delete(fields, k)
	}
	return fields, nil
}

func mergeJSON[T any](dst *T, overlay map[string]json.RawMessage) error {
	current, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(current, &fields); err != nil {
		return err
	}
	for k, v := range overlay {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	*dst = out
	return nil
}
