// Package index keeps jobs and worker profiles in memory and answers
// predicate queries over them.
package index

import (
	"sort"
	"sync"

	"github.com/spigell/tradematch/internal/model"
)

// collection is a mutex-guarded set of records keyed by id.
type collection[T any] struct {
	mu       sync.RWMutex
	items    map[string]T
	key      func(T) string
	validate func(T) error
}

func newCollection[T any](key func(T) string, validate func(T) error) *collection[T] {
	return &collection[T]{
		items:    make(map[string]T),
		key:      key,
		validate: validate,
	}
}

func (c *collection[T]) upsert(item T) error {
	id := c.key(item)
	if id == "" {
		return model.Invalid("record id is required")
	}
	if err := c.validate(item); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = item
	return nil
}

// replace swaps the whole content. Nothing is applied when any item is invalid.
func (c *collection[T]) replace(items []T) error {
	next := make(map[string]T, len(items))
	for _, item := range items {
		id := c.key(item)
		if id == "" {
			return model.Invalid("record id is required")
		}
		if err := c.validate(item); err != nil {
			return err
		}
		next[id] = item
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = next
	return nil
}

func (c *collection[T]) delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	return item, ok
}

func (c *collection[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// find returns the matching records ordered by id.
func (c *collection[T]) find(match func(T) bool) []T {
	c.mu.RLock()
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if match == nil || match(item) {
			out = append(out, item)
		}
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return c.key(out[i]) < c.key(out[j])
	})
	return out
}
