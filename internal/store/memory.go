package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Memory is a Store kept entirely in process memory. It enforces the same
// reference rules as the SQLite store, which makes it useful in tests.
type Memory struct {
	mu    sync.RWMutex
	docs  map[string]Document
	order []string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Document)}
}

// Create implements Store.
func (m *Memory) Create(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc.ID != "" {
		return "", fmt.Errorf("create %s %s: %w", doc.Kind, doc.ID, ErrAlreadyIdentified)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkRefs(doc); err != nil {
		return "", err
	}
	doc.ID = ulid.Make().String()
	m.docs[doc.ID] = cloneDocument(doc)
	m.order = append(m.order, doc.ID)
	return doc.ID, nil
}

// Update implements Store.
func (m *Memory) Update(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.docs[doc.ID]
	if !ok || current.Kind != doc.Kind {
		return fmt.Errorf("update %s %q: %w", doc.Kind, doc.ID, ErrNotFound)
	}
	if err := m.checkRefs(doc); err != nil {
		return err
	}
	m.docs[doc.ID] = cloneDocument(doc)
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(ctx context.Context, kind Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.docs[id]
	if !ok || current.Kind != kind {
		return fmt.Errorf("delete %s %q: %w", kind, id, ErrNotFound)
	}
	for _, other := range m.docs {
		if other.ID != id && slices.Contains(other.Refs, id) {
			return fmt.Errorf("delete %s %q referenced by %s %q: %w", kind, id, other.Kind, other.ID, ErrStillReferenced)
		}
	}
	delete(m.docs, id)
	m.order = slices.DeleteFunc(m.order, func(candidate string) bool { return candidate == id })
	return nil
}

// Get implements Store.
func (m *Memory) Get(ctx context.Context, kind Kind, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok || doc.Kind != kind {
		return Document{}, fmt.Errorf("get %s %q: %w", kind, id, ErrNotFound)
	}
	return cloneDocument(doc), nil
}

// Find implements Store.
func (m *Memory) Find(ctx context.Context, kind Kind, field, value string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Document
	for _, id := range m.order {
		doc := m.docs[id]
		if doc.Kind != kind {
			continue
		}
		if got, ok := doc.Index[field]; ok && got == value {
			out = append(out, cloneDocument(doc))
		}
	}
	return out, nil
}

// All implements Store.
func (m *Memory) All(ctx context.Context, kind Kind) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Document
	for _, id := range m.order {
		if doc := m.docs[id]; doc.Kind == kind {
			out = append(out, cloneDocument(doc))
		}
	}
	return out, nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }

// Len reports how many documents are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *Memory) checkRefs(doc Document) error {
	for _, ref := range doc.Refs {
		if ref == "" {
			return fmt.Errorf("%s references an unsaved entity: %w", doc.Kind, ErrUnidentifiedReference)
		}
		if _, ok := m.docs[ref]; !ok {
			return fmt.Errorf("%s references unknown id %q: %w", doc.Kind, ref, ErrUnidentifiedReference)
		}
	}
	return nil
}

func cloneDocument(doc Document) Document {
	doc.Body = slices.Clone(doc.Body)
	doc.Refs = slices.Clone(doc.Refs)
	doc.Index = maps.Clone(doc.Index)
	return doc
}

var _ Store = (*Memory)(nil)
