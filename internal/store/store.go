// Package store defines the document store contract the persistence layer
// writes world entities through.
//
// A store only accepts references to documents that already exist. That
// rule is what forces whole graphs to be committed leaf first.
package store

import (
	"context"
	"errors"
)

// Kind names a document collection.
type Kind string

const (
	KindVerb       Kind = "verb"
	KindRoom       Kind = "room"
	KindExit       Kind = "exit"
	KindItem       Kind = "item"
	KindInventory  Kind = "inventory"
	KindWorldState Kind = "world_state"
	KindWorld      Kind = "world"
	KindUser       Kind = "user"
	KindSnapshot   Kind = "snapshot"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrUnidentifiedReference indicates a document referenced an empty or unknown identity.
	ErrUnidentifiedReference = errors.New("reference to an entity without identity")
	// ErrStillReferenced indicates a delete was refused because another document points at the target.
	ErrStillReferenced = errors.New("document is still referenced")
	// ErrAlreadyIdentified indicates Create was called with a document that already has an id.
	ErrAlreadyIdentified = errors.New("document already has an identity")
)

// Document is one stored entity.
type Document struct {
	Kind Kind
	ID   string
	Body []byte
	// Refs lists the identities this document points at.
	Refs []string
	// Index holds the fields Find can look documents up by.
	Index map[string]string
}

// Store is the create/read/update/delete contract of the backing store.
type Store interface {
	// Create stores a new document and returns its identity.
	Create(ctx context.Context, doc Document) (string, error)
	// Update replaces an existing document.
	Update(ctx context.Context, doc Document) error
	// Delete removes a document nothing else references.
	Delete(ctx context.Context, kind Kind, id string) error
	// Get returns one document.
	Get(ctx context.Context, kind Kind, id string) (Document, error)
	// Find returns the documents of kind whose indexed field equals value,
	// in insertion order.
	Find(ctx context.Context, kind Kind, field, value string) ([]Document, error)
	// All returns every document of kind in insertion order.
	All(ctx context.Context, kind Kind) ([]Document, error)
	Close() error
}
