package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryCreateRejectsUnidentifiedReferences(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Create(ctx, Document{Kind: KindExit, Refs: []string{""}})
	require.ErrorIs(t, err, ErrUnidentifiedReference)

	_, err = m.Create(ctx, Document{Kind: KindExit, Refs: []string{"01UNKNOWN"}})
	require.ErrorIs(t, err, ErrUnidentifiedReference)

	_, err = m.Create(ctx, Document{Kind: KindRoom, ID: "already"})
	require.ErrorIs(t, err, ErrAlreadyIdentified)
	require.Zero(t, m.Len())
}

func TestMemoryDeleteRefusesReferencedDocuments(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	room, err := m.Create(ctx, Document{Kind: KindRoom, Body: []byte(`{}`)})
	require.NoError(t, err)
	exit, err := m.Create(ctx, Document{Kind: KindExit, Refs: []string{room}})
	require.NoError(t, err)

	require.ErrorIs(t, m.Delete(ctx, KindRoom, room), ErrStillReferenced)
	require.NoError(t, m.Delete(ctx, KindExit, exit))
	require.NoError(t, m.Delete(ctx, KindRoom, room))
	require.ErrorIs(t, m.Delete(ctx, KindRoom, room), ErrNotFound)
}

func TestMemoryFindKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var ids []string
	for _, name := range []string{"b", "a", "c"} {
		id, err := m.Create(ctx, Document{Kind: KindUser, Index: map[string]string{"group": "x", "name": name}})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := m.Create(ctx, Document{Kind: KindWorld, Index: map[string]string{"group": "x"}})
	require.NoError(t, err)

	found, err := m.Find(ctx, KindUser, "group", "x")
	require.NoError(t, err)
	require.Len(t, found, 3)
	for i, doc := range found {
		require.Equal(t, ids[i], doc.ID)
	}

	named, err := m.Find(ctx, KindUser, "name", "a")
	require.NoError(t, err)
	require.Len(t, named, 1)
	require.Equal(t, ids[1], named[0].ID)
}

func TestMemoryUpdateChecksExistenceAndRefs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.Create(ctx, Document{Kind: KindRoom, Body: []byte(`{"name":"hall"}`)})
	require.NoError(t, err)

	require.ErrorIs(t, m.Update(ctx, Document{Kind: KindRoom, ID: "missing"}), ErrNotFound)
	require.ErrorIs(t, m.Update(ctx, Document{Kind: KindRoom, ID: id, Refs: []string{""}}), ErrUnidentifiedReference)
	require.NoError(t, m.Update(ctx, Document{Kind: KindRoom, ID: id, Body: []byte(`{"name":"hallway"}`)}))

	got, err := m.Get(ctx, KindRoom, id)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"hallway"}`, string(got.Body))
}
