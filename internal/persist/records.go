package persist

import (
	"fmt"

	json "github.com/goccy/go-json"

	"Kilnworld/internal/store"
)

type verbRecord struct {
	Names    []string `json:"names"`
	Commands []string `json:"commands"`
}

type roomRecord struct {
	Alias       string   `json:"alias"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	State       string   `json:"world_state,omitempty"`
	Verbs       []string `json:"custom_verbs,omitempty"`
}

type exitRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Room        string   `json:"room"`
	Destination string   `json:"destination"`
	Visible     bool     `json:"visible"`
	Open        bool     `json:"is_open"`
	KeyNames    []string `json:"key_names,omitempty"`
}

// itemRecord carries at most one of Room and SavedIn. Inventory items carry
// neither; the inventory lists them.
type itemRecord struct {
	ItemID      int      `json:"item_id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Visible     bool     `json:"visible"`
	Takable     bool     `json:"takable"`
	Room        string   `json:"room,omitempty"`
	SavedIn     string   `json:"saved_in,omitempty"`
	Verbs       []string `json:"custom_verbs,omitempty"`
}

type inventoryRecord struct {
	User  string   `json:"user"`
	State string   `json:"world_state"`
	Items []string `json:"items,omitempty"`
}

type stateRecord struct {
	StartingRoom string   `json:"starting_room,omitempty"`
	NextItemID   int      `json:"next_item_id"`
	Verbs        []string `json:"custom_verbs,omitempty"`
}

type worldRecord struct {
	Name       string `json:"name"`
	Creator    string `json:"creator"`
	State      string `json:"world_state"`
	AllCanEdit bool   `json:"all_can_edit"`
}

type userRecord struct {
	Name string `json:"name"`
	Room string `json:"room,omitempty"`
}

type snapshotRecord struct {
	Name   string `json:"name"`
	State  string `json:"world_state"`
	Public bool   `json:"public"`
}

// document encodes rec with its references. Empty references are kept so
// the store rejects documents that point at uncommitted entities.
func document(kind store.Kind, id string, rec any, index map[string]string, refs []string) (store.Document, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return store.Document{}, fmt.Errorf("encode %s: %w", kind, err)
	}
	return store.Document{Kind: kind, ID: id, Body: body, Refs: append([]string(nil), refs...), Index: index}, nil
}

func decode(doc store.Document, rec any) error {
	if err := json.Unmarshal(doc.Body, rec); err != nil {
		return fmt.Errorf("decode %s %s: %w", doc.Kind, doc.ID, err)
	}
	return nil
}
