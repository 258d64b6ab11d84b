// Package codec converts a world state to and from its portable text form
// and reassembles import payloads that arrive split across messages.
package codec

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Portable is the exported form of a world state. Exits refer to rooms by
// alias.
type Portable struct {
	StartingRoom RoomRecord   `json:"starting_room" yaml:"starting_room"`
	OtherRooms   []RoomRecord `json:"other_rooms" yaml:"other_rooms"`
	Exits        []ExitRecord `json:"exits" yaml:"exits"`
	CustomVerbs  []VerbRecord `json:"custom_verbs" yaml:"custom_verbs"`
	SavedItems   []ItemRecord `json:"saved_items" yaml:"saved_items"`
	Inventory    []ItemRecord `json:"inventory" yaml:"inventory"`
	// NextRoomID is the item id counter; the key name is kept for
	// compatibility with existing exports.
	NextRoomID int `json:"next_room_id" yaml:"next_room_id"`
}

type RoomRecord struct {
	Name        string       `json:"name" yaml:"name"`
	Alias       string       `json:"alias" yaml:"alias"`
	Description string       `json:"description" yaml:"description"`
	Items       []ItemRecord `json:"items" yaml:"items"`
	CustomVerbs []VerbRecord `json:"custom_verbs" yaml:"custom_verbs"`
}

type ExitRecord struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Room        string   `json:"room" yaml:"room"`
	Destination string   `json:"destination" yaml:"destination"`
	Visible     bool     `json:"visible" yaml:"visible"`
	Open        bool     `json:"is_open" yaml:"is_open"`
	KeyNames    []string `json:"key_names" yaml:"key_names"`
}

type ItemRecord struct {
	ItemID      int          `json:"item_id" yaml:"item_id"`
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Visible     bool         `json:"visible" yaml:"visible"`
	Takable     bool         `json:"takable,omitempty" yaml:"takable,omitempty"`
	CustomVerbs []VerbRecord `json:"custom_verbs" yaml:"custom_verbs"`
}

type VerbRecord struct {
	Names    []string `json:"names" yaml:"names"`
	Commands []string `json:"commands" yaml:"commands"`
}

// Encode renders p as indented JSON.
func Encode(p Portable) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode world: %w", err)
	}
	return data, nil
}

// EncodeYAML renders p as YAML.
func EncodeYAML(p Portable) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode world yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode world yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a JSON world.
func Decode(data []byte) (Portable, error) {
	var p Portable
	if err := json.Unmarshal(data, &p); err != nil {
		return Portable{}, fmt.Errorf("decode world: %w", err)
	}
	return p, nil
}

// DecodeYAML parses a YAML world.
func DecodeYAML(data []byte) (Portable, error) {
	var p Portable
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Portable{}, fmt.Errorf("decode world yaml: %w", err)
	}
	return p, nil
}
