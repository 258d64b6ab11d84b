// Package templates seeds the server with public snapshots read from a
// directory of exported worlds.
package templates

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"Kilnworld/internal/codec"
	"Kilnworld/internal/game"
	"Kilnworld/internal/world"
)

// Load registers every *.json, *.yaml and *.yml file of dir as a public
// snapshot named after the file. Snapshots that already exist are left
// alone. A missing directory loads nothing.
func Load(ctx context.Context, h *game.Hub, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read templates: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || decoderFor(entry.Name()) == nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	loaded := 0
	for _, file := range names {
		name := templateName(file)
		if h.HasSnapshot(name) {
			continue
		}
		snap, err := readTemplate(filepath.Join(dir, file), name)
		if err != nil {
			return loaded, err
		}
		if err := h.RegisterSnapshot(ctx, snap); err != nil {
			return loaded, fmt.Errorf("register template %s: %w", file, err)
		}
		h.Logger().Info("template loaded", zap.String("name", name), zap.Int("rooms", len(snap.State.Rooms)))
		loaded++
	}
	return loaded, nil
}

func readTemplate(path, name string) (*world.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", filepath.Base(path), err)
	}
	p, err := decoderFor(path)(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", filepath.Base(path), err)
	}
	state, err := codec.BuildState(p, nil)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", filepath.Base(path), err)
	}
	return &world.Snapshot{Name: name, State: state, Public: true}, nil
}

func decoderFor(file string) func([]byte) (codec.Portable, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return codec.Decode
	case ".yaml", ".yml":
		return codec.DecodeYAML
	default:
		return nil
	}
}

// templateName turns "castle_keep.yaml" into "castle keep".
func templateName(file string) string {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	return strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
}
