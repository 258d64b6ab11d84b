package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Kilnworld/internal/codec"
	"Kilnworld/internal/world"
)

var (
	exportWorld  string
	exportUser   string
	exportFormat string
	exportOut    string

	importName    string
	importCreator string
)

// exportCmd prints a stored world in its portable form.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print a stored world as portable JSON or YAML",
	Long: `Print a stored world in the same portable form the in-game 'export'
command produces. With --user, the items that player carries in the world
are exported as the inventory.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// importCmd creates a world from a portable file.
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Create a world from a portable JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVar(&exportWorld, "world", "", "Name of the world to export (required)")
	exportCmd.Flags().StringVar(&exportUser, "user", "", "Player whose inventory is exported")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json or yaml")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to this file instead of stdout")
	_ = exportCmd.MarkFlagRequired("world")

	importCmd.Flags().StringVar(&importName, "name", "", "Name of the new world (required)")
	importCmd.Flags().StringVar(&importCreator, "creator", "", "Existing player who will own the world (required)")
	_ = importCmd.MarkFlagRequired("name")
	_ = importCmd.MarkFlagRequired("creator")
}

func runExport(cmd *cobra.Command, args []string) error {
	h, closeStore, err := openHub(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	var w *world.World
	for _, candidate := range h.Worlds() {
		if strings.EqualFold(candidate.Name, exportWorld) {
			w = candidate
			break
		}
	}
	if w == nil {
		return fmt.Errorf("no world called %q", exportWorld)
	}

	var inv *world.Inventory
	if exportUser != "" {
		u, ok := h.User(exportUser)
		if !ok {
			return fmt.Errorf("no player called %q", exportUser)
		}
		for _, candidate := range w.State.Inventories {
			if candidate.User == u {
				inv = candidate
				break
			}
		}
	}

	p := codec.Export(w.State, inv)
	var data []byte
	switch strings.ToLower(exportFormat) {
	case "json":
		data, err = codec.Encode(p)
	case "yaml", "yml":
		data, err = codec.EncodeYAML(p)
	default:
		return fmt.Errorf("unknown format %q", exportFormat)
	}
	if err != nil {
		return err
	}

	if exportOut == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	logger.Info("world exported", zap.String("world", w.Name), zap.String("file", exportOut))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	var p codec.Portable
	switch strings.ToLower(filepath.Ext(args[0])) {
	case ".yaml", ".yml":
		p, err = codec.DecodeYAML(data)
	default:
		p, err = codec.Decode(data)
	}
	if err != nil {
		return err
	}

	h, closeStore, err := openHub(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	creator, ok := h.User(importCreator)
	if !ok {
		return fmt.Errorf("no player called %q; they must log in once first", importCreator)
	}
	w, err := h.ImportWorld(cmd.Context(), creator, p, importName)
	if err != nil {
		return err
	}
	logger.Info("world imported",
		zap.String("world", w.Name),
		zap.String("creator", creator.Name),
		zap.Int("rooms", len(w.State.Rooms)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s for %s.\n", w.Name, creator.Name)
	return nil
}
