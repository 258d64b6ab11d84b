package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Kilnworld/commands"
	"Kilnworld/internal/config"
	"Kilnworld/internal/game"
	"Kilnworld/internal/logging"
	"Kilnworld/internal/store"
	"Kilnworld/internal/store/sqlite"
	"Kilnworld/internal/templates"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kilnworld",
	Short: "Kilnworld - a multiplayer text world shaped by its players",
	Long: `Kilnworld is a telnet and websocket server for shared text worlds.

Players create worlds from the lobby, build rooms and items with guided
prompts, and export or import whole worlds as portable JSON.

Settings come from KILN_* environment variables; flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("store") {
			cfg.StorePath = storePath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogDevelopment)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept telnet and websocket players",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	storePath     string
	logLevel      string
	telnetAddr    string
	websocketAddr string
	templatesPath string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "SQLite store path, or :memory: (default from KILN_STORE_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (default from KILN_LOG_LEVEL)")

	serveCmd.Flags().StringVar(&telnetAddr, "telnet", "", "Telnet listen address, empty in env disables it (default from KILN_TELNET_ADDR)")
	serveCmd.Flags().StringVar(&websocketAddr, "websocket", "", "Websocket listen address (default from KILN_WEBSOCKET_ADDR)")
	serveCmd.Flags().StringVar(&templatesPath, "templates", "", "Directory of public world templates (default from KILN_TEMPLATES_PATH)")

	rootCmd.AddCommand(serveCmd, exportCmd, importCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("telnet") {
		cfg.TelnetAddr = telnetAddr
	}
	if cmd.Flags().Changed("websocket") {
		cfg.WebSocketAddr = websocketAddr
	}
	if cmd.Flags().Changed("templates") {
		cfg.TemplatesPath = templatesPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, closeStore, err := openHub(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := templates.Load(ctx, h, cfg.TemplatesPath)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	logger.Info("kilnworld starting",
		zap.String("telnet", cfg.TelnetAddr),
		zap.String("websocket", cfg.WebSocketAddr),
		zap.String("store", cfg.StorePath),
		zap.Int("new_templates", n),
	)

	err = game.ListenAndServe(ctx, h, commands.Dispatch, game.ServerConfig{
		TelnetAddr:    cfg.TelnetAddr,
		WebSocketAddr: cfg.WebSocketAddr,
		MessageLimit:  cfg.MessageLimit,
	})
	if err != nil {
		return err
	}
	logger.Info("kilnworld stopped")
	return nil
}

// openHub opens the configured store and loads every world from it.
func openHub(ctx context.Context) (*game.Hub, func(), error) {
	var st store.Store
	if cfg.StorePath == config.MemoryStore {
		st = store.NewMemory()
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create store directory: %w", err)
		}
		db, err := sqlite.Open(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		st = db
	}
	closeStore := func() {
		if err := st.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}

	h, err := game.LoadHub(ctx, st, game.Options{
		Logger:       logger,
		ImportLimit:  cfg.ImportMaxBytes,
		ObserverName: cfg.ObserverName,
		ObserverHash: cfg.ObserverHash,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return h, closeStore, nil
}
