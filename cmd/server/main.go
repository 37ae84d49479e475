package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bridgedash/internal/config"
	"bridgedash/internal/dashboard"
	"bridgedash/internal/handlers"
	"bridgedash/internal/logging"
	"bridgedash/internal/models"
	"bridgedash/internal/parser"
	"bridgedash/internal/storage"
)

var (
	// Global flags
	configPath string
	verbose    bool
	port       string
	csvPath    string
	source     string
	dataDir    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bridgedash",
	Short: "Georgia bridge traffic dashboard",
	Long: `bridgedash serves an interactive dashboard over the Georgia bridge
inventory: the 20 most-trafficked bridges, a map of the top bridges and the
most common main span materials.

Run without a subcommand to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = c

		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		return err
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the bridge table and serve the dashboard",
	RunE:  runServe,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the bridge CSV into a PocketBase data directory",
	Long: `import reads the bridge CSV (--csv) and replaces the snapshot stored in
the PocketBase data directory (--dir). The server can then load the table with
--source pocketbase.`,
	RunE: runImport,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&port, "port", "", "HTTP port (overrides PORT)")
	flags.StringVar(&csvPath, "csv", "", "bridge CSV path (overrides DATA_FILE)")
	flags.StringVar(&source, "source", "", "table source: csv or pocketbase (overrides DATA_SOURCE)")
	flags.StringVar(&dataDir, "dir", "", "PocketBase data directory (overrides DATA_DIR)")

	rootCmd.AddCommand(serveCmd, importCmd)
}

// loadConfig layers defaults, the config file, the environment and finally
// any flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		c.Server.Port = port
	}
	if flags.Changed("csv") {
		c.Data.File = csvPath
	}
	if flags.Changed("source") {
		c.Data.Source = source
	}
	if flags.Changed("dir") {
		c.Data.Dir = dataDir
	}
	if verbose {
		c.Logging.Level = "debug"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func newManager() (*parser.Manager, error) {
	manager := parser.NewManager(logger)
	manager.RegisterSource(parser.NewCSVSource(cfg.Data.File, logger))

	if models.SourceMethod(cfg.Data.Source) == models.SourceMethodPocketBase {
		store, err := openStore()
		if err != nil {
			return nil, err
		}
		manager.RegisterSource(store)
	}
	return manager, nil
}

func openStore() (*storage.BridgeStore, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := storage.NewBridgeStore(cfg.Data.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, err := newManager()
	if err != nil {
		return err
	}
	defer manager.Cleanup()

	// The table is loaded once, before the first request.
	table, err := manager.Table(ctx, models.SourceMethod(cfg.Data.Source))
	if err != nil {
		return err
	}

	dash := dashboard.New(table, cfg.Dashboard())
	handler, err := handlers.NewDashboardHandler(dash, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("source", cfg.Data.Source),
			zap.Int("rows", table.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := parser.NewCSVSource(cfg.Data.File, logger)
	table, err := src.Load(ctx)
	if err != nil {
		logger.Error("failed to load bridge data", zap.Error(err))
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Cleanup()

	if err := store.SaveTable(ctx, table, src.Path()); err != nil {
		return fmt.Errorf("failed to import %s: %w", src.Path(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bridges from %s into %s\n", table.Len(), src.Path(), store.Dir())
	return nil
}

// run executes the root command and returns the process exit code. The
// logger is flushed whether or not the command succeeded.
func run(ctx context.Context) int {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(context.Background()))
}
