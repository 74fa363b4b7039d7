package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/branchmove/branch-service/config"
	"github.com/branchmove/branch-service/internal/database"
	"github.com/branchmove/branch-service/internal/storage"
	"github.com/branchmove/branch-service/internal/store"
)

var (
	cfgFile      string
	outputFormat string
	cfg          *config.Config
	logger       *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "branch-service",
	Short: "Branch Service CLI - branch relocation recommendations",
	Long: `A CLI for the branch recommendation engine. Ask for a recommendation,
inspect the branch dataset and the supported preference criteria, import a
branch spreadsheet into the configured store, and check AI provider access.`,
	PersistentPreRunE: persistentPreRun,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table or json")
}

// persistentPreRun loads config and the logger before each command
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	switch strings.ToLower(outputFormat) {
	case "table", "json":
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", outputFormat)
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = initLogger()
	return nil
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	// Logs go to stderr so json output on stdout stays parseable
	var output io.Writer
	if cfg.Logging.Format == "json" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cfg.Logging.NoColor}
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

// openStore opens the configured branch store. The returned func releases it.
func openStore(ctx context.Context) (store.Store, func(), error) {
	switch cfg.Store.Type {
	case store.TypeFile:
		fs, err := openFileStore()
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	case store.TypePostgres:
		pg, err := openPostgresStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		return pg, database.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store type: %q", cfg.Store.Type)
}

func openFileStore() (*store.FileStore, error) {
	blobs, err := storage.NewLocalStorage(cfg.Store.BasePath)
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(blobs, cfg.Store.File, *logger), nil
}

func openPostgresStore(ctx context.Context) (*store.PostgresStore, error) {
	if err := database.Connect(ctx, database.Options{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConnections,
		MinConns:        cfg.Database.MinConnections,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Debug().Msg("Database connected")

	pg := store.NewPostgresStore(database.Pool())
	if err := pg.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return pg, nil
}

func jsonOutput() bool {
	return strings.ToLower(outputFormat) == "json"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx); err != nil {
		os.Exit(1)
	}
}
