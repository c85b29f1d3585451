package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"bricklink/cattree/internal/config"
	"bricklink/cattree/internal/container"
	"bricklink/cattree/internal/domain"
	"bricklink/cattree/internal/source"
	"bricklink/cattree/internal/tree"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string
	jsonOut    bool
	typeFlag   string
	filePath   string
	selector   string
	rootFlag   string

	stdout io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "cattree",
	Short: "Sync BrickLink catalog categories and render them as trees",
	Long: `cattree scrapes the BrickLink catalog category trees, stores them in
PostgreSQL and materialises them as nested trees, dropdown lists, menus and
breadcrumb paths. The read commands also work on any JSON file of flat
id/parent_id records via --file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel, "")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level, overrides log.level")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&typeFlag, "type", "t", "P", "Catalog type: S, P, M, G, B or its name")
	rootCmd.PersistentFlags().StringVarP(&filePath, "file", "f", "", "Read records from a JSON file instead of the database")
	rootCmd.PersistentFlags().StringVar(&selector, "select", source.DefaultSelector, "JSONPath selecting the records in --file")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Root identifier, overrides tree.root")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(level, format string) error {
	if level == "" {
		return nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// loadConfig reads the configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if rootFlag != "" {
		cfg.Tree.Root = rootFlag
	}
	if err := setupLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseTypeFlag() (domain.CategoryType, error) {
	return domain.ParseCategoryType(typeFlag)
}

// fileRecords loads --file, or returns nil when the database should be used.
func fileRecords() ([]tree.Record, error) {
	if filePath == "" {
		return nil, nil
	}
	return source.LoadFile(filePath, selector)
}

func withContainer(ctx context.Context, cfg *config.Config, fn func(*container.Container) error) error {
	app, err := container.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()
	return fn(app)
}

func printJSON(v any) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
