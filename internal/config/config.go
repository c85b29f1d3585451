package config

import (
	"errors"
	"fmt"
	"strings"

	"bricklink/cattree/internal/tree"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	BrickLink BrickLinkConfig `mapstructure:"bricklink"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Tree      TreeConfig      `mapstructure:"tree"`
}

// LogConfig controls logrus output
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// BrickLinkConfig holds BrickLink catalog access configuration
type BrickLinkConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Timeout              int      `mapstructure:"timeout"`
	MaxRetries           int      `mapstructure:"max_retries"`
	MaxWorkers           int      `mapstructure:"max_workers"`
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	MaxSyncRetries       int      `mapstructure:"max_sync_retries"`
	Proxies              []string `mapstructure:"proxies"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// DSN returns the pgx connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
	TreeTTL       int    `mapstructure:"tree_ttl"` // seconds, 0 keeps snapshots forever
}

// TreeConfig describes the category records and how trees are rendered
type TreeConfig struct {
	PrimaryField  string `mapstructure:"primary_field"`
	ParentField   string `mapstructure:"parent_field"`
	NameField     string `mapstructure:"name_field"`
	Root          string `mapstructure:"root"`
	MaxDepth      int    `mapstructure:"max_depth"`
	PathDelimiter string `mapstructure:"path_delimiter"`
	MenuRoute     string `mapstructure:"menu_route"`
}

// Options converts the section into tree builder options
func (t TreeConfig) Options() tree.Options {
	return tree.Options{
		PrimaryField: t.PrimaryField,
		ParentField:  t.ParentField,
		NameField:    t.NameField,
		Root:         tree.ID(t.Root),
		MaxDepth:     t.MaxDepth,
	}
}

// Load loads configuration from a YAML file with environment variable overrides.
// An empty path looks for config.yaml in the current directory; a missing
// default file is not an error, defaults and environment are used instead.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("config.yaml not found in current directory, using defaults")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("bricklink.base_url", "https://www.bricklink.com")
	v.SetDefault("bricklink.timeout", 60)
	v.SetDefault("bricklink.max_retries", 3)
	v.SetDefault("bricklink.max_workers", 5)
	v.SetDefault("bricklink.max_requests_per_second", 2)
	v.SetDefault("bricklink.max_sync_retries", 5)
	v.SetDefault("bricklink.proxies", []string{})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "bricklink")
	v.SetDefault("database.user", "bricklink_user")
	v.SetDefault("database.password", "bricklink_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.consumer_group", "cattree_consumer")
	v.SetDefault("redis.min_idle_time", 120)
	v.SetDefault("redis.tree_ttl", 0)

	v.SetDefault("tree.primary_field", tree.DefaultPrimaryField)
	v.SetDefault("tree.parent_field", tree.DefaultParentField)
	v.SetDefault("tree.name_field", tree.DefaultNameField)
	v.SetDefault("tree.root", string(tree.DefaultRoot))
	v.SetDefault("tree.max_depth", tree.DefaultMaxDepth)
	v.SetDefault("tree.path_delimiter", tree.DefaultDelimiter)
	v.SetDefault("tree.menu_route", "/catalogList.asp?catString={id}")
}
