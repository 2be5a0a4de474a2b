// Package config loads run settings from reqgraph.yaml, a .env file and
// REQGRAPH_* environment variables, in increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/reqgraph/internal/ir"
	"github.com/roach88/reqgraph/internal/ontology"
)

// FileName is the config file looked up when no path is given.
const FileName = "reqgraph.yaml"

// Environment overrides.
const (
	EnvOrderExisting = "REQGRAPH_ORDER_EXISTING"
	EnvLogLevel      = "REQGRAPH_LOG_LEVEL"
	EnvDatabase      = "REQGRAPH_DATABASE"
)

// Config holds the settings of a diagnosis run.
type Config struct {
	// Namespaces maps query prefixes to reasoner modules.
	Namespaces ir.Namespaces `yaml:"namespaces" validate:"required,min=1,dive"`

	// OrderExisting is the number of context hops the solver pulls in.
	OrderExisting int `yaml:"order_existing" validate:"min=0,max=5"`

	// BorderClasses and KeyClasses configure knowledge-graph partitioning.
	BorderClasses []string `yaml:"border_classes"`
	KeyClasses    []string `yaml:"key_classes"`

	// ExcludeRelations are object properties left out of the knowledge
	// graph.
	ExcludeRelations []string `yaml:"exclude_relations"`

	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Database is the SQLite path of the triple store. Empty means an
	// in-memory store rebuilt per run.
	Database string `yaml:"database"`

	// BusyTimeout is how long a store connection waits on a locked
	// database file.
	BusyTimeout time.Duration `yaml:"busy_timeout" validate:"min=0"`

	// CacheSize bounds the reasoner's memoized class closures.
	CacheSize int `yaml:"cache_size" validate:"min=0"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Namespaces:    ir.DefaultNamespaces(),
		OrderExisting: 1,
		LogLevel:      "info",
		BusyTimeout:   5 * time.Second,
		CacheSize:     ontology.DefaultCacheSize,
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads path over Default(), then applies .env and environment
// overrides and validates the result. An empty path tries FileName in the
// working directory and falls back to the defaults when it is absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode rejects keys Config does not declare. An empty file keeps the
// defaults.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvOrderExisting); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOrderExisting, err)
		}
		c.OrderExisting = n
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv(EnvDatabase); ok {
		c.Database = v
	}
	return nil
}
