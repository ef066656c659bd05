package config

import (
	"os"
	"path/filepath"
	"strings"

	"jqgen/internal/errs"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Mode selects how a run obtains its templates.
type Mode string

const (
	// ModeSchema composes templates from a schema description and a query config.
	ModeSchema Mode = "schema"
	// ModeStandalone expands a single user-written standalone config.
	ModeStandalone Mode = "standalone"
)

// Config captures all runtime options for a generation run.
type Config struct {
	Mode           Mode          `yaml:"mode"`
	Seed           int64         `yaml:"seed"`
	Workers        int           `yaml:"workers"`
	SchemaFile     string        `yaml:"schema_file"`
	QueryFile      string        `yaml:"query_file"`
	StandaloneFile string        `yaml:"standalone_file"`
	MatrixFile     string        `yaml:"matrix_file"`
	OutputDir      string        `yaml:"output_dir"`
	Workbook       string        `yaml:"workbook"`
	Overwrite      bool          `yaml:"overwrite"`
	QueryBaseName  string        `yaml:"query_base_name"`
	Collection     string        `yaml:"collection"`
	PrintQueries   bool          `yaml:"print_queries"`
	PrintOnly      bool          `yaml:"print_only"`
	Archive        bool          `yaml:"archive"`
	Logging        Logging       `yaml:"logging"`
	Storage        StorageConfig `yaml:"storage"`
}

// Logging controls stdout logging behavior.
type Logging struct {
	Verbose bool   `yaml:"verbose"`
	LogFile string `yaml:"log_file"`
}

// StorageConfig holds external storage settings.
type StorageConfig struct {
	S3  S3Config  `yaml:"s3"`
	GCS GCSConfig `yaml:"gcs"`
}

// CloudEnabled reports whether any cloud storage backend is enabled.
func (s StorageConfig) CloudEnabled() bool {
	return s.GCS.Enabled || s.S3.Enabled
}

// S3Config configures S3 uploads (legacy and S3-compatible endpoints).
type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// GCSConfig configures GCS uploads.
type GCSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Load reads configuration from a YAML file. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read run config")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse run config %s", path)
		}
	}
	normalizeConfig(&cfg)
	return cfg, nil
}

// Default returns the normalized default configuration.
func Default() Config {
	cfg := defaultConfig()
	normalizeConfig(&cfg)
	return cfg
}

// Normalize fills defaults that depend on other fields, e.g. after flag overrides.
func Normalize(cfg Config) Config {
	normalizeConfig(&cfg)
	return cfg
}

// Validate checks option combinations that cannot be normalized away.
func (c Config) Validate() error {
	if c.PrintQueries && c.PrintOnly {
		return errs.Configf("print_queries, print_only", "cannot print and print only together")
	}
	switch c.Mode {
	case ModeSchema:
		if c.SchemaFile == "" || c.QueryFile == "" {
			return errs.Configf(string(c.Mode), "schema mode needs schema_file and query_file")
		}
	case ModeStandalone:
		if c.StandaloneFile == "" {
			return errs.Configf(string(c.Mode), "standalone mode needs standalone_file")
		}
	default:
		return errs.Configf(string(c.Mode), "unknown mode")
	}
	if c.Storage.S3.Enabled && c.Storage.S3.Bucket == "" {
		return errs.Configf("storage.s3", "bucket is required")
	}
	if c.Storage.GCS.Enabled && c.Storage.GCS.Bucket == "" {
		return errs.Configf("storage.gcs", "bucket is required")
	}
	return nil
}

// WorkbookDir returns the directory holding the run's workbook.
func (c Config) WorkbookDir() string {
	if c.Workbook == "" {
		return c.OutputDir
	}
	return filepath.Join(c.OutputDir, c.Workbook)
}

func normalizeConfig(cfg *Config) {
	if cfg.Mode == "" {
		cfg.Mode = ModeSchema
	}
	cfg.Mode = Mode(strings.ToLower(string(cfg.Mode)))
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if strings.TrimSpace(cfg.QueryBaseName) == "" {
		cfg.QueryBaseName = "query"
	}
	cfg.Workbook = strings.Trim(cfg.Workbook, "/")
	cfg.Storage.S3.Prefix = strings.Trim(cfg.Storage.S3.Prefix, "/")
	cfg.Storage.GCS.Prefix = strings.Trim(cfg.Storage.GCS.Prefix, "/")
}

func defaultConfig() Config {
	return Config{
		Mode:          ModeSchema,
		Seed:          1,
		Workers:       1,
		OutputDir:     "output",
		QueryBaseName: "query",
		Storage: StorageConfig{
			S3: S3Config{Region: "us-east-1"},
		},
	}
}
