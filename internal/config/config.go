package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"ouvipanel/internal/dataset"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Datasets DatasetsConfig `yaml:"datasets" envconfig:"DATASETS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/ouvipanel.log"`
}

// DatasetsConfig carries the configured sources plus display options.
// Alias lists, encodings and junk substrings live here as data so a new
// export variant is a config change, not a code change.
type DatasetsConfig struct {
	Sources []dataset.Source `yaml:"sources"`

	// IncludeUndatedDefault controls whether records with no derivable
	// period are shown before the user touches the filter. Undated records
	// are an explicit opt-in bucket.
	IncludeUndatedDefault bool `yaml:"include_undated_default" envconfig:"INCLUDE_UNDATED_DEFAULT" default:"false"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("OUVI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg.Datasets.Sources = fileCfg.Datasets.Sources
		if len(fileCfg.Security.AllowedOrigins) > 0 {
			cfg.Security.AllowedOrigins = fileCfg.Security.AllowedOrigins
		}
	}

	if len(cfg.Datasets.Sources) == 0 {
		cfg.Datasets.Sources = DefaultSources()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// configFilePath returns the config file location, overridable for tests
// and packaging.
func configFilePath() string {
	if p := os.Getenv("OUVI_CONFIG_FILE"); p != "" {
		return p
	}
	return "ouvipanel.yaml"
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural constraints plus the per-source invariants the
// validator tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Datasets.Sources))
	for _, src := range c.Datasets.Sources {
		if src.Name == "" {
			return fmt.Errorf("dataset source with empty name")
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("duplicate dataset source name %q", src.Name)
		}
		seen[src.Name] = struct{}{}
		if src.Path == "" {
			return fmt.Errorf("dataset source %q has no path", src.Name)
		}
		if len(src.DateField.Aliases) == 0 {
			return fmt.Errorf("dataset source %q has no date field aliases", src.Name)
		}
	}
	return nil
}

// Source returns the configured source with the given name.
func (c *Config) Source(name string) (dataset.Source, bool) {
	for _, src := range c.Datasets.Sources {
		if src.Name == name {
			return src, true
		}
	}
	return dataset.Source{}, false
}

// DefaultSources describes the two snapshot exports the ouvidoria office
// works with: the satisfaction survey responses and the case-tracking
// records. Encodings are candidates in preference order; the exports come
// from environments that flip between UTF-8 and latin-1.
func DefaultSources() []dataset.Source {
	return []dataset.Source{
		{
			Name:      "pesquisa",
			Path:      "data/pesquisa.csv",
			Encodings: []string{"utf-8", "latin-1", "windows-1252"},
			Delimiter: ";",
			DayFirst:  true,
			DateField: dataset.AliasSpec{
				Field:   "response_date",
				Aliases: []string{"Resposta à Pesquisa", "Resposta à pesquisa"},
			},
			Required: []dataset.AliasSpec{
				{Field: "area", Aliases: []string{"Área"}},
				{Field: "manifestation_type", Aliases: []string{"Tipo de Manifestação"}},
			},
			Clean: []dataset.CleanSpec{
				{
					Field: dataset.AliasSpec{
						Field:   "satisfaction",
						Aliases: []string{"Você está satisfeito(a) com o atendimento prestado?"},
					},
					Junk: []string{"?? "},
				},
			},
		},
		{
			Name:      "demandas",
			Path:      "data/demandas.csv",
			Encodings: []string{"utf-8", "latin-1", "windows-1252"},
			Delimiter: ";",
			DayFirst:  true,
			DateField: dataset.AliasSpec{
				Field:   "opening_date",
				Aliases: []string{"Data de Abertura"},
			},
			Required: []dataset.AliasSpec{
				{Field: "area", Aliases: []string{"Área"}},
			},
		},
	}
}
