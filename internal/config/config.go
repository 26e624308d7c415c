// Package config loads application configuration from a YAML file with
// AUTOAUDIT_* environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	User    string        `yaml:"user"`
	Paths   PathsConfig   `yaml:"paths"`
	OCR     OCRConfig     `yaml:"ocr"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// PathsConfig holds the evidence and results directory layout.
type PathsConfig struct {
	InputDir    string `yaml:"inputDir"`
	UploadDir   string `yaml:"uploadDir"`
	ResultsDir  string `yaml:"resultsDir"`
	PreviewsDir string `yaml:"previewsDir"`
	CSVPath     string `yaml:"csvPath"`
}

// OCRConfig holds Tesseract settings.
type OCRConfig struct {
	Language string `yaml:"language"`
	PSM      int    `yaml:"psm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		User: "user",
		Paths: PathsConfig{
			InputDir:    "evidence",
			UploadDir:   "evidence/tmp",
			ResultsDir:  "results/reports",
			PreviewsDir: "results/previews",
			CSVPath:     "scan_report.csv",
		},
		OCR: OCRConfig{
			Language: "eng",
			PSM:      6,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  32 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads AUTOAUDIT_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AUTOAUDIT_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("AUTOAUDIT_INPUT_DIR"); v != "" {
		cfg.Paths.InputDir = v
	}
	if v := os.Getenv("AUTOAUDIT_UPLOADS"); v != "" {
		cfg.Paths.UploadDir = v
	}
	if v := os.Getenv("AUTOAUDIT_RESULTS"); v != "" {
		cfg.Paths.ResultsDir = v
	}
	if v := os.Getenv("AUTOAUDIT_PREVIEWS"); v != "" {
		cfg.Paths.PreviewsDir = v
	}
	if v := os.Getenv("AUTOAUDIT_CSV"); v != "" {
		cfg.Paths.CSVPath = v
	}
	if v := os.Getenv("AUTOAUDIT_OCR_LANG"); v != "" {
		cfg.OCR.Language = v
	}
	if v := os.Getenv("AUTOAUDIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AUTOAUDIT_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("AUTOAUDIT_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("AUTOAUDIT_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
