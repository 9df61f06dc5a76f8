package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for drivemeta.
type Config struct {
	BaseDir   string `toml:"base_dir"`
	LogDir    string `toml:"log_dir"`
	OutputDir string `toml:"output_dir"`

	Drive      DriveConfig      `toml:"drive"`
	Extract    ExtractConfig    `toml:"extract"`
	Store      StoreConfig      `toml:"store"`
	Sink       SinkConfig       `toml:"sink"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// DriveConfig holds remote listing API settings.
type DriveConfig struct {
	Endpoint  string `toml:"endpoint,omitempty"` // empty means the public Drive v3 endpoint
	TokenPath string `toml:"token_path"`
	PageSize  int    `toml:"page_size"` // capped at 1000; 0 means the cap
}

// ExtractConfig holds extraction defaults.
type ExtractConfig struct {
	// Workers is clamped to [1, 4]. The remote API degrades under concurrency,
	// so the default stays sequential.
	Workers            int      `toml:"workers"`
	ItemTimeoutSeconds int      `toml:"item_timeout_seconds"` // per-item extraction deadline; 0 means 60
	Formats            []string `toml:"formats"`              // "csv", "json"
}

// StoreConfig represents configuration for the run-history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// SinkConfig represents configuration for the export artifact sink.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type SinkConfig struct {
	Type string `toml:"type"` // "filesystem", "s3", or "memory"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// EncryptionConfig holds artifact encryption settings. An empty type disables
// encryption entirely.
type EncryptionConfig struct {
	Type          string `toml:"type"` // "", "age", or "test"
	RecipientPath string `toml:"recipient_path,omitempty"`
}

// NewConfig creates a new Config with default locations under baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		OutputDir: filepath.Join(baseDir, "exports"),
		Drive: DriveConfig{
			TokenPath: filepath.Join(baseDir, "token"),
			PageSize:  1000,
		},
		Extract: ExtractConfig{
			Workers:            1,
			ItemTimeoutSeconds: 60,
			Formats:            []string{"csv", "json"},
		},
		Store: StoreConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Sink: SinkConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "exports"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
