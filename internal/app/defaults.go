package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - DRIVEMETA_CONFIG_PATH: config file location (default: ~/.config/drivemeta.toml)
//   - DRIVEMETA_HOME: base directory for drivemeta data (default: ~/.local/share/drivemeta)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"output_dir":  filepath.Join(baseDir, "output"),
	}, nil
}

// getConfigPath returns the config file path, checking DRIVEMETA_CONFIG_PATH env
// var first, then falling back to the default ~/.config/drivemeta.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("DRIVEMETA_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "drivemeta.toml"), nil
}

// getBaseDir returns the base directory for drivemeta data, checking
// DRIVEMETA_HOME env var first, then falling back to the XDG default
// ~/.local/share/drivemeta.
func getBaseDir() (string, error) {
	if path := os.Getenv("DRIVEMETA_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "drivemeta"), nil
}
