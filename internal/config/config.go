package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentx-labs/extbuild/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Dir returns the path to the user config directory (~/.extbuild/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the user config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// userFile opens the user config file in a fresh viper instance.
func userFile() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(FilePath())
	v.SetConfigType(fileType)
	// Ignore error if config file doesn't exist yet.
	_ = v.ReadInConfig()
	return v
}

// Get returns a value stored in the user config file. Returns empty
// string if not set.
func Get(key string) string {
	return userFile().GetString(key)
}

// Set writes a key-value pair to the user config file.
func Set(key, value string) error {
	if _, ok := keyIndex[key]; !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	v := userFile()
	v.Set(key, value)

	if err := v.WriteConfigAs(FilePath()); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
