package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataFile   string        `yaml:"data_file" mapstructure:"data_file"`
	BackupDir  string        `yaml:"backup_dir" mapstructure:"backup_dir"`
	ExportFile string        `yaml:"export_file" mapstructure:"export_file"`
	Storage    StorageConfig `yaml:"storage" mapstructure:"storage"`

	source string
}

type StorageConfig struct {
	// AtomicWrite saves through a temp file and a rename.
	AtomicWrite bool `yaml:"atomic_write" mapstructure:"atomic_write"`
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func DefaultConfig() *Config {
	return &Config{
		DataFile:   "school_DataBase.txt",
		BackupDir:  "snapshots",
		ExportFile: "registrar.xlsx",
	}
}

// DefaultPath is where `config init` writes when no path is given.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "registrar", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "registrar", "config.yaml")
}

// Load reads the configuration. With an empty explicit path it searches the
// working directory, then $XDG_CONFIG_HOME/registrar, then
// ~/.config/registrar; a missing file means defaults. REGISTRAR_* environment
// variables override file values (REGISTRAR_STORAGE_ATOMIC_WRITE for nested keys).
func Load(explicit string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	v.SetDefault("data_file", cfg.DataFile)
	v.SetDefault("backup_dir", cfg.BackupDir)
	v.SetDefault("export_file", cfg.ExportFile)
	v.SetDefault("storage.atomic_write", cfg.Storage.AtomicWrite)

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Search paths
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "registrar"))
		}
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "registrar"))
	}

	v.SetEnvPrefix("REGISTRAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error produced
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.source = v.ConfigFileUsed()

	cfg.DataFile = expandEnv(cfg.DataFile)
	cfg.BackupDir = expandEnv(cfg.BackupDir)
	cfg.ExportFile = expandEnv(cfg.ExportFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Source returns the config file that was read, or "" when running on defaults.
func (c *Config) Source() string { return c.source }

// Validate checks the configuration for errors and fills blanks with defaults.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if strings.TrimSpace(c.DataFile) == "" {
		c.DataFile = def.DataFile
	}
	if c.BackupDir == "" {
		c.BackupDir = def.BackupDir
	}
	if c.ExportFile == "" {
		c.ExportFile = def.ExportFile
	}
	if info, err := os.Stat(c.DataFile); err == nil && info.IsDir() {
		return fmt.Errorf("config: data_file %q is a directory", c.DataFile)
	}
	if ext := strings.ToLower(filepath.Ext(c.ExportFile)); ext != ".xlsx" {
		return fmt.Errorf("config: export_file %q must end in .xlsx", c.ExportFile)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path. An existing
// file is left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
