// Package config loads runtime settings from defaults, an optional YAML
// file, a .env file and POMODOKO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Kzeezee/Pomodoko/internal/store"
)

// EnvPrefix is prepended to every environment override, e.g. POMODOKO_DATA_DIR.
const EnvPrefix = "POMODOKO"

// Config holds runtime configuration.
type Config struct {
	// DataDir holds the database and the preference document.
	DataDir string `mapstructure:"data_dir"`
	// DBFile is the database file name inside DataDir.
	DBFile string `mapstructure:"db_file"`
	// PreferencesFile is the preference document name inside DataDir.
	PreferencesFile string `mapstructure:"preferences_file"`

	Log   LogConfig   `mapstructure:"log"`
	Admin AdminConfig `mapstructure:"admin"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AdminConfig configures the loopback command server.
type AdminConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DBPath returns the full database path.
func (c *Config) DBPath() string {
	return joinDataDir(c.DataDir, c.DBFile)
}

// PreferencesPath returns the full preference document path.
func (c *Config) PreferencesPath() string {
	return joinDataDir(c.DataDir, c.PreferencesFile)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", store.GetStorePath())
	v.SetDefault("db_file", store.DefaultDBFile)
	v.SetDefault("preferences_file", store.DefaultPreferencesFile)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("admin.port", 8383)
	v.SetDefault("admin.shutdown_timeout", 15*time.Second)
}

// Load reads configuration. path may be empty, in which case only
// defaults and the environment apply. A missing file at an explicit path
// is an error; a .env file in the working directory is optional.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("config: data_dir must not be empty")
	}
	if c.DBFile == "" || c.PreferencesFile == "" {
		return errors.New("config: db_file and preferences_file must not be empty")
	}
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("config: admin.port %d out of range", c.Admin.Port)
	}
	return nil
}
