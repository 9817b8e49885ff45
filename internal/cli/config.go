package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/showstore/internal/paths"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyDBFile      = "db_file"
	cfgKeySearchLimit = "search_limit"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFormat   = "log_format"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# showstore configuration

backend: sqlite

# Data directory (optional; overridable by --data-dir)
# data_dir:

# Database file name inside the data directory
# db_file: showstore.db

# Maximum number of search hits when none is requested
# search_limit: 100

log_level: warn
log_format: console
`

// appConfig is everything the commands read from config.yaml and flags.
type appConfig struct {
	Store     types.Config
	ConfigDir string
	LogLevel  string
	LogFormat string
}

// loadConfig reads config.yaml from the resolved config directory, creating
// the directory and a default file on first run. Flags override file values.
func loadConfig(f rootFlags) (appConfig, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return appConfig{}, err
	}
	if err := ensureDefaultConfig(configDir); err != nil {
		return appConfig{}, err
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyDBFile, types.DefaultDatabaseFile)
	v.SetDefault(cfgKeySearchLimit, types.DefaultSearchLimit)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogFormat, "console")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return appConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	dataDir, err := paths.ResolveDataDir(f.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return appConfig{}, err
	}

	cfg := appConfig{
		Store: types.Config{
			Backend:      v.GetString(cfgKeyBackend),
			DataDir:      dataDir,
			DatabaseFile: v.GetString(cfgKeyDBFile),
			SearchLimit:  v.GetInt(cfgKeySearchLimit),
		},
		ConfigDir: configDir,
		LogLevel:  v.GetString(cfgKeyLogLevel),
		LogFormat: v.GetString(cfgKeyLogFormat),
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}
	if err := cfg.Store.Validate(); err != nil {
		return appConfig{}, fmt.Errorf("config %s: %w", filepath.Join(configDir, configFileName+"."+configFileType), err)
	}
	return cfg, nil
}

// ensureDefaultConfig creates the config directory and a default
// config.yaml if either is missing.
func ensureDefaultConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(configDir, configFileName+"."+configFileType)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
