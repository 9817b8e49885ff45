package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// DatabaseFile is the file name inside DataDir. Empty means
	// DefaultDatabaseFile.
	DatabaseFile string `json:"db_file" yaml:"db_file" mapstructure:"db_file"`

	// SearchLimit caps full-text results when SearchOptions.Limit is zero.
	SearchLimit int `json:"search_limit" yaml:"search_limit" mapstructure:"search_limit"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Defaults applied by Config.WithDefaults.
const (
	DefaultDatabaseFile = "showstore.db"
	DefaultSearchLimit  = 100
)

// Config validation errors.
var (
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrDataDirEmpty    = errors.New("data directory must not be empty")
	ErrSearchLimitBad  = errors.New("search limit must not be negative")
	ErrDatabaseFileBad = errors.New("database file must be a plain file name")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if c.SearchLimit < 0 {
		return ErrSearchLimitBad
	}
	for _, r := range c.DatabaseFile {
		if r == '/' || r == '\\' {
			return ErrDatabaseFileBad
		}
	}
	return nil
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.DatabaseFile == "" {
		c.DatabaseFile = DefaultDatabaseFile
	}
	if c.SearchLimit == 0 {
		c.SearchLimit = DefaultSearchLimit
	}
	return c
}
