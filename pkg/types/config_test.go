package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "empty data dir returns ErrDataDirEmpty",
			config:  Config{Backend: BackendSQLite},
			wantErr: ErrDataDirEmpty,
		},
		{
			name:    "negative search limit",
			config:  Config{Backend: BackendSQLite, DataDir: "/tmp/data", SearchLimit: -1},
			wantErr: ErrSearchLimitBad,
		},
		{
			name:    "database file with separator",
			config:  Config{Backend: BackendSQLite, DataDir: "/tmp/data", DatabaseFile: "../x.db"},
			wantErr: ErrDatabaseFileBad,
		},
		{
			name:   "valid sqlite config",
			config: Config{Backend: BackendSQLite, DataDir: "/tmp/data"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	c := Config{Backend: BackendSQLite, DataDir: "/tmp"}.WithDefaults()
	assert.Equal(t, DefaultDatabaseFile, c.DatabaseFile)
	assert.Equal(t, DefaultSearchLimit, c.SearchLimit)

	c = Config{DatabaseFile: "x.db", SearchLimit: 5}.WithDefaults()
	assert.Equal(t, "x.db", c.DatabaseFile)
	assert.Equal(t, 5, c.SearchLimit)
}
