package backend

import (
	"fmt"

	"fintrack/internal/config"
	"fintrack/internal/storage"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s (must be one of %v)", appConfig.DataBackend, GetBackendTypeStrings())
	}

	return Config{
		Type:           backendType,
		SQLiteDSN:      appConfig.SQLiteDSN,
		BudgetsEnabled: appConfig.BudgetsEnabled,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s (must be one of %v)", c.Type, GetBackendTypeStrings())
	}

	if c.Type == SQLiteBackend {
		if c.SQLiteDSN == "" {
			return fmt.Errorf("SQLite DSN is required for sqlite backend")
		}
		if !storage.IsMemoryDSN(c.SQLiteDSN) {
			return fmt.Errorf("SQLite DSN %q is not in-memory: %w", c.SQLiteDSN, storage.ErrDurableDSN)
		}
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
