package persistence

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewSessionStore creates a SessionStore based on the configuration.
func NewSessionStore(config StoreConfig) (SessionStore, error) {
	switch config.Type {
	case StoreTypeMemory, "":
		return NewMemorySessionStore(), nil
	case StoreTypeRedis:
		return NewRedisSessionStore(config.Redis)
	case StoreTypeSQLite, StoreTypeMySQL, StoreTypePostgres:
		dialector, err := dialectorFor(config)
		if err != nil {
			return nil, err
		}
		return NewGormSessionStore(dialector, config.Database)
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", config.Type)
	}
}

func dialectorFor(config StoreConfig) (gorm.Dialector, error) {
	dsn := config.Database.DSN
	switch config.Type {
	case StoreTypeSQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
		return sqlite.Open(dsn), nil
	case StoreTypeMySQL:
		if dsn == "" {
			return nil, fmt.Errorf("mysql store requires a dsn")
		}
		return mysql.Open(dsn), nil
	case StoreTypePostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres store requires a dsn")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("no dialector for store type %s", config.Type)
	}
}

// MustNewSessionStore creates a SessionStore or panics on error.
//
// WARNING: This function should ONLY be used during application
// initialization (e.g., in main() or init()). For runtime store creation,
// use NewSessionStore instead.
func MustNewSessionStore(config StoreConfig) SessionStore {
	store, err := NewSessionStore(config)
	if err != nil {
		panic(fmt.Sprintf("failed to create session store: %v", err))
	}
	return store
}
