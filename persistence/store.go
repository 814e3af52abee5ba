// Package persistence provides session snapshot storage for swarm runs.
//
// A snapshot captures everything needed to resume an interrupted session:
// the transcript, the context store, the current and previous speakers, and
// the turn count. The session loop writes one after every turn when
// checkpointing is enabled.
//
// Supported backends:
// - Memory: For development and testing (default)
// - Redis: For distributed production deployments
// - GORM (sqlite/mysql/postgres): For single-node durable deployments
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/BaSui01/swarmflow/types"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrStoreClosed  = errors.New("store is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// StoreType represents the type of storage backend
type StoreType string

const (
	StoreTypeMemory   StoreType = "memory"
	StoreTypeRedis    StoreType = "redis"
	StoreTypeSQLite   StoreType = "sqlite"
	StoreTypeMySQL    StoreType = "mysql"
	StoreTypePostgres StoreType = "postgres"
)

// Snapshot is one resumable checkpoint of a session.
type Snapshot struct {
	SessionID     string          `json:"session_id"`
	Transcript    []types.Message `json:"transcript"`
	ContextVars   map[string]any  `json:"context_vars"`
	CurrentActor  string          `json:"current_actor"`
	PreviousActor string          `json:"previous_actor,omitempty"`
	Turns         int             `json:"turns"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SessionStore persists session snapshots.
type SessionStore interface {
	// Save writes or replaces the snapshot for its session ID.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the snapshot for sessionID, or ErrNotFound.
	Load(ctx context.Context, sessionID string) (*Snapshot, error)

	// Delete removes a session's snapshot. Deleting a missing session is
	// not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the stored session IDs.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// RedisStoreConfig holds Redis connection settings.
type RedisStoreConfig struct {
	Addr         string        `json:"addr" yaml:"addr"`
	Password     string        `json:"password" yaml:"password"`
	DB           int           `json:"db" yaml:"db"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	MinIdleConns int           `json:"min_idle_conns" yaml:"min_idle_conns"`
	KeyPrefix    string        `json:"key_prefix" yaml:"key_prefix"`
	SnapshotTTL  time.Duration `json:"snapshot_ttl" yaml:"snapshot_ttl"`
}

// DatabaseStoreConfig holds GORM-backed store settings.
type DatabaseStoreConfig struct {
	// DSN is the full connection string. For sqlite it is the file path,
	// ":memory:" for an in-memory database.
	DSN             string        `json:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// StoreConfig is the base configuration for all store implementations
type StoreConfig struct {
	// Type is the storage backend type
	Type StoreType `json:"type" yaml:"type"`

	// Redis configuration (only used when Type is "redis")
	Redis RedisStoreConfig `json:"redis" yaml:"redis"`

	// Database configuration (used for sqlite/mysql/postgres)
	Database DatabaseStoreConfig `json:"database" yaml:"database"`
}

// clone deep-copies a snapshot so store internals never alias caller state.
func (s *Snapshot) clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		SessionID:     s.SessionID,
		Transcript:    types.CopyMessages(s.Transcript),
		CurrentActor:  s.CurrentActor,
		PreviousActor: s.PreviousActor,
		Turns:         s.Turns,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.ContextVars != nil {
		out.ContextVars = make(map[string]any, len(s.ContextVars))
		for k, v := range s.ContextVars {
			out.ContextVars[k] = v
		}
	}
	return out
}
