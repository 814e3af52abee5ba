package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BaSui01/swarmflow/types"
)

// sessionRecord is the GORM row backing one snapshot. Transcript and
// context are stored as JSON blobs so the schema stays driver-neutral.
type sessionRecord struct {
	SessionID     string `gorm:"primaryKey;size:64"`
	Transcript    []byte `gorm:"type:blob"`
	ContextVars   []byte `gorm:"type:blob"`
	CurrentActor  string `gorm:"size:128"`
	PreviousActor string `gorm:"size:128"`
	Turns         int
	UpdatedAt     time.Time
}

func (sessionRecord) TableName() string { return "swarm_sessions" }

// GormSessionStore is a SessionStore backed by a relational database via
// GORM. Works with sqlite, mysql and postgres dialectors.
type GormSessionStore struct {
	db *gorm.DB
}

// NewGormSessionStore opens the dialector, applies pool settings and runs
// the schema migration.
func NewGormSessionStore(dialector gorm.Dialector, cfg DatabaseStoreConfig) (*GormSessionStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &GormSessionStore{db: db}, nil
}

// Save implements SessionStore.
func (s *GormSessionStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil || snap.SessionID == "" {
		return ErrInvalidInput
	}
	transcript, err := json.Marshal(snap.Transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	vars, err := json.Marshal(snap.ContextVars)
	if err != nil {
		return fmt.Errorf("failed to marshal context vars: %w", err)
	}

	rec := sessionRecord{
		SessionID:     snap.SessionID,
		Transcript:    transcript,
		ContextVars:   vars,
		CurrentActor:  snap.CurrentActor,
		PreviousActor: snap.PreviousActor,
		Turns:         snap.Turns,
		UpdatedAt:     snap.UpdatedAt,
	}
	return s.db.WithContext(ctx).Save(&rec).Error
}

// Load implements SessionStore.
func (s *GormSessionStore) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	var rec sessionRecord
	err := s.db.WithContext(ctx).First(&rec, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap := &Snapshot{
		SessionID:     rec.SessionID,
		CurrentActor:  rec.CurrentActor,
		PreviousActor: rec.PreviousActor,
		Turns:         rec.Turns,
		UpdatedAt:     rec.UpdatedAt,
	}
	if len(rec.Transcript) > 0 {
		var msgs []types.Message
		if err := json.Unmarshal(rec.Transcript, &msgs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
		}
		snap.Transcript = msgs
	}
	if len(rec.ContextVars) > 0 {
		var vars map[string]any
		if err := json.Unmarshal(rec.ContextVars, &vars); err != nil {
			return nil, fmt.Errorf("failed to unmarshal context vars: %w", err)
		}
		snap.ContextVars = vars
	}
	return snap, nil
}

// Delete implements SessionStore.
func (s *GormSessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "session_id = ?", sessionID).Error
}

// List implements SessionStore.
func (s *GormSessionStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&sessionRecord{}).
		Order("session_id").
		Pluck("session_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return ids, nil
}

// Close implements SessionStore.
func (s *GormSessionStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
