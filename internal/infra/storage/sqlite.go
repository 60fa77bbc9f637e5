package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"darkcross/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage defines the interface for data persistence
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.CrossRecord{}, &domain.OrderRecord{}, &domain.EngineState{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Cross Operations
// ======================================================================================

// SaveCross persists a priced cross decision.
func (s *Storage) SaveCross(rec *domain.CrossRecord) error {
	return s.db.Create(rec).Error
}

// RecentCrosses returns the most recent cross decisions for a symbol,
// newest first.
func (s *Storage) RecentCrosses(symbol string, limit int) ([]domain.CrossRecord, error) {
	var recs []domain.CrossRecord
	err := s.db.Where("symbol = ?", symbol).
		Order("seq DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// ======================================================================================
// Order Audit Operations
// ======================================================================================

// SaveOrder records an admitted order in the audit trail.
func (s *Storage) SaveOrder(rec *domain.OrderRecord) error {
	return s.db.Save(rec).Error
}

// GetOrder retrieves an audited order by engine ID
func (s *Storage) GetOrder(id uint64) (*domain.OrderRecord, error) {
	var rec domain.OrderRecord
	err := s.db.First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &rec, err
}

// ======================================================================================
// Engine State Operations
// ======================================================================================

// SaveCheckpoint stores the last processed sequence number.
func (s *Storage) SaveCheckpoint(seq uint64) error {
	state := domain.EngineState{
		Key:   "last_seq",
		Value: strconv.FormatUint(seq, 10),
	}
	return s.db.Save(&state).Error
}

// LoadCheckpoint returns the last stored sequence number, 0 when none.
func (s *Storage) LoadCheckpoint() (uint64, error) {
	var state domain.EngineState
	err := s.db.First(&state, "key = ?", "last_seq").Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(state.Value, 10, 64)
}
