package adapters

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/satriahrh/lintas/domain/entities"
	"github.com/satriahrh/lintas/domain/repositories"
)

// MemoryTranslationRepository keeps the most recent translation records in memory
type MemoryTranslationRepository struct {
	mu       sync.RWMutex
	records  []*entities.TranslationRecord
	capacity int
}

var _ repositories.TranslationRepository = (*MemoryTranslationRepository)(nil)

// NewMemoryTranslationRepository creates a repository holding at most capacity records
func NewMemoryTranslationRepository(capacity int) *MemoryTranslationRepository {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryTranslationRepository{
		records:  make([]*entities.TranslationRecord, 0, capacity),
		capacity: capacity,
	}
}

// Create implements TranslationRepository; the oldest record is evicted when full
func (m *MemoryTranslationRepository) Create(ctx context.Context, record *entities.TranslationRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	if err := record.Validate(); err != nil {
		return err
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.records) == m.capacity {
		copy(m.records, m.records[1:])
		m.records = m.records[:len(m.records)-1]
	}
	stored := *record
	m.records = append(m.records, &stored)
	return nil
}

// ListRecent implements TranslationRepository
func (m *MemoryTranslationRepository) ListRecent(ctx context.Context, limit int) ([]*entities.TranslationRecord, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit > len(m.records) {
		limit = len(m.records)
	}

	result := make([]*entities.TranslationRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(result) < limit; i-- {
		record := *m.records[i]
		result = append(result, &record)
	}
	return result, nil
}
