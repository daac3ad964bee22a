package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]types.CallRecord
	dir     types.Directory
}

// NewMemoryStore creates an empty store with the given directory
func NewMemoryStore(dir types.Directory) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]types.CallRecord),
		dir:     copyDirectory(dir),
	}
}

// GetCallRecords returns records in [from, to), oldest first
func (s *MemoryStore) GetCallRecords(_ context.Context, from, to time.Time) ([]types.CallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]types.CallRecord, 0)
	for _, r := range s.records {
		if inRange(r.StartTime, from, to) {
			records = append(records, r)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].StartTime.Equal(records[j].StartTime) {
			return records[i].StartTime.Before(records[j].StartTime)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// SaveCallRecord validates and stores a record, assigning an id if missing
func (s *MemoryStore) SaveCallRecord(_ context.Context, record types.CallRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("failed to save call record: %w", err)
	}

	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()
	return nil
}

// GetDirectory returns a copy of the directory
func (s *MemoryStore) GetDirectory(_ context.Context) (types.Directory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyDirectory(s.dir), nil
}

// SaveDirectory replaces the directory
func (s *MemoryStore) SaveDirectory(_ context.Context, dir types.Directory) error {
	s.mu.Lock()
	s.dir = copyDirectory(dir)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func copyDirectory(dir types.Directory) types.Directory {
	return types.Directory{
		Queues:    append([]types.Queue(nil), dir.Queues...),
		Operators: append([]types.Operator(nil), dir.Operators...),
		Groups:    append([]types.Group(nil), dir.Groups...),
	}
}
