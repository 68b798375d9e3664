package orchestrator

import (
	"errors"
	"sort"
	"sync"

	"github.com/AdarshSingh-ASR/WebSentinel/internal/models"
)

// ErrTaskNotFound is returned when a task id has no record.
var ErrTaskNotFound = errors.New("task not found")

// TaskStore holds task records for the lifetime of the process. Records
// are mutated only through Update, one task id at a time.
type TaskStore interface {
	Create(record *models.TaskRecord) error
	Get(taskID string) (*models.TaskRecord, error)
	Update(taskID string, mutate func(*models.TaskRecord)) error
	List() []*models.TaskRecord
}

// MemoryStore is a mutex-guarded in-memory TaskStore. Durability across
// restarts is explicitly out of scope.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.TaskRecord
}

var _ TaskStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]*models.TaskRecord{}}
}

func (s *MemoryStore) Create(record *models.TaskRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.TaskID]; exists {
		return errors.New("task already exists: " + record.TaskID)
	}
	clone := *record
	s.records[record.TaskID] = &clone
	return nil
}

// Get returns a snapshot of the record so readers never observe a write in
// progress.
func (s *MemoryStore) Get(taskID string) (*models.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *MemoryStore) Update(taskID string, mutate func(*models.TaskRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	mutate(record)
	return nil
}

// List returns snapshots of all records ordered by start time, oldest
// first.
func (s *MemoryStore) List() []*models.TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.TaskRecord, 0, len(s.records))
	for _, record := range s.records {
		clone := *record
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}
