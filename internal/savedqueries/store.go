// Package savedqueries provides thread-safe in-memory storage of saved
// searches with file-based persistence.
//
// The store persists to a single JSON file with atomic writes and restores
// its state on startup. Persisting an empty list removes the file instead
// of writing it.
package savedqueries

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulsepoly/pulsepoly/internal/models"
)

// Store provides thread-safe saved-query storage with file persistence.
type Store struct {
	queries []models.SavedQuery
	mu      sync.RWMutex

	filePath        string
	filePermissions os.FileMode
	dirPermissions  os.FileMode
}

// New creates a Store persisting to filePath. If filePath is empty, an
// OS-appropriate tmp directory is used.
func New(filePath string, filePermissions, dirPermissions os.FileMode) *Store {
	if filePath == "" {
		filePath = filepath.Join(os.TempDir(), "pulsepoly", "saved-queries.json")
	}

	return &Store{
		queries:         make([]models.SavedQuery, 0),
		filePath:        filePath,
		filePermissions: filePermissions,
		dirPermissions:  dirPermissions,
	}
}

// Record saves a query the first time it succeeds with results. Repeat
// calls for the same (query, queryType, tagID) combination return the
// existing record and report created=false.
func (s *Store) Record(query string, queryType models.QueryType, tagID, categoryName string) (*models.SavedQuery, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.queries {
		if s.queries[i].Matches(query, queryType, tagID) {
			q := s.queries[i]
			return &q, false, nil
		}
	}

	record := models.SavedQuery{
		ID:           uuid.NewString(),
		Query:        query,
		QueryType:    queryType,
		TagID:        tagID,
		CategoryName: categoryName,
		SavedAt:      time.Now(),
	}
	if err := record.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid saved query: %w", err)
	}

	s.queries = append(s.queries, record)
	if err := s.persist(); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

// List returns all saved queries, pinned first, newest first within each
// group.
func (s *Store) List() []models.SavedQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SavedQuery, len(s.queries))
	copy(out, s.queries)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out
}

// TogglePin flips the pinned flag of one record.
func (s *Store) TogglePin(id string) (*models.SavedQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.queries {
		if s.queries[i].ID == id {
			s.queries[i].Pinned = !s.queries[i].Pinned
			if err := s.persist(); err != nil {
				return nil, err
			}
			q := s.queries[i]
			return &q, nil
		}
	}
	return nil, fmt.Errorf("saved query not found: %s", id)
}

// Remove deletes one record by id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.queries {
		if s.queries[i].ID == id {
			s.queries = append(s.queries[:i], s.queries[i+1:]...)
			return s.persist()
		}
	}
	return fmt.Errorf("saved query not found: %s", id)
}

// Clear removes every record and the backing file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = make([]models.SavedQuery, 0)
	return s.persist()
}

// Load restores state from the backing file. A missing file means a fresh
// start, not an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clean up any stale temp files from previous crashes
	tempPath := s.filePath + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		_ = os.Remove(tempPath)
	}

	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		return nil
	}

	jsonData, err := os.ReadFile(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var queries []models.SavedQuery
	if err := json.Unmarshal(jsonData, &queries); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	s.queries = queries
	if s.queries == nil {
		s.queries = make([]models.SavedQuery, 0)
	}
	return nil
}

// persist writes the current state atomically. Callers hold the lock.
func (s *Store) persist() error {
	if len(s.queries) == 0 {
		if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove file: %w", err)
		}
		return nil
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, s.dirPermissions); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(s.queries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temporary file first (atomic write)
	tempPath := s.filePath + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, s.filePermissions); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tempPath, s.filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
