// Package roster persists the directory of known legislators and
// reconciles it with newly discovered names.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/plenaria/internal/model"
)

// Repository abstracts roster storage. Semantics are transactional at
// document granularity: load the whole roster, mutate in memory, save
// the whole roster. Callers serialize invocations per roster.
type Repository interface {
	Load() (*model.Roster, error)
	Save(*model.Roster) error
}

// FileRepository stores the roster as a single indented JSON document.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository at the given path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads the roster document. A missing file yields an empty
// roster, not an error: first discovery bootstraps the store.
func (r *FileRepository) Load() (*model.Roster, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return &model.Roster{Speakers: []model.Speaker{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var roster model.Roster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	return &roster, nil
}

// Save writes the whole roster document, replacing the previous one.
func (r *FileRepository) Save(roster *model.Roster) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("create roster dir: %w", err)
	}

	data, err := json.MarshalIndent(roster, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}

	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	return nil
}

// MemoryRepository keeps the roster in memory, for tests and dry runs.
type MemoryRepository struct {
	roster *model.Roster
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{roster: &model.Roster{Speakers: []model.Speaker{}}}
}

// Load returns a copy of the stored roster.
func (r *MemoryRepository) Load() (*model.Roster, error) {
	copied := *r.roster
	copied.Speakers = append([]model.Speaker(nil), r.roster.Speakers...)
	return &copied, nil
}

// Save replaces the stored roster.
func (r *MemoryRepository) Save(roster *model.Roster) error {
	copied := *roster
	copied.Speakers = append([]model.Speaker(nil), roster.Speakers...)
	r.roster = &copied
	return nil
}
