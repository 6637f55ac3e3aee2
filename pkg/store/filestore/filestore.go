package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/schedule"
	"github.com/arnavshah/shift-relay-go/pkg/store"
)

// document is the on-disk layout of the store file
type document struct {
	Employees   []models.Employee        `json:"employees"`
	Shifts      []models.ShiftDefinition `json:"shifts"`
	NextShiftID int                      `json:"nextShiftId"`
}

// Store keeps employees and shifts in a single JSON file. Every mutation
// rewrites the file atomically.
type Store struct {
	path string
	mu   sync.Mutex
	doc  *document
}

var _ store.Store = (*Store)(nil)

// Open loads the file at path, creating it when it does not exist
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	if err := s.load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load store file: %w", err)
		}
		s.doc = &document{NextShiftID: 1}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.NextShiftID < 1 {
		doc.NextShiftID = 1
	}
	for _, def := range doc.Shifts {
		if def.ID >= doc.NextShiftID {
			doc.NextShiftID = def.ID + 1
		}
	}
	s.doc = &doc
	return nil
}

// save writes to a temp file and renames it over the store file
func (s *Store) save() error {
	tmp := s.path + ".tmp"
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// commit persists the document, restoring prev when the write fails so
// memory never diverges from disk.
func (s *Store) commit(prev document) error {
	if err := s.save(); err != nil {
		*s.doc = prev
		return fmt.Errorf("failed to save store file: %w", err)
	}
	return nil
}

func (s *Store) checkpoint() document {
	prev := document{NextShiftID: s.doc.NextShiftID}
	prev.Employees = append([]models.Employee(nil), s.doc.Employees...)
	prev.Shifts = append([]models.ShiftDefinition(nil), s.doc.Shifts...)
	return prev
}

func (s *Store) employeeIndex(name string) int {
	for i, e := range s.doc.Employees {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func (s *Store) shiftIndex(id int) int {
	for i, def := range s.doc.Shifts {
		if def.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Employee, len(s.doc.Employees))
	copy(out, s.doc.Employees)
	return out, nil
}

func (s *Store) GetEmployee(ctx context.Context, name string) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.employeeIndex(models.NormalizeName(name))
	if i < 0 {
		return models.Employee{}, fmt.Errorf("employee %s: %w", name, store.ErrNotFound)
	}
	return s.doc.Employees[i], nil
}

func (s *Store) CreateEmployee(ctx context.Context, e models.Employee) (models.Employee, error) {
	if err := store.PrepareEmployee(&e); err != nil {
		return models.Employee{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.employeeIndex(e.Name) >= 0 {
		return models.Employee{}, fmt.Errorf("employee %s: %w", e.Name, store.ErrDuplicate)
	}
	prev := s.checkpoint()
	s.doc.Employees = append(s.doc.Employees, e)
	if err := s.commit(prev); err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, name string, e models.Employee) (models.Employee, error) {
	if err := store.PrepareEmployee(&e); err != nil {
		return models.Employee{}, err
	}
	name = models.NormalizeName(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.employeeIndex(name)
	if i < 0 {
		return models.Employee{}, fmt.Errorf("employee %s: %w", name, store.ErrNotFound)
	}
	if e.Name != name && s.employeeIndex(e.Name) >= 0 {
		return models.Employee{}, fmt.Errorf("employee %s: %w", e.Name, store.ErrDuplicate)
	}
	prev := s.checkpoint()
	s.doc.Employees[i] = e
	if err := s.commit(prev); err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, name string) error {
	name = models.NormalizeName(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.employeeIndex(name)
	if i < 0 {
		return fmt.Errorf("employee %s: %w", name, store.ErrNotFound)
	}
	prev := s.checkpoint()
	s.doc.Employees = append(s.doc.Employees[:i:i], s.doc.Employees[i+1:]...)
	return s.commit(prev)
}

func (s *Store) ListShifts(ctx context.Context) ([]models.ShiftDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ShiftDefinition, len(s.doc.Shifts))
	copy(out, s.doc.Shifts)
	schedule.SortByOrder(out)
	return out, nil
}

func (s *Store) GetShift(ctx context.Context, id int) (models.ShiftDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.shiftIndex(id)
	if i < 0 {
		return models.ShiftDefinition{}, fmt.Errorf("shift %d: %w", id, store.ErrNotFound)
	}
	return s.doc.Shifts[i], nil
}

func (s *Store) CreateShift(ctx context.Context, def models.ShiftDefinition) (models.ShiftDefinition, error) {
	if err := store.PrepareShift(&def); err != nil {
		return models.ShiftDefinition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.checkpoint()
	def.ID = s.doc.NextShiftID
	s.doc.NextShiftID++
	s.doc.Shifts = append(s.doc.Shifts, def)
	if err := s.commit(prev); err != nil {
		return models.ShiftDefinition{}, err
	}
	return def, nil
}

func (s *Store) CreateShifts(ctx context.Context, defs []models.ShiftDefinition) ([]models.ShiftDefinition, error) {
	batch := append([]models.ShiftDefinition(nil), defs...)
	if err := store.PrepareShifts(batch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.checkpoint()
	for i := range batch {
		batch[i].ID = s.doc.NextShiftID
		s.doc.NextShiftID++
	}
	s.doc.Shifts = append(s.doc.Shifts, batch...)
	if err := s.commit(prev); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Store) UpdateShift(ctx context.Context, def models.ShiftDefinition) (models.ShiftDefinition, error) {
	if err := store.PrepareShift(&def); err != nil {
		return models.ShiftDefinition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.shiftIndex(def.ID)
	if i < 0 {
		return models.ShiftDefinition{}, fmt.Errorf("shift %d: %w", def.ID, store.ErrNotFound)
	}
	prev := s.checkpoint()
	s.doc.Shifts[i] = def
	if err := s.commit(prev); err != nil {
		return models.ShiftDefinition{}, err
	}
	return def, nil
}

func (s *Store) DeleteShift(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.shiftIndex(id)
	if i < 0 {
		return fmt.Errorf("shift %d: %w", id, store.ErrNotFound)
	}
	prev := s.checkpoint()
	s.doc.Shifts = append(s.doc.Shifts[:i:i], s.doc.Shifts[i+1:]...)
	return s.commit(prev)
}

// Close is a no-op; every mutation is already on disk
func (s *Store) Close() error {
	return nil
}
