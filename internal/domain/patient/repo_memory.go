package patient

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.RWMutex
	patients []*Patient
	byID     map[uuid.UUID]*Patient
}

// NewMemoryStore keeps patients in process memory in insertion order.
func NewMemoryStore() Store {
	return &memoryStore{byID: make(map[uuid.UUID]*Patient)}
}

func (s *memoryStore) Create(_ context.Context, np *NewPatient) (*Patient, error) {
	p := &Patient{ID: uuid.New(), NewPatient: *np}
	p.Entries = make([]Entry, 0, len(np.Entries))
	for _, e := range np.Entries {
		cp := CloneEntry(e)
		if cp.Base().ID == "" {
			cp.Base().ID = uuid.NewString()
		}
		p.Entries = append(p.Entries, cp)
	}

	s.mu.Lock()
	s.patients = append(s.patients, p)
	s.byID[p.ID] = p
	s.mu.Unlock()

	return clonePatient(p), nil
}

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePatient(p), nil
}

func (s *memoryStore) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.patients)
	if offset >= total {
		return []*Patient{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}

	out := make([]*Patient, 0, end-offset)
	for _, p := range s.patients[offset:end] {
		out = append(out, clonePatient(p))
	}
	return out, total, nil
}

func (s *memoryStore) AddEntry(_ context.Context, patientID uuid.UUID, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[patientID]
	if !ok {
		return nil, ErrNotFound
	}
	stored := CloneEntry(e)
	stored.Base().ID = uuid.NewString()
	p.Entries = append(p.Entries, stored)
	return CloneEntry(stored), nil
}

func clonePatient(p *Patient) *Patient {
	cp := *p
	cp.Entries = make([]Entry, len(p.Entries))
	for i, e := range p.Entries {
		cp.Entries[i] = CloneEntry(e)
	}
	return &cp
}
