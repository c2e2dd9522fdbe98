package patient

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func newTestNewPatient(name string) *NewPatient {
	return &NewPatient{
		Name: name, DateOfBirth: "1970-04-25", SSN: "250470-555L",
		Gender: GenderOther, Occupation: "Technician", Entries: []Entry{},
	}
}

func TestMemoryStore_CreateAssignsID(t *testing.T) {
	s := NewMemoryStore()
	p, err := s.Create(context.Background(), newTestNewPatient("Hans Gruber"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
	if p.Entries == nil || len(p.Entries) != 0 {
		t.Errorf("expected empty entries, got %v", p.Entries)
	}

	got, err := s.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Hans Gruber" {
		t.Errorf("expected Hans Gruber, got %s", got.Name)
	}
}

func TestMemoryStore_GetByID_NotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_AddEntryAppendsInOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p, _ := s.Create(ctx, newTestNewPatient("Dana Scully"))

	first, err := s.AddEntry(ctx, p.ID, &HealthCheckEntry{BaseEntry: BaseEntry{Date: "2018-10-05"}, HealthCheckRating: RatingLowRisk})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.AddEntry(ctx, p.ID, &HealthCheckEntry{BaseEntry: BaseEntry{Date: "2019-10-20"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Base().ID == "" || first.Base().ID == second.Base().ID {
		t.Errorf("expected distinct entry ids, got %q and %q", first.Base().ID, second.Base().ID)
	}

	got, _ := s.GetByID(ctx, p.ID)
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	if got.Entries[0].Base().Date != "2018-10-05" || got.Entries[1].Base().Date != "2019-10-20" {
		t.Error("entries not in insertion order")
	}
}

func TestMemoryStore_AddEntry_UnknownPatient(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.AddEntry(context.Background(), uuid.New(), &HealthCheckEntry{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p, _ := s.Create(ctx, newTestNewPatient("Martin Riggs"))
	s.AddEntry(ctx, p.ID, &HospitalEntry{BaseEntry: BaseEntry{DiagnosisCodes: []string{"S03.5"}}})

	got, _ := s.GetByID(ctx, p.ID)
	got.Name = "changed"
	got.Entries[0].Base().DiagnosisCodes[0] = "changed"

	again, _ := s.GetByID(ctx, p.ID)
	if again.Name != "Martin Riggs" {
		t.Error("patient mutated through returned copy")
	}
	if again.Entries[0].Base().DiagnosisCodes[0] != "S03.5" {
		t.Error("entry mutated through returned copy")
	}
}

func TestMemoryStore_List(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		s.Create(ctx, newTestNewPatient(name))
	}

	all, total, err := s.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("expected 3 patients, got %d of %d", len(all), total)
	}
	if all[0].Name != "a" || all[2].Name != "c" {
		t.Error("expected insertion order")
	}

	page, total, _ := s.List(ctx, 1, 1)
	if total != 3 || len(page) != 1 || page[0].Name != "b" {
		t.Errorf("unexpected page: %d of %d", len(page), total)
	}

	empty, _, _ := s.List(ctx, 10, 5)
	if len(empty) != 0 {
		t.Errorf("expected empty page, got %d", len(empty))
	}
}

func TestMemoryStore_ConcurrentAddEntry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p, _ := s.Create(ctx, newTestNewPatient("Matti Luukkainen"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddEntry(ctx, p.ID, &HealthCheckEntry{})
		}()
	}
	wg.Wait()

	got, _ := s.GetByID(ctx, p.ID)
	if len(got.Entries) != 50 {
		t.Errorf("expected 50 entries, got %d", len(got.Entries))
	}
}
