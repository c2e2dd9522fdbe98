package patient

import (
	"context"

	"github.com/google/uuid"
)

// Store persists validated patients. Implementations assign ids: Create sets
// Patient.ID and AddEntry sets the entry id.
type Store interface {
	Create(ctx context.Context, p *NewPatient) (*Patient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	AddEntry(ctx context.Context, patientID uuid.UUID, e Entry) (Entry, error)
}
