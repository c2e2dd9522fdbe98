package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/patientor/internal/platform/metrics"
)

const (
	resourcePatient = "patient"
	resourceEntry   = "entry"
)

type Service struct {
	parser  *Parser
	store   Store
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewService wires the parser to a store. m may be nil.
func NewService(parser *Parser, store Store, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{parser: parser, store: store, metrics: m, logger: logger}
}

// CreatePatient validates raw and stores the result. Nothing is stored when
// validation fails.
func (s *Service) CreatePatient(ctx context.Context, raw map[string]any) (*Patient, error) {
	np, err := s.parser.ToNewPatient(raw)
	if err != nil {
		s.rejected(resourcePatient, err)
		return nil, err
	}

	p, err := s.store.Create(ctx, np)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementRecordsCreated(resourcePatient)
	s.logger.Info().Str("patient_id", p.ID.String()).Msg("patient created")
	return p, nil
}

// AddEntry validates raw as an entry and appends it to the patient. An
// unknown patient is reported before the body is looked at.
func (s *Service) AddEntry(ctx context.Context, patientID uuid.UUID, raw map[string]any) (Entry, error) {
	if _, err := s.store.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	e, err := s.parser.ToNewEntry(raw)
	if err != nil {
		s.rejected(resourceEntry, err)
		return nil, err
	}

	stored, err := s.store.AddEntry(ctx, patientID, e)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementRecordsCreated(resourceEntry)
	s.logger.Info().
		Str("patient_id", patientID.String()).
		Str("entry_id", stored.Base().ID).
		Str("entry_type", string(stored.Type())).
		Msg("entry added")
	return stored, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.store.List(ctx, limit, offset)
}

// ListPublicPatients is ListPatients with ssn and entries removed.
func (s *Service) ListPublicPatients(ctx context.Context, limit, offset int) ([]PublicPatient, int, error) {
	patients, total, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PublicPatient, 0, len(patients))
	for _, p := range patients {
		out = append(out, p.Public())
	}
	return out, total, nil
}

func (s *Service) rejected(resource string, err error) {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return
	}
	s.metrics.IncrementValidationFailures(resource, ve.Field, string(ve.Kind))
	s.logger.Debug().
		Str("resource", resource).
		Str("field", ve.Field).
		Str("kind", string(ve.Kind)).
		Msg(ve.Message)
}
