package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgForeignKeyViolation is the SQLSTATE for a missing referenced row.
const pgForeignKeyViolation = "23503"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type storePG struct {
	pool *pgxpool.Pool
}

func NewStorePG(pool *pgxpool.Pool) Store {
	return &storePG{pool: pool}
}

const patientCols = `id, name, date_of_birth, ssn, gender, occupation`

const entryCols = `id, patient_id, entry_type, entry_date, description, specialist, diagnosis_codes,
	discharge_date, discharge_criteria, employer_name, sick_leave_start, sick_leave_end,
	health_check_rating`

func (r *storePG) Create(ctx context.Context, np *NewPatient) (*Patient, error) {
	p := &Patient{ID: uuid.New(), NewPatient: *np}
	p.Entries = make([]Entry, 0, len(np.Entries))

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO patient (`+patientCols+`)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.Name, p.DateOfBirth, p.SSN, string(p.Gender), p.Occupation,
		); err != nil {
			return err
		}
		for _, e := range np.Entries {
			stored, err := insertEntry(ctx, tx, p.ID, e)
			if err != nil {
				return err
			}
			p.Entries = append(p.Entries, stored)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("patient create: %w", err)
	}
	return p, nil
}

func (r *storePG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patient get by id: %w", err)
	}

	entries, err := r.entriesFor(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("patient get by id: %w", err)
	}
	p.Entries = entries[id]
	return p, nil
}

func (r *storePG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("patient count: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY seq LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("patient list: %w", err)
	}
	defer rows.Close()

	var patients []*Patient
	var ids []uuid.UUID
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("patient list: %w", err)
		}
		patients = append(patients, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("patient list: %w", err)
	}

	entries, err := r.entriesFor(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("patient list: %w", err)
	}
	for _, p := range patients {
		p.Entries = entries[p.ID]
	}
	return patients, total, nil
}

func (r *storePG) AddEntry(ctx context.Context, patientID uuid.UUID, e Entry) (Entry, error) {
	stored, err := insertEntry(ctx, r.pool, patientID, e)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("patient add entry: %w", err)
	}
	return stored, nil
}

// entriesFor loads entries for the given patients in insertion order. Every
// requested id gets a non-nil slice.
func (r *storePG) entriesFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]Entry, error) {
	out := make(map[uuid.UUID][]Entry, len(ids))
	for _, id := range ids {
		out[id] = []Entry{}
	}
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+entryCols+` FROM patient_entry WHERE patient_id = ANY($1) ORDER BY seq`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row entryRow
		if err := rows.Scan(
			&row.ID, &row.PatientID, &row.Type, &row.Date, &row.Description, &row.Specialist, &row.DiagnosisCodes,
			&row.DischargeDate, &row.DischargeCriteria, &row.EmployerName, &row.SickLeaveStart, &row.SickLeaveEnd,
			&row.HealthCheckRating,
		); err != nil {
			return nil, err
		}
		e, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		out[row.PatientID] = append(out[row.PatientID], e)
	}
	return out, rows.Err()
}

func insertEntry(ctx context.Context, q querier, patientID uuid.UUID, e Entry) (Entry, error) {
	stored := CloneEntry(e)
	id := uuid.New()
	stored.Base().ID = id.String()

	row := encodeEntry(stored)
	if row.DiagnosisCodes == nil {
		row.DiagnosisCodes = []string{}
	}
	_, err := q.Exec(ctx, `
		INSERT INTO patient_entry (`+entryCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, patientID, row.Type, row.Date, row.Description, row.Specialist, row.DiagnosisCodes,
		row.DischargeDate, row.DischargeCriteria, row.EmployerName, row.SickLeaveStart, row.SickLeaveEnd,
		row.HealthCheckRating,
	)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var gender string
	if err := row.Scan(&p.ID, &p.Name, &p.DateOfBirth, &p.SSN, &gender, &p.Occupation); err != nil {
		return nil, err
	}
	p.Gender = Gender(gender)
	p.Entries = []Entry{}
	return &p, nil
}

// entryRow maps to the patient_entry table. Variant columns are NULL for
// entries of other types.
type entryRow struct {
	ID                uuid.UUID
	PatientID         uuid.UUID
	Type              string
	Date              string
	Description       string
	Specialist        string
	DiagnosisCodes    []string
	DischargeDate     *string
	DischargeCriteria *string
	EmployerName      *string
	SickLeaveStart    *string
	SickLeaveEnd      *string
	HealthCheckRating *int16
}

func encodeEntry(e Entry) *entryRow {
	enc := &rowEncoder{}
	e.Accept(enc)
	return &enc.row
}

type rowEncoder struct {
	row entryRow
}

func (w *rowEncoder) base(t EntryType, b *BaseEntry) {
	w.row.Type = string(t)
	w.row.Date = b.Date
	w.row.Description = b.Description
	w.row.Specialist = b.Specialist
	w.row.DiagnosisCodes = b.DiagnosisCodes
}

func (w *rowEncoder) VisitHospital(e *HospitalEntry) {
	w.base(e.Type(), &e.BaseEntry)
	w.row.DischargeDate = &e.Discharge.Date
	w.row.DischargeCriteria = &e.Discharge.Criteria
}

func (w *rowEncoder) VisitOccupationalHealthcare(e *OccupationalHealthcareEntry) {
	w.base(e.Type(), &e.BaseEntry)
	w.row.EmployerName = &e.EmployerName
	if e.SickLeave != nil {
		w.row.SickLeaveStart = &e.SickLeave.StartDate
		w.row.SickLeaveEnd = &e.SickLeave.EndDate
	}
}

func (w *rowEncoder) VisitHealthCheck(e *HealthCheckEntry) {
	w.base(e.Type(), &e.BaseEntry)
	rating := int16(e.HealthCheckRating)
	w.row.HealthCheckRating = &rating
}

func (row *entryRow) toEntry() (Entry, error) {
	base := BaseEntry{
		ID:             row.ID.String(),
		Date:           row.Date,
		Description:    row.Description,
		Specialist:     row.Specialist,
		DiagnosisCodes: row.DiagnosisCodes,
	}
	if base.DiagnosisCodes == nil {
		base.DiagnosisCodes = []string{}
	}

	switch EntryType(row.Type) {
	case EntryTypeHospital:
		if row.DischargeDate == nil || row.DischargeCriteria == nil {
			return nil, fmt.Errorf("entry %s: hospital entry without discharge", row.ID)
		}
		return &HospitalEntry{
			BaseEntry: base,
			Discharge: Discharge{Date: *row.DischargeDate, Criteria: *row.DischargeCriteria},
		}, nil
	case EntryTypeOccupationalHealthcare:
		if row.EmployerName == nil {
			return nil, fmt.Errorf("entry %s: occupational entry without employer", row.ID)
		}
		e := &OccupationalHealthcareEntry{BaseEntry: base, EmployerName: *row.EmployerName}
		if row.SickLeaveStart != nil && row.SickLeaveEnd != nil {
			e.SickLeave = &SickLeave{StartDate: *row.SickLeaveStart, EndDate: *row.SickLeaveEnd}
		}
		return e, nil
	case EntryTypeHealthCheck:
		if row.HealthCheckRating == nil {
			return nil, fmt.Errorf("entry %s: health check entry without rating", row.ID)
		}
		return &HealthCheckEntry{BaseEntry: base, HealthCheckRating: HealthCheckRating(*row.HealthCheckRating)}, nil
	}
	return nil, fmt.Errorf("entry %s: unknown entry type %q", row.ID, row.Type)
}
