//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehr/patientor/internal/domain/diagnosis"
	"github.com/ehr/patientor/internal/domain/patient"
	"github.com/ehr/patientor/internal/platform/metrics"
)

func newParser() *patient.Parser {
	return patient.NewParser(diagnosis.MustCatalog(diagnosis.Defaults))
}

func newPatient(name string) *patient.NewPatient {
	return &patient.NewPatient{
		Name:        name,
		DateOfBirth: "1974-01-05",
		SSN:         "050174-432N",
		Gender:      patient.GenderFemale,
		Occupation:  "Forensic Pathologist",
	}
}

func TestPatientStorePG_CreateAndGet(t *testing.T) {
	resetPatients(t)
	ctx := context.Background()
	store := patient.NewStorePG(globalPool)

	np := newPatient("Dana Scully")
	np.Entries = []patient.Entry{
		&patient.HospitalEntry{
			BaseEntry: patient.BaseEntry{
				Date: "2015-01-02", Description: "Broken thumb", Specialist: "MD House",
				DiagnosisCodes: []string{"S62.5"},
			},
			Discharge: patient.Discharge{Date: "2015-01-16", Criteria: "Thumb has healed."},
		},
	}

	created, err := store.Create(ctx, np)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Len(t, created.Entries, 1)
	assert.NotEmpty(t, created.Entries[0].Base().ID)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana Scully", got.Name)
	assert.Equal(t, patient.GenderFemale, got.Gender)
	require.Len(t, got.Entries, 1)

	h, ok := got.Entries[0].(*patient.HospitalEntry)
	require.True(t, ok, "expected *HospitalEntry, got %T", got.Entries[0])
	assert.Equal(t, []string{"S62.5"}, h.DiagnosisCodes)
	assert.Equal(t, "Thumb has healed.", h.Discharge.Criteria)
	assert.Equal(t, created.Entries[0].Base().ID, h.ID)
}

func TestPatientStorePG_GetUnknown(t *testing.T) {
	_, err := patient.NewStorePG(globalPool).GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, patient.ErrNotFound)
}

func TestPatientStorePG_AddEntryVariants(t *testing.T) {
	resetPatients(t)
	ctx := context.Background()
	store := patient.NewStorePG(globalPool)

	p, err := store.Create(ctx, newPatient("Martin Riggs"))
	require.NoError(t, err)
	assert.Empty(t, p.Entries)

	entries := []patient.Entry{
		&patient.OccupationalHealthcareEntry{
			BaseEntry:    patient.BaseEntry{Date: "2019-08-05", Description: "Back pain", Specialist: "MD House"},
			EmployerName: "LAPD",
			SickLeave:    &patient.SickLeave{StartDate: "2019-08-05", EndDate: "2019-08-28"},
		},
		&patient.OccupationalHealthcareEntry{
			BaseEntry:    patient.BaseEntry{Date: "2019-09-01", Description: "Follow-up", Specialist: "MD House"},
			EmployerName: "LAPD",
		},
		&patient.HealthCheckEntry{
			BaseEntry:         patient.BaseEntry{Date: "2019-10-20", Description: "Yearly control visit", Specialist: "MD House"},
			HealthCheckRating: patient.RatingHighRisk,
		},
	}
	for _, e := range entries {
		stored, err := store.AddEntry(ctx, p.ID, e)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.Base().ID)
	}

	got, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Entries, 3)

	occ, ok := got.Entries[0].(*patient.OccupationalHealthcareEntry)
	require.True(t, ok)
	require.NotNil(t, occ.SickLeave)
	assert.Equal(t, "2019-08-28", occ.SickLeave.EndDate)
	assert.Empty(t, occ.DiagnosisCodes)
	assert.NotNil(t, occ.DiagnosisCodes)

	occ2, ok := got.Entries[1].(*patient.OccupationalHealthcareEntry)
	require.True(t, ok)
	assert.Nil(t, occ2.SickLeave)

	hc, ok := got.Entries[2].(*patient.HealthCheckEntry)
	require.True(t, ok)
	assert.Equal(t, patient.RatingHighRisk, hc.HealthCheckRating)
}

func TestPatientStorePG_AddEntryUnknownPatient(t *testing.T) {
	e := &patient.HealthCheckEntry{
		BaseEntry: patient.BaseEntry{Date: "2019-10-20", Description: "Visit", Specialist: "MD House"},
	}
	_, err := patient.NewStorePG(globalPool).AddEntry(context.Background(), uuid.New(), e)
	assert.ErrorIs(t, err, patient.ErrNotFound)
}

func TestPatientStorePG_ListPagination(t *testing.T) {
	resetPatients(t)
	ctx := context.Background()
	store := patient.NewStorePG(globalPool)

	names := []string{"John McClane", "Martin Riggs", "Hans Gruber", "Dana Scully", "Matti Luukkainen"}
	for _, n := range names {
		_, err := store.Create(ctx, newPatient(n))
		require.NoError(t, err)
	}

	page, total, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "John McClane", page[0].Name)
	assert.Equal(t, "Martin Riggs", page[1].Name)

	page, _, err = store.List(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Matti Luukkainen", page[0].Name)

	page, total, err = store.List(ctx, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}

func TestPatientStorePG_ConcurrentAddEntry(t *testing.T) {
	resetPatients(t)
	ctx := context.Background()
	store := patient.NewStorePG(globalPool)

	p, err := store.Create(ctx, newPatient("Hans Gruber"))
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AddEntry(ctx, p.ID, &patient.HealthCheckEntry{
				BaseEntry: patient.BaseEntry{Date: "2020-01-01", Description: "Check", Specialist: "MD House"},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Entries, n)
}

func TestService_SeedIntoPostgres(t *testing.T) {
	resetPatients(t)
	ctx := context.Background()
	store := patient.NewStorePG(globalPool)

	n, err := patient.Seed(ctx, newParser(), store)
	require.NoError(t, err)

	svc := patient.NewService(newParser(), store, metrics.New(prometheus.NewRegistry()), zerolog.Nop())
	public, total, err := svc.ListPublicPatients(ctx, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, n, total)
	assert.Len(t, public, n)
}

func TestService_RejectsBeforeStoring(t *testing.T) {
	resetPatients(t)
	ctx := context.Background()
	store := patient.NewStorePG(globalPool)
	svc := patient.NewService(newParser(), store, metrics.New(prometheus.NewRegistry()), zerolog.Nop())

	_, err := svc.CreatePatient(ctx, map[string]any{"name": "No Birthday"})
	require.True(t, patient.IsValidationError(err), "expected validation error, got %v", err)

	_, total, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}
