package patient

import (
	"encoding/json"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

var genders = []Gender{GenderMale, GenderFemale, GenderOther}

// NewPatient is a validated patient that has not been assigned an id yet.
type NewPatient struct {
	Name        string  `json:"name"`
	DateOfBirth string  `json:"dateOfBirth"`
	SSN         string  `json:"ssn"`
	Gender      Gender  `json:"gender"`
	Occupation  string  `json:"occupation"`
	Entries     []Entry `json:"entries"`
}

// Patient maps to the patient table; entries live in patient_entry.
type Patient struct {
	ID uuid.UUID `json:"id"`
	NewPatient
}

// PublicPatient is the list view of a patient. It omits the SSN and entries.
type PublicPatient struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DateOfBirth string    `json:"dateOfBirth"`
	Gender      Gender    `json:"gender"`
	Occupation  string    `json:"occupation"`
}

func (p *Patient) Public() PublicPatient {
	return PublicPatient{
		ID:          p.ID,
		Name:        p.Name,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
		Occupation:  p.Occupation,
	}
}

// -- Entries --

type EntryType string

const (
	EntryTypeHospital               EntryType = "Hospital"
	EntryTypeOccupationalHealthcare EntryType = "OccupationalHealthcare"
	EntryTypeHealthCheck            EntryType = "HealthCheck"
)

var entryTypes = []EntryType{EntryTypeHospital, EntryTypeOccupationalHealthcare, EntryTypeHealthCheck}

// HealthCheckRating is an ordinal severity scale, 0 is best.
type HealthCheckRating int

const (
	RatingHealthy HealthCheckRating = iota
	RatingLowRisk
	RatingHighRisk
	RatingCriticalRisk
)

func (r HealthCheckRating) String() string {
	switch r {
	case RatingHealthy:
		return "Healthy"
	case RatingLowRisk:
		return "LowRisk"
	case RatingHighRisk:
		return "HighRisk"
	case RatingCriticalRisk:
		return "CriticalRisk"
	}
	return "Unknown"
}

// Entry is a clinical record attached to a patient. The set of
// implementations is closed: HospitalEntry, OccupationalHealthcareEntry and
// HealthCheckEntry.
type Entry interface {
	Type() EntryType
	Base() *BaseEntry
	Accept(v EntryVisitor)
	isEntry()
}

// EntryVisitor has one method per entry variant. Every consumer that needs to
// tell variants apart implements it, so a new variant fails to compile until
// all consumers handle it.
type EntryVisitor interface {
	VisitHospital(e *HospitalEntry)
	VisitOccupationalHealthcare(e *OccupationalHealthcareEntry)
	VisitHealthCheck(e *HealthCheckEntry)
}

type BaseEntry struct {
	ID             string   `json:"id,omitempty"`
	Date           string   `json:"date"`
	Description    string   `json:"description"`
	Specialist     string   `json:"specialist"`
	DiagnosisCodes []string `json:"diagnosisCodes"`
}

func (b *BaseEntry) Base() *BaseEntry { return b }

type Discharge struct {
	Date     string `json:"date"`
	Criteria string `json:"criteria"`
}

type SickLeave struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type HospitalEntry struct {
	BaseEntry
	Discharge Discharge `json:"discharge"`
}

type OccupationalHealthcareEntry struct {
	BaseEntry
	EmployerName string     `json:"employerName"`
	SickLeave    *SickLeave `json:"sickLeave,omitempty"`
}

type HealthCheckEntry struct {
	BaseEntry
	HealthCheckRating HealthCheckRating `json:"healthCheckRating"`
}

func (*HospitalEntry) Type() EntryType               { return EntryTypeHospital }
func (*OccupationalHealthcareEntry) Type() EntryType { return EntryTypeOccupationalHealthcare }
func (*HealthCheckEntry) Type() EntryType            { return EntryTypeHealthCheck }

func (e *HospitalEntry) Accept(v EntryVisitor)               { v.VisitHospital(e) }
func (e *OccupationalHealthcareEntry) Accept(v EntryVisitor) { v.VisitOccupationalHealthcare(e) }
func (e *HealthCheckEntry) Accept(v EntryVisitor)            { v.VisitHealthCheck(e) }

func (*HospitalEntry) isEntry()               {}
func (*OccupationalHealthcareEntry) isEntry() {}
func (*HealthCheckEntry) isEntry()            {}

// MarshalJSON adds the "type" discriminant to each variant.
func (e *HospitalEntry) MarshalJSON() ([]byte, error) {
	type alias HospitalEntry
	return json.Marshal(struct {
		Type EntryType `json:"type"`
		*alias
	}{e.Type(), (*alias)(e)})
}

func (e *OccupationalHealthcareEntry) MarshalJSON() ([]byte, error) {
	type alias OccupationalHealthcareEntry
	return json.Marshal(struct {
		Type EntryType `json:"type"`
		*alias
	}{e.Type(), (*alias)(e)})
}

func (e *HealthCheckEntry) MarshalJSON() ([]byte, error) {
	type alias HealthCheckEntry
	return json.Marshal(struct {
		Type EntryType `json:"type"`
		*alias
	}{e.Type(), (*alias)(e)})
}
