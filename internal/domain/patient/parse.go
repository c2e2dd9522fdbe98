package patient

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// CodeSet is the read-only diagnosis reference set the parser checks codes
// against. *diagnosis.Catalog implements it.
type CodeSet interface {
	Has(code string) bool
}

// isoDate is the only layout accepted in strict mode.
const isoDate = "2006-01-02"

// permissiveLayouts is the closed set of date layouts accepted by default.
// time.Parse rejects impossible calendar dates for all of them.
var permissiveLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	isoDate,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01",
	"2006",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

type Option func(*Parser)

// WithStrictDates restricts every date field to YYYY-MM-DD.
func WithStrictDates() Option {
	return func(p *Parser) { p.strictDates = true }
}

// Parser turns decoded request bodies into validated patients and entries.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	codes       CodeSet
	strictDates bool
}

func NewParser(codes CodeSet, opts ...Option) *Parser {
	p := &Parser{codes: codes}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ToNewPatient validates name, dateOfBirth, ssn, gender and occupation in
// that order and returns the first failure.
func (p *Parser) ToNewPatient(raw map[string]any) (*NewPatient, error) {
	name, err := parseString("name", "name", raw["name"])
	if err != nil {
		return nil, err
	}
	dob, err := p.parseDate("dateOfBirth", "date of birth", raw["dateOfBirth"])
	if err != nil {
		return nil, err
	}
	ssn, err := parseString("ssn", "social security number", raw["ssn"])
	if err != nil {
		return nil, err
	}
	gender, err := parseEnum("gender", "gender", raw["gender"], genders)
	if err != nil {
		return nil, err
	}
	occupation, err := parseString("occupation", "occupation", raw["occupation"])
	if err != nil {
		return nil, err
	}

	return &NewPatient{
		Name:        name,
		DateOfBirth: dob,
		SSN:         ssn,
		Gender:      gender,
		Occupation:  occupation,
		Entries:     []Entry{},
	}, nil
}

// ToNewEntry validates the type tag, the shared base fields and then the
// fields required by the selected variant. The returned entry has no id.
func (p *Parser) ToNewEntry(raw map[string]any) (Entry, error) {
	tag, err := parseEnum("type", "entry type", raw["type"], entryTypes)
	if err != nil {
		return nil, invalid("type", "Invalid entry type")
	}

	description, err := parseString("description", "entry description", raw["description"])
	if err != nil {
		return nil, err
	}
	date, err := p.parseDate("date", "entry date", raw["date"])
	if err != nil {
		return nil, err
	}
	specialist, err := parseString("specialist", "entry specialist", raw["specialist"])
	if err != nil {
		return nil, err
	}
	codes, err := p.parseDiagnosisCodes(raw["diagnosisCodes"])
	if err != nil {
		return nil, err
	}

	base := BaseEntry{
		Date:           date,
		Description:    description,
		Specialist:     specialist,
		DiagnosisCodes: codes,
	}

	switch tag {
	case EntryTypeHospital:
		if raw["discharge"] == nil {
			return nil, missing("discharge", "entry discharge data")
		}
		discharge, err := p.parseDischarge(raw["discharge"])
		if err != nil {
			return nil, err
		}
		return &HospitalEntry{BaseEntry: base, Discharge: discharge}, nil

	case EntryTypeHealthCheck:
		if raw["healthCheckRating"] == nil {
			return nil, missing("healthCheckRating", "entry health check rating data")
		}
		rating, err := parseHealthCheckRating(raw["healthCheckRating"])
		if err != nil {
			return nil, err
		}
		return &HealthCheckEntry{BaseEntry: base, HealthCheckRating: rating}, nil

	case EntryTypeOccupationalHealthcare:
		if raw["employerName"] == nil {
			return nil, missing("employerName", "entry employer name")
		}
		employer, err := parseString("employerName", "employer name", raw["employerName"])
		if err != nil {
			return nil, err
		}
		entry := &OccupationalHealthcareEntry{BaseEntry: base, EmployerName: employer}
		if raw["sickLeave"] != nil {
			sl, err := p.parseSickLeave(raw["sickLeave"])
			if err != nil {
				return nil, err
			}
			entry.SickLeave = sl
		}
		return entry, nil
	}

	// parseEnum only returns members of entryTypes.
	return nil, invalid("type", "Invalid entry type")
}

// -- Primitive validators --

func parseString(field, label string, v any) (string, error) {
	if v == nil {
		return "", missing(field, label)
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(field, label, "string", v)
	}
	if strings.TrimSpace(s) == "" {
		return "", missing(field, label)
	}
	return s, nil
}

func (p *Parser) parseDate(field, label string, v any) (string, error) {
	s, err := parseString(field, label, v)
	if err != nil {
		return "", err
	}
	if !p.isDate(s) {
		return "", invalid(field, "Incorrect "+label+": "+quote(s)+" is not a valid date")
	}
	return s, nil
}

func (p *Parser) isDate(s string) bool {
	if p.strictDates {
		_, err := time.Parse(isoDate, s)
		return err == nil
	}
	for _, layout := range permissiveLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func parseEnum[T ~string](field, label string, v any, allowed []T) (T, error) {
	var zero T
	if v == nil {
		return zero, missing(field, label)
	}
	s, ok := v.(string)
	if !ok {
		return zero, wrongType(field, label, "string", v)
	}
	for _, a := range allowed {
		if string(a) == s {
			return a, nil
		}
	}
	return zero, outOfRange(field, label, quote(s), joinEnum(allowed))
}

// parseDiagnosisCodes treats an absent field as no diagnoses. Input order is
// preserved.
func (p *Parser) parseDiagnosisCodes(v any) ([]string, error) {
	const field, label = "diagnosisCodes", "diagnosis codes"

	var items []any
	switch vv := v.(type) {
	case nil:
		return []string{}, nil
	case []any:
		items = vv
	case []string:
		items = make([]any, len(vv))
		for i, s := range vv {
			items[i] = s
		}
	default:
		return nil, wrongType(field, label, "array of strings", v)
	}

	codes := make([]string, 0, len(items))
	for _, item := range items {
		code, ok := item.(string)
		if !ok {
			return nil, wrongType(field, label, "array of strings", item)
		}
		if p.codes == nil || !p.codes.Has(code) {
			return nil, &ValidationError{
				Field:   field,
				Kind:    KindUnknownCode,
				Message: "Incorrect diagnosis codes: unknown code " + quote(code),
			}
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func (p *Parser) parseDischarge(v any) (Discharge, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Discharge{}, wrongType("discharge", "entry discharge data", "object", v)
	}
	date, err := p.parseDate("discharge.date", "discharge date", obj["date"])
	if err != nil {
		return Discharge{}, err
	}
	criteria, err := parseString("discharge.criteria", "discharge criteria", obj["criteria"])
	if err != nil {
		return Discharge{}, err
	}
	return Discharge{Date: date, Criteria: criteria}, nil
}

// parseSickLeave requires both dates once the object is present.
func (p *Parser) parseSickLeave(v any) (*SickLeave, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, wrongType("sickLeave", "sick leave dates", "object", v)
	}
	start, err := p.parseDate("sickLeave.startDate", "sick leave start date", obj["startDate"])
	if err != nil {
		return nil, err
	}
	end, err := p.parseDate("sickLeave.endDate", "sick leave end date", obj["endDate"])
	if err != nil {
		return nil, err
	}
	return &SickLeave{StartDate: start, EndDate: end}, nil
}

// parseHealthCheckRating coerces numbers and numeric strings, then requires
// an integer in 0..3.
func parseHealthCheckRating(v any) (HealthCheckRating, error) {
	const field, label = "healthCheckRating", "health check rating"

	switch v.(type) {
	case nil:
		return 0, missing(field, label)
	case bool, []any, map[string]any:
		return 0, wrongType(field, label, "number", v)
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, wrongType(field, label, "number", v)
	}
	if math.IsNaN(f) || f != math.Trunc(f) || f < float64(RatingHealthy) || f > float64(RatingCriticalRisk) {
		return 0, outOfRange(field, label, v, "0, 1, 2, 3")
	}
	return HealthCheckRating(f), nil
}

func quote(s string) string {
	return `"` + s + `"`
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
