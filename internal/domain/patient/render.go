package patient

import (
	"fmt"
	"strings"
)

// DiagnosisNamer resolves a diagnosis code to its display name.
type DiagnosisNamer interface {
	Name(code string) (string, bool)
}

// Describe renders an entry as plain text lines, one detail per line.
func Describe(e Entry, names DiagnosisNamer) string {
	r := &textRenderer{names: names}
	e.Accept(r)
	return r.b.String()
}

type textRenderer struct {
	b     strings.Builder
	names DiagnosisNamer
}

func (r *textRenderer) header(icon string, b *BaseEntry) {
	fmt.Fprintf(&r.b, "[%s] %s\n", icon, b.Date)
	fmt.Fprintf(&r.b, "Specialist: %s\n", b.Specialist)
	fmt.Fprintf(&r.b, "%s\n", b.Description)
}

func (r *textRenderer) diagnoses(b *BaseEntry) {
	if len(b.DiagnosisCodes) == 0 {
		return
	}
	r.b.WriteString("Diagnoses:\n")
	for _, code := range b.DiagnosisCodes {
		name := ""
		if r.names != nil {
			name, _ = r.names.Name(code)
		}
		fmt.Fprintf(&r.b, "  %s: %s\n", code, name)
	}
}

func (r *textRenderer) VisitHospital(e *HospitalEntry) {
	r.header("hospital", &e.BaseEntry)
	fmt.Fprintf(&r.b, "Discharge from %s until: %s\n", e.Discharge.Date, e.Discharge.Criteria)
	r.diagnoses(&e.BaseEntry)
}

func (r *textRenderer) VisitOccupationalHealthcare(e *OccupationalHealthcareEntry) {
	r.header("occupational", &e.BaseEntry)
	fmt.Fprintf(&r.b, "Employer: %s\n", e.EmployerName)
	if e.SickLeave != nil {
		fmt.Fprintf(&r.b, "Sick leave from %s to %s\n", e.SickLeave.StartDate, e.SickLeave.EndDate)
	}
	r.diagnoses(&e.BaseEntry)
}

// VisitHealthCheck shows the rating as hearts, four for Healthy down to one
// for CriticalRisk.
func (r *textRenderer) VisitHealthCheck(e *HealthCheckEntry) {
	r.header("health check", &e.BaseEntry)
	hearts := 4 - int(e.HealthCheckRating)
	fmt.Fprintf(&r.b, "Health: %s%s (%s)\n",
		strings.Repeat("♥", hearts), strings.Repeat("♡", 4-hearts), e.HealthCheckRating)
	r.diagnoses(&e.BaseEntry)
}

// CloneEntry returns a deep copy of e.
func CloneEntry(e Entry) Entry {
	c := &cloner{}
	e.Accept(c)
	return c.out
}

type cloner struct {
	out Entry
}

func cloneBase(b BaseEntry) BaseEntry {
	b.DiagnosisCodes = append([]string{}, b.DiagnosisCodes...)
	return b
}

func (c *cloner) VisitHospital(e *HospitalEntry) {
	cp := *e
	cp.BaseEntry = cloneBase(e.BaseEntry)
	c.out = &cp
}

func (c *cloner) VisitOccupationalHealthcare(e *OccupationalHealthcareEntry) {
	cp := *e
	cp.BaseEntry = cloneBase(e.BaseEntry)
	if e.SickLeave != nil {
		sl := *e.SickLeave
		cp.SickLeave = &sl
	}
	c.out = &cp
}

func (c *cloner) VisitHealthCheck(e *HealthCheckEntry) {
	cp := *e
	cp.BaseEntry = cloneBase(e.BaseEntry)
	c.out = &cp
}
