package patient

import (
	"github.com/ehr/patientor/internal/domain/diagnosis"
	"github.com/ehr/patientor/internal/platform/fhir"
)

const (
	ssnSystem             = "urn:oid:1.2.246.21"
	occupationExtension   = "http://hl7.org/fhir/StructureDefinition/patient-occupation"
	sickLeaveExtension    = "urn:patientor:sick-leave"
	healthRatingExtension = "urn:patientor:health-check-rating"
	encounterClassSystem  = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
)

// ToFHIR renders the patient as a FHIR Patient resource with each entry as a
// contained Encounter.
func (p *Patient) ToFHIR(names DiagnosisNamer) map[string]interface{} {
	id := p.ID.String()
	result := map[string]interface{}{
		"resourceType": "Patient",
		"id":           id,
		"name":         []fhir.HumanName{{Use: "official", Text: p.Name}},
		"identifier": []fhir.Identifier{
			{Use: "official", System: ssnSystem, Value: p.SSN},
		},
		"gender":    string(p.Gender),
		"birthDate": p.DateOfBirth,
		"extension": []fhir.Extension{
			{URL: occupationExtension, ValueString: p.Occupation},
		},
	}

	if len(p.Entries) > 0 {
		contained := make([]map[string]interface{}, 0, len(p.Entries))
		for _, e := range p.Entries {
			contained = append(contained, EntryToFHIR(id, e, names))
		}
		result["contained"] = contained
	}
	return result
}

// EntryToFHIR renders an entry as a FHIR Encounter for the given patient.
func EntryToFHIR(patientID string, e Entry, names DiagnosisNamer) map[string]interface{} {
	r := &encounterRenderer{patientID: patientID, names: names}
	e.Accept(r)
	return r.out
}

type encounterRenderer struct {
	patientID string
	names     DiagnosisNamer
	out       map[string]interface{}
}

func (r *encounterRenderer) base(b *BaseEntry, class string) map[string]interface{} {
	m := map[string]interface{}{
		"resourceType": "Encounter",
		"status":       "finished",
		"class":        fhir.Coding{System: encounterClassSystem, Code: class},
		"subject":      fhir.Reference{Reference: fhir.FormatReference("Patient", r.patientID)},
		"period":       fhir.Period{Start: b.Date},
		"type":         []fhir.CodeableConcept{{Text: b.Description}},
		"participant": []map[string]interface{}{
			{"individual": fhir.Reference{Display: b.Specialist}},
		},
	}
	if b.ID != "" {
		m["id"] = b.ID
	}
	if len(b.DiagnosisCodes) > 0 {
		reasons := make([]fhir.CodeableConcept, 0, len(b.DiagnosisCodes))
		for _, code := range b.DiagnosisCodes {
			coding := fhir.Coding{System: diagnosis.SystemURI, Code: code}
			if r.names != nil {
				coding.Display, _ = r.names.Name(code)
			}
			reasons = append(reasons, fhir.CodeableConcept{Coding: []fhir.Coding{coding}})
		}
		m["reasonCode"] = reasons
	}
	return m
}

func (r *encounterRenderer) VisitHospital(e *HospitalEntry) {
	m := r.base(&e.BaseEntry, "IMP")
	m["period"] = fhir.Period{Start: e.Date, End: e.Discharge.Date}
	m["hospitalization"] = map[string]interface{}{
		"dischargeDisposition": fhir.CodeableConcept{Text: e.Discharge.Criteria},
	}
	r.out = m
}

func (r *encounterRenderer) VisitOccupationalHealthcare(e *OccupationalHealthcareEntry) {
	m := r.base(&e.BaseEntry, "AMB")
	m["serviceProvider"] = fhir.Reference{Type: "Organization", Display: e.EmployerName}
	if e.SickLeave != nil {
		m["extension"] = []fhir.Extension{{
			URL:         sickLeaveExtension,
			ValuePeriod: &fhir.Period{Start: e.SickLeave.StartDate, End: e.SickLeave.EndDate},
		}}
	}
	r.out = m
}

func (r *encounterRenderer) VisitHealthCheck(e *HealthCheckEntry) {
	m := r.base(&e.BaseEntry, "AMB")
	rating := int(e.HealthCheckRating)
	m["extension"] = []fhir.Extension{{URL: healthRatingExtension, ValueInteger: &rating}}
	r.out = m
}
