package patient

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/ehr/patientor/internal/domain/diagnosis"
	"github.com/ehr/patientor/internal/platform/fhir"
)

func TestPatientToFHIR(t *testing.T) {
	p := &Patient{
		ID: uuid.MustParse("d2773336-f723-11e9-8f0b-362b9e155667"),
		NewPatient: NewPatient{
			Name: "John McClane", DateOfBirth: "1986-07-09", SSN: "090786-122X",
			Gender: GenderMale, Occupation: "New york city cop",
			Entries: []Entry{
				&HospitalEntry{
					BaseEntry: BaseEntry{ID: "e1", Date: "2015-01-02", Specialist: "MD House", Description: "Thumb",
						DiagnosisCodes: []string{"S62.5"}},
					Discharge: Discharge{Date: "2015-01-16", Criteria: "Healed"},
				},
			},
		},
	}

	result := p.ToFHIR(diagnosis.MustCatalog(diagnosis.Defaults))

	if result["resourceType"] != "Patient" {
		t.Errorf("expected Patient, got %v", result["resourceType"])
	}
	if result["id"] != "d2773336-f723-11e9-8f0b-362b9e155667" {
		t.Errorf("unexpected id %v", result["id"])
	}
	if result["gender"] != "male" {
		t.Errorf("expected male, got %v", result["gender"])
	}
	if result["birthDate"] != "1986-07-09" {
		t.Errorf("unexpected birthDate %v", result["birthDate"])
	}
	ids := result["identifier"].([]fhir.Identifier)
	if len(ids) != 1 || ids[0].Value != "090786-122X" {
		t.Errorf("unexpected identifier %+v", ids)
	}
	contained := result["contained"].([]map[string]interface{})
	if len(contained) != 1 {
		t.Fatalf("expected 1 contained encounter, got %d", len(contained))
	}
	enc := contained[0]
	if enc["resourceType"] != "Encounter" {
		t.Errorf("expected Encounter, got %v", enc["resourceType"])
	}
	if enc["class"].(fhir.Coding).Code != "IMP" {
		t.Errorf("expected IMP class, got %v", enc["class"])
	}
	if period := enc["period"].(fhir.Period); period.End != "2015-01-16" {
		t.Errorf("expected discharge date as period end, got %+v", period)
	}
	reasons := enc["reasonCode"].([]fhir.CodeableConcept)
	if reasons[0].Coding[0].Display != "Fracture of thumb" {
		t.Errorf("expected diagnosis display, got %+v", reasons[0])
	}

	if _, err := json.Marshal(result); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestPatientToFHIR_NoEntries(t *testing.T) {
	p := &Patient{ID: uuid.New(), NewPatient: NewPatient{Name: "Hans Gruber", Entries: []Entry{}}}
	result := p.ToFHIR(nil)
	if _, ok := result["contained"]; ok {
		t.Error("expected no contained resources")
	}
}

func TestEntryToFHIR_Variants(t *testing.T) {
	occ := EntryToFHIR("p1", &OccupationalHealthcareEntry{
		BaseEntry:    BaseEntry{Date: "2019-08-05"},
		EmployerName: "HyPD",
		SickLeave:    &SickLeave{StartDate: "2019-08-05", EndDate: "2019-08-28"},
	}, nil)
	if occ["serviceProvider"].(fhir.Reference).Display != "HyPD" {
		t.Errorf("unexpected serviceProvider %v", occ["serviceProvider"])
	}
	ext := occ["extension"].([]fhir.Extension)
	if ext[0].ValuePeriod == nil || ext[0].ValuePeriod.End != "2019-08-28" {
		t.Errorf("unexpected sick leave extension %+v", ext)
	}
	if occ["subject"].(fhir.Reference).Reference != "Patient/p1" {
		t.Errorf("unexpected subject %v", occ["subject"])
	}

	hc := EntryToFHIR("p1", &HealthCheckEntry{HealthCheckRating: RatingHighRisk}, nil)
	ext = hc["extension"].([]fhir.Extension)
	if ext[0].ValueInteger == nil || *ext[0].ValueInteger != 2 {
		t.Errorf("unexpected rating extension %+v", ext)
	}
	if _, ok := hc["id"]; ok {
		t.Error("expected no id for unsaved entry")
	}
}
