package diagnosis

// SystemURI identifies the code system diagnoses are drawn from.
const SystemURI = "http://hl7.org/fhir/sid/icd-10"

// Diagnosis maps to the diagnosis table.
type Diagnosis struct {
	Code  string  `db:"code" json:"code"`
	Name  string  `db:"name" json:"name"`
	Latin *string `db:"latin" json:"latin,omitempty"`
}

func ptrStr(s string) *string { return &s }

// Defaults is the reference set shipped with the service. It is loaded into
// the Postgres diagnosis table by migration 002 and used as-is by the
// in-memory store.
var Defaults = []Diagnosis{
	{Code: "M24.2", Name: "Disorder of ligament", Latin: ptrStr("Morbositas ligamenti")},
	{Code: "M51.2", Name: "Other specified intervertebral disc displacement", Latin: ptrStr("Alia dislocatio disci intervertebralis specificata")},
	{Code: "S03.5", Name: "Sprain and strain of joints and ligaments of other and unspecified parts of head", Latin: ptrStr("Distorsio et/sive distensio articulationum et/sive ligamentorum partium aliarum sive non specificatarum capitis")},
	{Code: "J10.1", Name: "Influenza with other respiratory manifestations, other influenza virus identified", Latin: ptrStr("Influenza cum aliis manifestationibus respiratoriis ab agente virali identificato")},
	{Code: "J06.9", Name: "Acute upper respiratory infection, unspecified", Latin: ptrStr("Infectio acuta respiratoria superior non specificata")},
	{Code: "Z57.1", Name: "Occupational exposure to radiation"},
	{Code: "N30.0", Name: "Acute cystitis", Latin: ptrStr("Cystitis acuta")},
	{Code: "H54.7", Name: "Unspecified visual loss", Latin: ptrStr("Amblyopia NAS")},
	{Code: "J03.0", Name: "Streptococcal tonsillitis", Latin: ptrStr("Tonsillitis (palatina) streptococcica")},
	{Code: "L60.1", Name: "Onycholysis", Latin: ptrStr("Onycholysis")},
	{Code: "Z74.3", Name: "Need for continuous supervision"},
	{Code: "L20", Name: "Atopic dermatitis", Latin: ptrStr("Atopic dermatitis")},
	{Code: "F43.2", Name: "Adjustment disorders", Latin: ptrStr("Perturbationes adaptationis")},
	{Code: "S62.5", Name: "Fracture of thumb", Latin: ptrStr("Fractura [ossis/ossium] pollicis")},
	{Code: "H35.29", Name: "Other proliferative retinopathy", Latin: ptrStr("Alia retinopathia proliferativa")},
}
