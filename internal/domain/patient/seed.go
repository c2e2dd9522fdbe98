package patient

import (
	"context"
	"fmt"
)

type seedPatient struct {
	patient map[string]any
	entries []map[string]any
}

var samplePatients = []seedPatient{
	{
		patient: map[string]any{
			"name": "John McClane", "dateOfBirth": "1986-07-09", "ssn": "090786-122X",
			"gender": "male", "occupation": "New york city cop",
		},
		entries: []map[string]any{{
			"type": "Hospital", "date": "2015-01-02", "specialist": "MD House",
			"description":    "Healing time appr. 2 weeks. patient doesn't remember how he got the injury.",
			"diagnosisCodes": []any{"S62.5"},
			"discharge":      map[string]any{"date": "2015-01-16", "criteria": "Thumb has healed."},
		}},
	},
	{
		patient: map[string]any{
			"name": "Martin Riggs", "dateOfBirth": "1979-01-30", "ssn": "300179-77A",
			"gender": "male", "occupation": "Cop",
		},
		entries: []map[string]any{{
			"type": "OccupationalHealthcare", "date": "2019-08-05", "specialist": "MD House",
			"employerName":   "HyPD",
			"description":    "Patient mistakenly found himself in a nuclear plant waste site without protection gear. Very minor radiation poisoning.",
			"diagnosisCodes": []any{"Z57.1", "Z74.3", "M51.2"},
			"sickLeave":      map[string]any{"startDate": "2019-08-05", "endDate": "2019-08-28"},
		}},
	},
	{
		patient: map[string]any{
			"name": "Hans Gruber", "dateOfBirth": "1970-04-25", "ssn": "250470-555L",
			"gender": "other", "occupation": "Technician",
		},
	},
	{
		patient: map[string]any{
			"name": "Dana Scully", "dateOfBirth": "1974-01-05", "ssn": "050174-432N",
			"gender": "female", "occupation": "Forensic Pathologist",
		},
		entries: []map[string]any{
			{
				"type": "HealthCheck", "date": "2019-10-20", "specialist": "MD House",
				"description":       "Yearly control visit. Cholesterol levels back to normal.",
				"healthCheckRating": 0,
			},
			{
				"type": "OccupationalHealthcare", "date": "2019-09-10", "specialist": "MD House",
				"employerName":   "FBI",
				"description":    "Prescriptions renewed.",
				"diagnosisCodes": []any{"M24.2"},
			},
			{
				"type": "HealthCheck", "date": "2018-10-05", "specialist": "MD House",
				"description":       "Yearly control visit. Due to high cholesterol levels recommended to eat more vegetables.",
				"healthCheckRating": 1,
			},
		},
	},
	{
		patient: map[string]any{
			"name": "Matti Luukkainen", "dateOfBirth": "1971-04-09", "ssn": "090471-8890",
			"gender": "male", "occupation": "Digital evangelist",
		},
		entries: []map[string]any{{
			"type": "HealthCheck", "date": "2019-05-01", "specialist": "Dr Byte House",
			"description":       "Digital overdose, very bytestatic. Otherwise healthy.",
			"healthCheckRating": 0,
		}},
	},
}

// Seed loads the sample patients into store. Every payload goes through
// parser, so the sample data obeys the same rules as API input. It returns
// the number of patients created.
func Seed(ctx context.Context, parser *Parser, store Store) (int, error) {
	for i, sp := range samplePatients {
		np, err := parser.ToNewPatient(sp.patient)
		if err != nil {
			return i, fmt.Errorf("seed patient %d: %w", i, err)
		}
		p, err := store.Create(ctx, np)
		if err != nil {
			return i, fmt.Errorf("seed patient %d: %w", i, err)
		}
		for j, raw := range sp.entries {
			e, err := parser.ToNewEntry(raw)
			if err != nil {
				return i, fmt.Errorf("seed patient %d entry %d: %w", i, j, err)
			}
			if _, err := store.AddEntry(ctx, p.ID, e); err != nil {
				return i, fmt.Errorf("seed patient %d entry %d: %w", i, j, err)
			}
		}
	}
	return len(samplePatients), nil
}
