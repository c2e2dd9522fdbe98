package diagnosis

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog is an immutable code -> diagnosis lookup. It is built once at
// startup and shared read-only between requests.
type Catalog struct {
	byCode map[string]Diagnosis
	sorted []Diagnosis
}

// NewCatalog builds a catalog from a list of diagnoses. Codes are trimmed;
// empty and duplicate codes are rejected.
func NewCatalog(diagnoses []Diagnosis) (*Catalog, error) {
	c := &Catalog{byCode: make(map[string]Diagnosis, len(diagnoses))}
	for _, d := range diagnoses {
		d.Code = strings.TrimSpace(d.Code)
		if d.Code == "" {
			return nil, fmt.Errorf("diagnosis code is required")
		}
		if _, dup := c.byCode[d.Code]; dup {
			return nil, fmt.Errorf("duplicate diagnosis code %q", d.Code)
		}
		c.byCode[d.Code] = d
		c.sorted = append(c.sorted, d)
	}
	sort.Slice(c.sorted, func(i, j int) bool {
		return c.sorted[i].Code < c.sorted[j].Code
	})
	return c, nil
}

// MustCatalog is NewCatalog for static data known to be valid.
func MustCatalog(diagnoses []Diagnosis) *Catalog {
	c, err := NewCatalog(diagnoses)
	if err != nil {
		panic(err)
	}
	return c
}

// Has reports whether code is in the reference set.
func (c *Catalog) Has(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// Lookup returns the diagnosis for code.
func (c *Catalog) Lookup(code string) (Diagnosis, bool) {
	d, ok := c.byCode[code]
	return d, ok
}

// All returns a copy of the reference set ordered by code.
func (c *Catalog) All() []Diagnosis {
	out := make([]Diagnosis, len(c.sorted))
	copy(out, c.sorted)
	return out
}

func (c *Catalog) Len() int {
	return len(c.sorted)
}

// Name returns the display name for code.
func (c *Catalog) Name(code string) (string, bool) {
	d, ok := c.byCode[code]
	return d.Name, ok
}
