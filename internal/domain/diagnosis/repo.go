package diagnosis

import "context"

// Repository provides access to the stored diagnosis reference set.
type Repository interface {
	List(ctx context.Context) ([]Diagnosis, error)
}

type staticRepo struct {
	diagnoses []Diagnosis
}

// NewStaticRepo serves a fixed list, used with the in-memory patient store.
func NewStaticRepo(diagnoses []Diagnosis) Repository {
	return &staticRepo{diagnoses: diagnoses}
}

func (r *staticRepo) List(_ context.Context) ([]Diagnosis, error) {
	out := make([]Diagnosis, len(r.diagnoses))
	copy(out, r.diagnoses)
	return out, nil
}

// LoadCatalog reads the reference set from repo and freezes it.
func LoadCatalog(ctx context.Context, repo Repository) (*Catalog, error) {
	diagnoses, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(diagnoses)
}
