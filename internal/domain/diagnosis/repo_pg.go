package diagnosis

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) List(ctx context.Context) ([]Diagnosis, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, name, latin FROM diagnosis ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list diagnoses: %w", err)
	}
	defer rows.Close()

	var diagnoses []Diagnosis
	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(&d.Code, &d.Name, &d.Latin); err != nil {
			return nil, fmt.Errorf("scan diagnosis: %w", err)
		}
		diagnoses = append(diagnoses, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnoses: %w", err)
	}
	return diagnoses, nil
}
