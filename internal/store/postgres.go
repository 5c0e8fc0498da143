package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ta346/greenzone-web/internal/anomaly"
)

// Postgres implements anomaly.SampleStore over a vegetation_samples table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs the repository.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Samples implements anomaly.SampleStore.
func (p *Postgres) Samples(ctx context.Context, province, soum, series string) ([]anomaly.Sample, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT lon, lat, year, value, pasture
		FROM vegetation_samples
		WHERE province = $1 AND soum = $2 AND series = $3
		ORDER BY lat, lon, year
	`, province, soum, series)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []anomaly.Sample
	for rows.Next() {
		var s anomaly.Sample
		if err := rows.Scan(&s.Lon, &s.Lat, &s.Year, &s.Value, &s.Pasture); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}
