package repositories

import (
	"context"

	"fundraiser/src/schemas"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository interface {
	UniqueVisitors(ctx context.Context, organizationID uint, r schemas.DateRange) (int64, error)
}

type statsRepo struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) UniqueVisitors(ctx context.Context, organizationID uint, rng schemas.DateRange) (int64, error) {
	var visitors int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(unique_visitors), 0) FROM site_visits WHERE organization_id = $1 AND date BETWEEN $2 AND $3`,
		organizationID, rng.From, rng.To,
	).Scan(&visitors)
	if err != nil {
		return 0, err
	}
	return visitors, nil
}
