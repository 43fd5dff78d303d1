package repositories

import (
	"context"
	"fmt"
	"time"

	"fundraiser/src/schemas"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberScope struct {
	OrganizationID  uint
	Range           schemas.DateRange
	IncludeInactive bool
}

type MemberRepository interface {
	DailyRegistrations(ctx context.Context, scope MemberScope) ([]schemas.DailyCount, error)
	CountBySource(ctx context.Context, scope MemberScope) ([]schemas.SourceCount, error)
	CountNew(ctx context.Context, scope MemberScope) (int64, error)
	// CountActiveSince has no upper bound on purpose: "active" means active
	// since the range start, not active during the range.
	CountActiveSince(ctx context.Context, organizationID uint, since time.Time) (int64, error)
	CountTotal(ctx context.Context, organizationID uint) (int64, error)
}

type memberRepo struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	return &memberRepo{db: db}
}

func (s MemberScope) conditions() (string, []interface{}) {
	where := `organization_id = $1 AND created_at BETWEEN $2 AND $3`
	args := []interface{}{s.OrganizationID, s.Range.From, s.Range.To}
	if !s.IncludeInactive {
		where += " AND is_active = TRUE"
	}
	return where, args
}

func (r *memberRepo) DailyRegistrations(ctx context.Context, scope MemberScope) ([]schemas.DailyCount, error) {
	where, args := scope.conditions()
	query := fmt.Sprintf(`
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM members
		WHERE %s
		GROUP BY day
		ORDER BY day`, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var daily []schemas.DailyCount
	for rows.Next() {
		var d schemas.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		daily = append(daily, d)
	}
	return daily, rows.Err()
}

func (r *memberRepo) CountBySource(ctx context.Context, scope MemberScope) ([]schemas.SourceCount, error) {
	where, args := scope.conditions()
	query := fmt.Sprintf(`
		SELECT COALESCE(NULLIF(source, ''), 'unknown') AS src, COUNT(*)
		FROM members
		WHERE %s
		GROUP BY src
		ORDER BY COUNT(*) DESC`, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []schemas.SourceCount
	for rows.Next() {
		var s schemas.SourceCount
		if err := rows.Scan(&s.Source, &s.Count); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *memberRepo) CountNew(ctx context.Context, scope MemberScope) (int64, error) {
	where, args := scope.conditions()
	query := fmt.Sprintf(`SELECT COUNT(*) FROM members WHERE %s`, where)

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *memberRepo) CountActiveSince(ctx context.Context, organizationID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM members WHERE organization_id = $1 AND last_active_at >= $2`,
		organizationID, since,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *memberRepo) CountTotal(ctx context.Context, organizationID uint) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM members WHERE organization_id = $1`,
		organizationID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
