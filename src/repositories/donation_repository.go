package repositories

import (
	"context"
	"fmt"

	"fundraiser/src/models"
	"fundraiser/src/schemas"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DonationScope bounds an aggregate query over completed donations. When a
// stage window is present it further restricts the range; it never replaces it.
type DonationScope struct {
	OrganizationID uint
	ProjectID      *uint
	Range          schemas.DateRange
	StageRange     *schemas.DateRange
}

type DonationRepository interface {
	GroupedTotals(ctx context.Context, scope DonationScope, groupBy schemas.GroupBy) ([]schemas.RevenueGroup, error)
	Totals(ctx context.Context, scope DonationScope) (total int64, count int64, err error)
}

type donationRepo struct {
	db *pgxpool.Pool
}

func NewDonationRepository(db *pgxpool.Pool) DonationRepository {
	return &donationRepo{db: db}
}

// groupExpression maps a grouping dimension to its SQL bucket expression.
// Unknown dimensions return "", which callers treat as an explicitly empty
// result set rather than an error.
func groupExpression(groupBy schemas.GroupBy) string {
	switch groupBy {
	case schemas.GroupByDay:
		return `to_char(d.created_at, 'YYYY-MM-DD')`
	case schemas.GroupByWeek:
		return `to_char(d.created_at, 'IYYY-"W"IW')`
	case schemas.GroupByMonth:
		return `to_char(d.created_at, 'YYYY-MM')`
	case schemas.GroupByQuarter:
		return `to_char(d.created_at, 'YYYY-"Q"Q')`
	case schemas.GroupByProject:
		return `COALESCE(p.title, 'unknown')`
	case schemas.GroupByPaymentMethod:
		return `d.payment_method`
	}
	return ""
}

func (s DonationScope) conditions() (string, []interface{}) {
	where := `d.organization_id = $1 AND d.status = $2 AND d.created_at BETWEEN $3 AND $4`
	args := []interface{}{s.OrganizationID, models.DonationStatusCompleted, s.Range.From, s.Range.To}

	if s.StageRange != nil {
		where += fmt.Sprintf(" AND d.created_at BETWEEN $%d AND $%d", len(args)+1, len(args)+2)
		args = append(args, s.StageRange.From, s.StageRange.To)
	}
	if s.ProjectID != nil {
		where += fmt.Sprintf(" AND d.project_id = $%d", len(args)+1)
		args = append(args, *s.ProjectID)
	}
	return where, args
}

func (r *donationRepo) GroupedTotals(ctx context.Context, scope DonationScope, groupBy schemas.GroupBy) ([]schemas.RevenueGroup, error) {
	expr := groupExpression(groupBy)
	if expr == "" {
		return []schemas.RevenueGroup{}, nil
	}

	join := ""
	if groupBy == schemas.GroupByProject {
		join = " LEFT JOIN projects p ON p.id = d.project_id"
	}

	where, args := scope.conditions()
	query := fmt.Sprintf(`
		SELECT %s AS bucket, COALESCE(SUM(d.amount), 0), COUNT(*)
		FROM donations d%s
		WHERE %s
		GROUP BY bucket
		ORDER BY bucket`, expr, join, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []schemas.RevenueGroup
	for rows.Next() {
		var g schemas.RevenueGroup
		if err := rows.Scan(&g.Period, &g.Total, &g.Count); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *donationRepo) Totals(ctx context.Context, scope DonationScope) (int64, int64, error) {
	where, args := scope.conditions()
	query := fmt.Sprintf(`SELECT COALESCE(SUM(d.amount), 0), COUNT(*) FROM donations d WHERE %s`, where)

	var total, count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total, &count); err != nil {
		return 0, 0, err
	}
	return total, count, nil
}
