package repositories

import (
	"context"
	"fmt"

	"fundraiser/src/models"
	"fundraiser/src/schemas"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectScope struct {
	OrganizationID uint
	Range          schemas.DateRange
	ProjectID      *uint
	// Status filters to one status value; "" and "all" mean no filter.
	Status string
}

type ProjectRepository interface {
	CountByStatus(ctx context.Context, scope ProjectScope) ([]schemas.StatusCount, error)
	FundingRows(ctx context.Context, scope ProjectScope) ([]models.Project, error)
	AverageFundingDays(ctx context.Context, scope ProjectScope) (float64, error)
}

type projectRepo struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) ProjectRepository {
	return &projectRepo{db: db}
}

func (s ProjectScope) conditions() (string, []interface{}) {
	where := `organization_id = $1 AND created_at BETWEEN $2 AND $3`
	args := []interface{}{s.OrganizationID, s.Range.From, s.Range.To}

	if s.ProjectID != nil {
		where += fmt.Sprintf(" AND id = $%d", len(args)+1)
		args = append(args, *s.ProjectID)
	}
	if s.Status != "" && s.Status != "all" {
		where += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, s.Status)
	}
	return where, args
}

func (r *projectRepo) CountByStatus(ctx context.Context, scope ProjectScope) ([]schemas.StatusCount, error) {
	where, args := scope.conditions()
	query := fmt.Sprintf(`
		SELECT status, COUNT(*)
		FROM projects
		WHERE %s
		GROUP BY status
		ORDER BY status`, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []schemas.StatusCount
	for rows.Next() {
		var c schemas.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *projectRepo) FundingRows(ctx context.Context, scope ProjectScope) ([]models.Project, error) {
	where, args := scope.conditions()
	query := fmt.Sprintf(`
		SELECT id, title, target_amount, collected_amount
		FROM projects
		WHERE %s
		ORDER BY id`, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.TargetAmount, &p.CollectedAmount); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectRepo) AverageFundingDays(ctx context.Context, scope ProjectScope) (float64, error) {
	query, args := averageFundingQuery(scope)

	var avg float64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

// averageFundingQuery measures completed projects only. The caller's status
// filter is dropped so it cannot contradict the completed predicate.
func averageFundingQuery(scope ProjectScope) (string, []interface{}) {
	base := ProjectScope{
		OrganizationID: scope.OrganizationID,
		Range:          scope.Range,
		ProjectID:      scope.ProjectID,
	}
	where, args := base.conditions()
	query := fmt.Sprintf(`
		SELECT COALESCE(AVG(EXTRACT(EPOCH FROM updated_at - created_at)) / 86400.0, 0)
		FROM projects
		WHERE %s AND status = $%d`, where, len(args)+1)
	return query, append(args, models.ProjectStatusCompleted)
}
