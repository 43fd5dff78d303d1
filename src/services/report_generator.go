package services

import (
	"context"
	"sort"
	"time"

	"fundraiser/src/models"
	"fundraiser/src/repositories"
	"fundraiser/src/schemas"
	"fundraiser/src/utils"

	"github.com/shopspring/decimal"
)

type ReportGeneratorI interface {
	Generate(ctx context.Context, org *models.Organization, reportType schemas.ReportType, filters schemas.ReportFilters, project *models.Project, stage *models.ProjectStage) (*schemas.ReportPayload, error)
}

// ReportGenerator resolves a date range and runs the grouped aggregate
// queries for one report type. It is read-only against the data store.
type ReportGenerator struct {
	donations repositories.DonationRepository
	members   repositories.MemberRepository
	projects  repositories.ProjectRepository
	stats     repositories.StatsRepository
	clock     Clock
}

func NewReportGenerator(
	donations repositories.DonationRepository,
	members repositories.MemberRepository,
	projects repositories.ProjectRepository,
	stats repositories.StatsRepository,
	clock Clock,
) *ReportGenerator {
	if clock == nil {
		clock = SystemClock()
	}
	return &ReportGenerator{
		donations: donations,
		members:   members,
		projects:  projects,
		stats:     stats,
		clock:     clock,
	}
}

func (g *ReportGenerator) Generate(
	ctx context.Context,
	org *models.Organization,
	reportType schemas.ReportType,
	filters schemas.ReportFilters,
	project *models.Project,
	stage *models.ProjectStage,
) (*schemas.ReportPayload, error) {
	rng, err := g.ResolveDateRange(filters, stage)
	if err != nil {
		return nil, err
	}

	var projectID *uint
	if project != nil {
		projectID = &project.ID
	}
	var stageID *uint
	if stage != nil {
		stageID = &stage.ID
	}

	var (
		title   string
		data    schemas.ReportData
		summary map[string]interface{}
	)

	switch reportType {
	case schemas.ReportTypeRevenue:
		title = "Отчет по доходам"
		data, summary, err = g.revenueReport(ctx, org.ID, projectID, stage, rng, schemas.GroupBy(filters.GroupBy))
	case schemas.ReportTypeMembers:
		title = "Отчет по участникам"
		data, summary, err = g.membersReport(ctx, org.ID, rng, filters.IncludeInactive)
	case schemas.ReportTypeProjects:
		title = "Отчет по проектам"
		data, summary, err = g.projectsReport(ctx, org.ID, projectID, stage, rng, filters.Status)
	case schemas.ReportTypeComprehensive:
		title = "Комплексный отчет"
		data, summary, err = g.comprehensiveReport(ctx, org.ID, projectID, stage, rng, filters)
	case schemas.ReportTypeCustom:
		title = filters.Title
		if title == "" {
			title = "Пользовательский отчет"
		}
		data, summary, err = g.customReport(ctx, org.ID, projectID, stage, rng, filters)
	default:
		return nil, NewInvalidFilterError("unknown report type: %s", reportType)
	}
	if err != nil {
		return nil, err
	}

	return &schemas.ReportPayload{
		Type:    reportType,
		Title:   title,
		Filters: filters,
		Meta: schemas.ReportMeta{
			OrganizationID: org.ID,
			ProjectID:      projectID,
			StageID:        stageID,
			DateFrom:       rng.From,
			DateTo:         rng.To,
			GroupBy:        filters.GroupBy,
		},
		Data:        data,
		Summary:     summary,
		RowsCount:   data.RowCount(),
		GeneratedAt: g.clock.Now(),
	}, nil
}

// ResolveDateRange derives the report window. Precedence: explicit custom
// range, then stage dates, then the period keyword, then the fallback of one
// month ago through the end of today.
func (g *ReportGenerator) ResolveDateRange(filters schemas.ReportFilters, stage *models.ProjectStage) (schemas.DateRange, error) {
	if filters.Period == schemas.PeriodCustom {
		if filters.DateFrom == "" || filters.DateTo == "" {
			return schemas.DateRange{}, NewInvalidFilterError("custom period requires both date_from and date_to")
		}
		from, err := time.Parse(utils.ShortDashDateLayout, filters.DateFrom)
		if err != nil {
			return schemas.DateRange{}, NewInvalidFilterError("invalid date_from: %s", filters.DateFrom)
		}
		to, err := time.Parse(utils.ShortDashDateLayout, filters.DateTo)
		if err != nil {
			return schemas.DateRange{}, NewInvalidFilterError("invalid date_to: %s", filters.DateTo)
		}
		if from.After(to) {
			return schemas.DateRange{}, NewInvalidFilterError("date_from must not be after date_to")
		}
		return schemas.DateRange{From: utils.StartOfDay(from), To: utils.EndOfDay(to)}, nil
	}

	if stage != nil && stage.StartDate != nil && stage.EndDate != nil {
		return schemas.DateRange{
			From: utils.StartOfDay(*stage.StartDate),
			To:   utils.EndOfDay(*stage.EndDate),
		}, nil
	}

	now := g.clock.Now()
	switch filters.Period {
	case schemas.PeriodDay:
		return schemas.DateRange{From: utils.StartOfDay(now), To: utils.EndOfDay(now)}, nil
	case schemas.PeriodWeek:
		return schemas.DateRange{From: utils.StartOfWeek(now), To: utils.EndOfWeek(now)}, nil
	case schemas.PeriodMonth:
		return schemas.DateRange{From: utils.StartOfMonth(now), To: utils.EndOfMonth(now)}, nil
	case schemas.PeriodQuarter:
		return schemas.DateRange{From: utils.StartOfQuarter(now), To: utils.EndOfQuarter(now)}, nil
	case schemas.PeriodYear:
		return schemas.DateRange{From: utils.StartOfYear(now), To: utils.EndOfYear(now)}, nil
	}

	return schemas.DateRange{
		From: utils.StartOfDay(now.AddDate(0, -1, 0)),
		To:   utils.EndOfDay(now),
	}, nil
}

// stageWindow narrows donation queries to the stage's own dates when both
// are set. It restricts the report range rather than replacing it.
func stageWindow(stage *models.ProjectStage) *schemas.DateRange {
	if stage == nil || stage.StartDate == nil || stage.EndDate == nil {
		return nil
	}
	return &schemas.DateRange{
		From: utils.StartOfDay(*stage.StartDate),
		To:   utils.EndOfDay(*stage.EndDate),
	}
}

func (g *ReportGenerator) revenueReport(
	ctx context.Context,
	orgID uint,
	projectID *uint,
	stage *models.ProjectStage,
	rng schemas.DateRange,
	groupBy schemas.GroupBy,
) (schemas.RevenueData, map[string]interface{}, error) {
	scope := repositories.DonationScope{
		OrganizationID: orgID,
		ProjectID:      projectID,
		Range:          rng,
		StageRange:     stageWindow(stage),
	}

	groups, err := g.donations.GroupedTotals(ctx, scope, groupBy)
	if err != nil {
		return schemas.RevenueData{}, nil, err
	}
	for i := range groups {
		groups[i].TotalRubles = minorToMajor(groups[i].Total)
	}

	total, count, err := g.donations.Totals(ctx, scope)
	if err != nil {
		return schemas.RevenueData{}, nil, err
	}

	summary := map[string]interface{}{
		"total_amount":        total,
		"total_amount_rubles": minorToMajor(total),
		"total_transactions":  count,
		"average_transaction": safeAverage(total, count),
	}
	return schemas.RevenueData{ByPeriod: groups}, summary, nil
}

func (g *ReportGenerator) membersReport(
	ctx context.Context,
	orgID uint,
	rng schemas.DateRange,
	includeInactive bool,
) (schemas.MembersData, map[string]interface{}, error) {
	scope := repositories.MemberScope{
		OrganizationID:  orgID,
		Range:           rng,
		IncludeInactive: includeInactive,
	}

	daily, err := g.members.DailyRegistrations(ctx, scope)
	if err != nil {
		return schemas.MembersData{}, nil, err
	}
	bySource, err := g.members.CountBySource(ctx, scope)
	if err != nil {
		return schemas.MembersData{}, nil, err
	}
	newMembers, err := g.members.CountNew(ctx, scope)
	if err != nil {
		return schemas.MembersData{}, nil, err
	}
	active, err := g.members.CountActiveSince(ctx, orgID, rng.From)
	if err != nil {
		return schemas.MembersData{}, nil, err
	}

	var topSource interface{}
	if len(bySource) > 0 {
		topSource = bySource[0].Source
	}

	summary := map[string]interface{}{
		"new_members":    newMembers,
		"active_members": active,
		"top_source":     topSource,
	}
	return schemas.MembersData{
		DailyRegistrations: daily,
		BySource:           bySource,
		ActiveMembers:      active,
	}, summary, nil
}

func (g *ReportGenerator) projectsReport(
	ctx context.Context,
	orgID uint,
	projectID *uint,
	stage *models.ProjectStage,
	rng schemas.DateRange,
	status string,
) (schemas.ProjectsData, map[string]interface{}, error) {
	scope := repositories.ProjectScope{
		OrganizationID: orgID,
		Range:          rng,
		ProjectID:      projectID,
		Status:         status,
	}

	byStatus, err := g.projects.CountByStatus(ctx, scope)
	if err != nil {
		return schemas.ProjectsData{}, nil, err
	}
	rows, err := g.projects.FundingRows(ctx, scope)
	if err != nil {
		return schemas.ProjectsData{}, nil, err
	}

	var totalTarget, totalCollected int64
	funding := make([]schemas.FundingProgress, 0, len(rows))
	for _, p := range rows {
		target := p.TargetAmount
		collected := p.CollectedAmount
		// A stage belonging to the scoped project substitutes its own
		// target and collected amounts for the project's.
		if stage != nil && stage.ProjectID == p.ID {
			target = stage.TargetAmount
			collected = stage.CollectedAmount
		}
		funding = append(funding, schemas.FundingProgress{
			ProjectID:          p.ID,
			Title:              p.Title,
			TargetAmount:       target,
			CollectedAmount:    collected,
			ProgressPercentage: percentage(collected, target),
		})
		totalTarget += target
		totalCollected += collected
	}
	sort.SliceStable(funding, func(i, j int) bool {
		return funding[i].ProgressPercentage > funding[j].ProgressPercentage
	})

	avgDays, err := g.projects.AverageFundingDays(ctx, scope)
	if err != nil {
		return schemas.ProjectsData{}, nil, err
	}

	summary := map[string]interface{}{
		"total_projects":   int64(len(rows)),
		"total_target":     totalTarget,
		"total_collected":  totalCollected,
		"overall_progress": percentage(totalCollected, totalTarget),
	}
	return schemas.ProjectsData{
		ByStatus:        byStatus,
		FundingProgress: funding,
		Metrics:         &schemas.ProjectsMetrics{AverageFundingTime: avgDays},
	}, summary, nil
}

func (g *ReportGenerator) comprehensiveReport(
	ctx context.Context,
	orgID uint,
	projectID *uint,
	stage *models.ProjectStage,
	rng schemas.DateRange,
	filters schemas.ReportFilters,
) (schemas.ComprehensiveData, map[string]interface{}, error) {
	var data schemas.ComprehensiveData
	summary := map[string]interface{}{}

	if filters.RevenueIncluded() {
		revData, revSummary, err := g.revenueReport(ctx, orgID, projectID, stage, rng, schemas.GroupBy(filters.GroupBy))
		if err != nil {
			return data, nil, err
		}
		data.Revenue = &schemas.ReportSection{Data: revData, Summary: revSummary}
		mergeSummary(summary, revSummary)
	}
	if filters.MembersIncluded() {
		memData, memSummary, err := g.membersReport(ctx, orgID, rng, filters.IncludeInactive)
		if err != nil {
			return data, nil, err
		}
		data.Members = &schemas.ReportSection{Data: memData, Summary: memSummary}
		mergeSummary(summary, memSummary)
	}
	if filters.ProjectsIncluded() {
		projData, projSummary, err := g.projectsReport(ctx, orgID, projectID, stage, rng, filters.Status)
		if err != nil {
			return data, nil, err
		}
		data.Projects = &schemas.ReportSection{Data: projData, Summary: projSummary}
		mergeSummary(summary, projSummary)
	}
	if filters.AnalyticsIncluded() {
		analytics, err := g.analyticsReport(ctx, orgID, rng)
		if err != nil {
			return data, nil, err
		}
		data.Analytics = analytics
		mergeSummary(summary, map[string]interface{}{
			"conversion_rate":  analytics.ConversionRate,
			"average_donation": analytics.AverageDonation,
			"retention_rate":   analytics.RetentionRate,
			"growth_rate":      analytics.GrowthRate,
		})
	}

	return data, summary, nil
}

func (g *ReportGenerator) analyticsReport(ctx context.Context, orgID uint, rng schemas.DateRange) (*schemas.AnalyticsData, error) {
	scope := repositories.DonationScope{OrganizationID: orgID, Range: rng}
	total, count, err := g.donations.Totals(ctx, scope)
	if err != nil {
		return nil, err
	}
	visitors, err := g.stats.UniqueVisitors(ctx, orgID, rng)
	if err != nil {
		return nil, err
	}
	active, err := g.members.CountActiveSince(ctx, orgID, rng.From)
	if err != nil {
		return nil, err
	}
	totalMembers, err := g.members.CountTotal(ctx, orgID)
	if err != nil {
		return nil, err
	}

	// The growth comparison window is always the one calendar month ending
	// at the range start, whatever the range length.
	priorScope := repositories.DonationScope{
		OrganizationID: orgID,
		Range: schemas.DateRange{
			From: rng.From.AddDate(0, -1, 0),
			To:   rng.From,
		},
	}
	priorTotal, _, err := g.donations.Totals(ctx, priorScope)
	if err != nil {
		return nil, err
	}

	growth := 0.0
	if priorTotal > 0 {
		growth = percentage(total-priorTotal, priorTotal)
	}

	return &schemas.AnalyticsData{
		ConversionRate:  percentage(count, visitors),
		AverageDonation: safeAverage(total, count),
		RetentionRate:   percentage(active, totalMembers),
		GrowthRate:      growth,
	}, nil
}

func (g *ReportGenerator) customReport(
	ctx context.Context,
	orgID uint,
	projectID *uint,
	stage *models.ProjectStage,
	rng schemas.DateRange,
	filters schemas.ReportFilters,
) (schemas.RevenueData, map[string]interface{}, error) {
	groupBy := schemas.GroupBy(filters.GroupBy)
	if groupBy == "" {
		groupBy = schemas.GroupByMonth
	}
	data, revSummary, err := g.revenueReport(ctx, orgID, projectID, stage, rng, groupBy)
	if err != nil {
		return schemas.RevenueData{}, nil, err
	}
	return data, map[string]interface{}{"revenue": revSummary}, nil
}

func mergeSummary(dst, src map[string]interface{}) {
	for k, v := range src {
		dst[k] = v
	}
}

// minorToMajor converts kopecks to rubles with bank-style 2-decimal rounding.
func minorToMajor(amount int64) float64 {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// percentage returns part/whole*100 rounded to 2 decimals, 0 when whole is 0.
func percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Div(decimal.NewFromInt(whole)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// safeAverage returns total/count rounded to 2 decimals, 0 when count is 0.
func safeAverage(total, count int64) float64 {
	if count == 0 {
		return 0
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(count)).Round(2).InexactFloat64()
}
