package schemas

import (
	"encoding/json"
	"time"
)

type ReportType string

const (
	ReportTypeRevenue       ReportType = "revenue"
	ReportTypeMembers       ReportType = "members"
	ReportTypeProjects      ReportType = "projects"
	ReportTypeComprehensive ReportType = "comprehensive"
	ReportTypeCustom        ReportType = "custom"
)

// ReportTypes lists every report type in catalog order.
var ReportTypes = []ReportType{
	ReportTypeRevenue,
	ReportTypeMembers,
	ReportTypeProjects,
	ReportTypeComprehensive,
	ReportTypeCustom,
}

func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeRevenue, ReportTypeMembers, ReportTypeProjects, ReportTypeComprehensive, ReportTypeCustom:
		return true
	}
	return false
}

type GroupBy string

const (
	GroupByDay           GroupBy = "day"
	GroupByWeek          GroupBy = "week"
	GroupByMonth         GroupBy = "month"
	GroupByQuarter       GroupBy = "quarter"
	GroupByProject       GroupBy = "project"
	GroupByPaymentMethod GroupBy = "payment_method"
)

const (
	PeriodDay     = "day"
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
	PeriodCustom  = "custom"
)

// ReportFilters is the caller-supplied filter set. Include flags apply to
// comprehensive reports only and default to true when unset.
type ReportFilters struct {
	Period           string `json:"period,omitempty"`
	DateFrom         string `json:"date_from,omitempty"`
	DateTo           string `json:"date_to,omitempty"`
	GroupBy          string `json:"group_by,omitempty"`
	Status           string `json:"status,omitempty"`
	IncludeInactive  bool   `json:"include_inactive,omitempty"`
	IncludeRevenue   *bool  `json:"include_revenue,omitempty"`
	IncludeMembers   *bool  `json:"include_members,omitempty"`
	IncludeProjects  *bool  `json:"include_projects,omitempty"`
	IncludeAnalytics *bool  `json:"include_analytics,omitempty"`
	Title            string `json:"title,omitempty"`
}

func includeFlag(flag *bool) bool {
	return flag == nil || *flag
}

func (f ReportFilters) RevenueIncluded() bool   { return includeFlag(f.IncludeRevenue) }
func (f ReportFilters) MembersIncluded() bool   { return includeFlag(f.IncludeMembers) }
func (f ReportFilters) ProjectsIncluded() bool  { return includeFlag(f.IncludeProjects) }
func (f ReportFilters) AnalyticsIncluded() bool { return includeFlag(f.IncludeAnalytics) }

// ToMap renders the filters as a generic map for persistence and export.
func (f ReportFilters) ToMap() map[string]interface{} {
	return structToMap(f)
}

// DateRange is a resolved inclusive report window.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ReportMeta describes how a payload was produced.
type ReportMeta struct {
	OrganizationID uint      `json:"organization_id"`
	ProjectID      *uint     `json:"project_id,omitempty"`
	StageID        *uint     `json:"stage_id,omitempty"`
	DateFrom       time.Time `json:"date_from"`
	DateTo         time.Time `json:"date_to"`
	GroupBy        string    `json:"group_by,omitempty"`
}

func (m ReportMeta) ToMap() map[string]interface{} {
	return structToMap(m)
}

// ReportData is the type-tagged aggregation result carried by a payload.
// Every variant reports its own granular row count.
type ReportData interface {
	RowCount() int
}

// ReportPayload is the normalized output of one aggregation pass. It is a
// transient value: produced, optionally persisted as a ReportRun, exported,
// and discarded within one request.
type ReportPayload struct {
	Type        ReportType             `json:"type"`
	Title       string                 `json:"title"`
	Filters     ReportFilters          `json:"filters"`
	Meta        ReportMeta             `json:"meta"`
	Data        ReportData             `json:"data"`
	Summary     map[string]interface{} `json:"summary"`
	RowsCount   int                    `json:"rows_count"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// DataMap renders the payload data tree as a generic map for persistence.
func (p *ReportPayload) DataMap() map[string]interface{} {
	if p.Data == nil {
		return nil
	}
	return structToMap(p.Data)
}

type RevenueGroup struct {
	Period      string  `json:"period"`
	Total       int64   `json:"total"`
	Count       int64   `json:"count"`
	TotalRubles float64 `json:"total_rubles"`
}

type RevenueData struct {
	ByPeriod []RevenueGroup `json:"by_period"`
}

func (d RevenueData) RowCount() int { return len(d.ByPeriod) }

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

type MembersData struct {
	DailyRegistrations []DailyCount  `json:"daily_registrations"`
	BySource           []SourceCount `json:"by_source"`
	ActiveMembers      int64         `json:"active_members"`
}

func (d MembersData) RowCount() int {
	return len(d.DailyRegistrations) + len(d.BySource)
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type FundingProgress struct {
	ProjectID          uint    `json:"project_id"`
	Title              string  `json:"title"`
	TargetAmount       int64   `json:"target_amount"`
	CollectedAmount    int64   `json:"collected_amount"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

type ProjectsMetrics struct {
	AverageFundingTime float64 `json:"average_funding_time"`
}

type ProjectsData struct {
	ByStatus        []StatusCount     `json:"by_status"`
	FundingProgress []FundingProgress `json:"funding_progress"`
	Metrics         *ProjectsMetrics  `json:"metrics,omitempty"`
}

// RowCount counts funding entries only: the by-status groups are aggregates
// over the same projects, not rows of their own.
func (d ProjectsData) RowCount() int {
	return len(d.FundingProgress)
}

type AnalyticsData struct {
	ConversionRate  float64 `json:"conversion_rate"`
	AverageDonation float64 `json:"average_donation"`
	RetentionRate   float64 `json:"retention_rate"`
	GrowthRate      float64 `json:"growth_rate"`
}

// RowCount is zero: analytics carries only scalar rates.
func (d AnalyticsData) RowCount() int { return 0 }

// ReportSection nests one sub-report's data and summary inside a
// comprehensive payload.
type ReportSection struct {
	Data    ReportData             `json:"data"`
	Summary map[string]interface{} `json:"summary"`
}

func (s *ReportSection) RowCount() int {
	if s == nil || s.Data == nil {
		return 0
	}
	return s.Data.RowCount()
}

type ComprehensiveData struct {
	Revenue   *ReportSection `json:"revenue,omitempty"`
	Members   *ReportSection `json:"members,omitempty"`
	Projects  *ReportSection `json:"projects,omitempty"`
	Analytics *AnalyticsData `json:"analytics,omitempty"`
}

func (d ComprehensiveData) RowCount() int {
	return d.Revenue.RowCount() + d.Members.RowCount() + d.Projects.RowCount()
}

// structToMap round-trips a struct through JSON so persisted shapes match
// the wire shapes exactly.
func structToMap(v interface{}) map[string]interface{} {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
