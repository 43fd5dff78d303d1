package services

import (
	"context"
	"errors"

	"fundraiser/src/models"
	"fundraiser/src/schemas"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const reportsPageSize = 20

type ReportServiceI interface {
	ListReportTypes() []schemas.ReportTypeInfo
	ListReports(ctx context.Context, organizationID uint, query schemas.ListReportsQuery) (*schemas.ReportPage, error)
	GetReport(ctx context.Context, id uint) (*models.Report, error)
	CreateReport(ctx context.Context, org *models.Organization, req *schemas.CreateReportRequest, user *models.User) (*models.Report, error)
	UpdateReport(ctx context.Context, report *models.Report, req *schemas.UpdateReportRequest, user *models.User) (*models.Report, error)
	DeleteReport(ctx context.Context, report *models.Report) error
	EnsureReportBelongsToOrganization(report *models.Report, org *models.Organization) error
	BuildReportPayload(ctx context.Context, org *models.Organization, reportType schemas.ReportType, filters schemas.ReportFilters, project *models.Project, stage *models.ProjectStage) (*schemas.ReportPayload, error)
	PersistRun(ctx context.Context, payload *schemas.ReportPayload, org *models.Organization, user *models.User, report *models.Report, project *models.Project, stage *models.ProjectStage) (*models.ReportRun, error)
	Export(ctx context.Context, payload *schemas.ReportPayload, format, filename string) (*schemas.ExportFile, error)
}

// ReportService coordinates report-definition CRUD, payload generation and
// run persistence. All multi-step mutations run in one transaction.
type ReportService struct {
	DB        *gorm.DB
	generator ReportGeneratorI
	exporter  ReportExporterI
}

func NewReportService(db *gorm.DB, generator ReportGeneratorI, exporter ReportExporterI) *ReportService {
	return &ReportService{DB: db, generator: generator, exporter: exporter}
}

var reportPreloads = []string{"Project", "Stage", "Creator", "Updater", "LastRun"}

func withReportPreloads(db *gorm.DB) *gorm.DB {
	for _, rel := range reportPreloads {
		db = db.Preload(rel)
	}
	return db
}

// ListReportTypes is the static report-type catalog: purely descriptive,
// one entry per type.
func (s *ReportService) ListReportTypes() []schemas.ReportTypeInfo {
	return []schemas.ReportTypeInfo{
		{
			Type:          schemas.ReportTypeRevenue,
			Label:         "Доходы",
			Description:   "Суммы и количество завершенных пожертвований по периодам",
			Icon:          "chart-bar",
			DefaultConfig: schemas.ReportFilters{Period: schemas.PeriodMonth, GroupBy: string(schemas.GroupByDay)},
			AllowedGroupings: []schemas.GroupBy{
				schemas.GroupByDay, schemas.GroupByWeek, schemas.GroupByMonth,
				schemas.GroupByQuarter, schemas.GroupByProject, schemas.GroupByPaymentMethod,
			},
		},
		{
			Type:          schemas.ReportTypeMembers,
			Label:         "Участники",
			Description:   "Регистрации, источники и активность участников",
			Icon:          "users",
			DefaultConfig: schemas.ReportFilters{Period: schemas.PeriodMonth},
		},
		{
			Type:          schemas.ReportTypeProjects,
			Label:         "Проекты",
			Description:   "Статусы проектов и прогресс сборов",
			Icon:          "folder",
			DefaultConfig: schemas.ReportFilters{Period: schemas.PeriodMonth, Status: "all"},
		},
		{
			Type:          schemas.ReportTypeComprehensive,
			Label:         "Комплексный",
			Description:   "Доходы, участники, проекты и аналитика в одном отчете",
			Icon:          "layers",
			DefaultConfig: schemas.ReportFilters{Period: schemas.PeriodMonth, GroupBy: string(schemas.GroupByWeek)},
		},
		{
			Type:          schemas.ReportTypeCustom,
			Label:         "Пользовательский",
			Description:   "Отчет по доходам с произвольным заголовком и группировкой",
			Icon:          "settings",
			DefaultConfig: schemas.ReportFilters{Period: schemas.PeriodMonth, GroupBy: string(schemas.GroupByMonth)},
			AllowedGroupings: []schemas.GroupBy{
				schemas.GroupByDay, schemas.GroupByWeek, schemas.GroupByMonth,
				schemas.GroupByQuarter, schemas.GroupByProject, schemas.GroupByPaymentMethod,
			},
		},
	}
}

func (s *ReportService) ListReports(ctx context.Context, organizationID uint, query schemas.ListReportsQuery) (*schemas.ReportPage, error) {
	db := s.DB.WithContext(ctx).Model(&models.Report{}).Where("organization_id = ?", organizationID)

	if query.Type != "" {
		db = db.Where("type = ?", query.Type)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Search != "" {
		needle := "%" + query.Search + "%"
		db = db.Where("title LIKE ? OR description LIKE ?", needle, needle)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}

	var reports []models.Report
	err := withReportPreloads(db).
		Order("created_at DESC").
		Order("id DESC").
		Offset((page - 1) * reportsPageSize).
		Limit(reportsPageSize).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	return &schemas.ReportPage{
		Items:   reports,
		Total:   total,
		Page:    page,
		PerPage: reportsPageSize,
	}, nil
}

func (s *ReportService) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	err := withReportPreloads(s.DB.WithContext(ctx)).First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Message: "report not found"}
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportService) CreateReport(ctx context.Context, org *models.Organization, req *schemas.CreateReportRequest, user *models.User) (*models.Report, error) {
	report := models.Report{
		OrganizationID: org.ID,
		Type:           req.Type,
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Visibility:     req.Visibility,
		Filters:        models.JSONMap(req.Filters.ToMap()),
	}
	if req.ProjectID.Set {
		report.ProjectID = req.ProjectID.Value
	}
	if req.StageID.Set {
		report.StageID = req.StageID.Value
	}
	if user != nil {
		report.CreatedByID = &user.ID
		report.UpdatedByID = &user.ID
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&report).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetReport(ctx, report.ID)
}

func (s *ReportService) UpdateReport(ctx context.Context, report *models.Report, req *schemas.UpdateReportRequest, user *models.User) (*models.Report, error) {
	if req.Type != nil {
		report.Type = *req.Type
	}
	if req.Title != nil {
		report.Title = *req.Title
	}
	if req.Description != nil {
		report.Description = *req.Description
	}
	if req.Status != nil {
		report.Status = *req.Status
	}
	if req.Visibility != nil {
		report.Visibility = *req.Visibility
	}
	if req.Filters != nil {
		report.Filters = models.JSONMap(req.Filters.ToMap())
	}
	// A present project/stage key detaches the prior association first, so
	// an empty id clears it and a value re-associates.
	if req.ProjectID.Set {
		report.ProjectID = nil
		report.Project = nil
		if req.ProjectID.Value != nil {
			report.ProjectID = req.ProjectID.Value
		}
	}
	if req.StageID.Set {
		report.StageID = nil
		report.Stage = nil
		if req.StageID.Value != nil {
			report.StageID = req.StageID.Value
		}
	}
	if user != nil {
		report.UpdatedByID = &user.ID
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(reportPreloads...).Save(report).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetReport(ctx, report.ID)
}

func (s *ReportService) DeleteReport(ctx context.Context, report *models.Report) error {
	return s.DB.WithContext(ctx).Delete(&models.Report{}, report.ID).Error
}

// EnsureReportBelongsToOrganization guards tenant isolation. A mismatch is
// answered as not-found so report existence does not leak.
func (s *ReportService) EnsureReportBelongsToOrganization(report *models.Report, org *models.Organization) error {
	if report.OrganizationID != org.ID {
		return &NotFoundError{Message: "report not found"}
	}
	return nil
}

func (s *ReportService) BuildReportPayload(ctx context.Context, org *models.Organization, reportType schemas.ReportType, filters schemas.ReportFilters, project *models.Project, stage *models.ProjectStage) (*schemas.ReportPayload, error) {
	return s.generator.Generate(ctx, org, reportType, filters, project, stage)
}

// PersistRun snapshots a payload as an immutable ReportRun and, when a
// report definition is linked, refreshes its cached filters/summary/meta.
func (s *ReportService) PersistRun(
	ctx context.Context,
	payload *schemas.ReportPayload,
	org *models.Organization,
	user *models.User,
	report *models.Report,
	project *models.Project,
	stage *models.ProjectStage,
) (*models.ReportRun, error) {
	run := models.ReportRun{
		Token:          uuid.New(),
		OrganizationID: org.ID,
		Type:           string(payload.Type),
		Title:          payload.Title,
		Filters:        models.JSONMap(payload.Filters.ToMap()),
		Meta:           models.JSONMap(payload.Meta.ToMap()),
		Summary:        models.JSONMap(payload.Summary),
		Data:           models.JSONMap(payload.DataMap()),
		RowsCount:      payload.RowsCount,
		GeneratedAt:    payload.GeneratedAt,
	}
	if report != nil {
		run.ReportID = &report.ID
	}
	if project != nil {
		run.ProjectID = &project.ID
	}
	if stage != nil {
		run.StageID = &stage.ID
	}
	if user != nil {
		run.CreatedByID = &user.ID
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if report == nil {
			return nil
		}

		meta := map[string]interface{}(report.Meta)
		if meta == nil {
			meta = map[string]interface{}{}
		}
		for k, v := range payload.Meta.ToMap() {
			meta[k] = v
		}

		return tx.Model(&models.Report{}).Where("id = ?", report.ID).Updates(map[string]interface{}{
			"filters":      models.JSONMap(payload.Filters.ToMap()),
			"summary":      models.JSONMap(payload.Summary),
			"meta":         models.JSONMap(meta),
			"generated_at": payload.GeneratedAt,
			"last_run_id":  run.ID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &run, nil
}

func (s *ReportService) Export(ctx context.Context, payload *schemas.ReportPayload, format, filename string) (*schemas.ExportFile, error) {
	return s.exporter.Export(ctx, payload, format, filename)
}
