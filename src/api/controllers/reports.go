package controllers

import (
	"context"

	"fundraiser/src/models"
	"fundraiser/src/schemas"
	"fundraiser/src/services"

	"gorm.io/gorm"
)

type ReportsControllerI interface {
	GetReportTypes() []schemas.ReportTypeInfo
	ListReports(ctx context.Context, orgID uint, query schemas.ListReportsQuery) (*schemas.ReportPage, error)
	CreateReport(ctx context.Context, orgID uint, req *schemas.CreateReportRequest, user *models.User) (*models.Report, error)
	UpdateReport(ctx context.Context, orgID uint, req *schemas.UpdateReportRequest, user *models.User) (*models.Report, error)
	DeleteReport(ctx context.Context, orgID, reportID uint) error
	GenerateReport(ctx context.Context, orgID uint, req *schemas.GenerateReportRequest, user *models.User) (*schemas.GenerateReportResponse, error)
	ExportReport(ctx context.Context, orgID uint, req *schemas.ExportReportRequest) (*schemas.ExportFile, error)
}

type ReportsController struct {
	DB      *gorm.DB
	Service services.ReportServiceI
}

func NewReportsController(db *gorm.DB, service services.ReportServiceI) *ReportsController {
	return &ReportsController{DB: db, Service: service}
}

func (c *ReportsController) GetReportTypes() []schemas.ReportTypeInfo {
	return c.Service.ListReportTypes()
}

func (c *ReportsController) ListReports(ctx context.Context, orgID uint, query schemas.ListReportsQuery) (*schemas.ReportPage, error) {
	org, err := loadOrganization(ctx, c.DB, orgID)
	if err != nil {
		return nil, err
	}
	return c.Service.ListReports(ctx, org.ID, query)
}

func (c *ReportsController) CreateReport(ctx context.Context, orgID uint, req *schemas.CreateReportRequest, user *models.User) (*models.Report, error) {
	org, err := loadOrganization(ctx, c.DB, orgID)
	if err != nil {
		return nil, err
	}
	if !schemas.ReportType(req.Type).Valid() {
		return nil, services.NewInvalidFilterError("unknown report type: %s", req.Type)
	}
	return c.Service.CreateReport(ctx, org, req, user)
}

func (c *ReportsController) UpdateReport(ctx context.Context, orgID uint, req *schemas.UpdateReportRequest, user *models.User) (*models.Report, error) {
	org, err := loadOrganization(ctx, c.DB, orgID)
	if err != nil {
		return nil, err
	}
	report, err := c.Service.GetReport(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if err := c.Service.EnsureReportBelongsToOrganization(report, org); err != nil {
		return nil, err
	}
	return c.Service.UpdateReport(ctx, report, req, user)
}

func (c *ReportsController) DeleteReport(ctx context.Context, orgID, reportID uint) error {
	org, err := loadOrganization(ctx, c.DB, orgID)
	if err != nil {
		return err
	}
	report, err := c.Service.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	if err := c.Service.EnsureReportBelongsToOrganization(report, org); err != nil {
		return err
	}
	return c.Service.DeleteReport(ctx, report)
}

// resolveScope loads the optional report definition, project and stage a
// generate/export request references, enforcing tenant ownership.
func (c *ReportsController) resolveScope(ctx context.Context, org *models.Organization, req *schemas.GenerateReportRequest) (*models.Report, *models.Project, *models.ProjectStage, error) {
	var (
		report  *models.Report
		project *models.Project
		stage   *models.ProjectStage
		err     error
	)

	if req.ReportID != nil {
		report, err = c.Service.GetReport(ctx, *req.ReportID)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := c.Service.EnsureReportBelongsToOrganization(report, org); err != nil {
			return nil, nil, nil, err
		}
	}
	if req.ProjectID != nil {
		project, err = loadProject(ctx, c.DB, org.ID, *req.ProjectID)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	if req.StageID != nil {
		stage, err = loadStage(ctx, c.DB, org.ID, req.ProjectID, *req.StageID)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return report, project, stage, nil
}

func (c *ReportsController) GenerateReport(ctx context.Context, orgID uint, req *schemas.GenerateReportRequest, user *models.User) (*schemas.GenerateReportResponse, error) {
	org, err := loadOrganization(ctx, c.DB, orgID)
	if err != nil {
		return nil, err
	}
	reportType := schemas.ReportType(req.Type)
	if !reportType.Valid() {
		return nil, services.NewInvalidFilterError("unknown report type: %s", req.Type)
	}

	report, project, stage, err := c.resolveScope(ctx, org, req)
	if err != nil {
		return nil, err
	}

	payload, err := c.Service.BuildReportPayload(ctx, org, reportType, req.Filters, project, stage)
	if err != nil {
		return nil, err
	}

	run, err := c.Service.PersistRun(ctx, payload, org, user, report, project, stage)
	if err != nil {
		return nil, err
	}

	return &schemas.GenerateReportResponse{Payload: payload, Run: run}, nil
}

func (c *ReportsController) ExportReport(ctx context.Context, orgID uint, req *schemas.ExportReportRequest) (*schemas.ExportFile, error) {
	org, err := loadOrganization(ctx, c.DB, orgID)
	if err != nil {
		return nil, err
	}
	reportType := schemas.ReportType(req.Type)
	if !reportType.Valid() {
		return nil, services.NewInvalidFilterError("unknown report type: %s", req.Type)
	}

	_, project, stage, err := c.resolveScope(ctx, org, &req.GenerateReportRequest)
	if err != nil {
		return nil, err
	}

	payload, err := c.Service.BuildReportPayload(ctx, org, reportType, req.Filters, project, stage)
	if err != nil {
		return nil, err
	}

	return c.Service.Export(ctx, payload, req.Format, req.Filename)
}
