package services

import (
	"context"
	"fmt"
	"testing"

	"fundraiser/src/models"
	"fundraiser/src/schemas"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Project{},
		&models.ProjectStage{},
		&models.Report{},
		&models.ReportRun{},
	))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB) (*models.Organization, *models.User) {
	t.Helper()

	org := models.Organization{Name: "Фонд", Slug: "fond", Active: true}
	require.NoError(t, db.Create(&org).Error)

	user := models.User{OrganizationID: org.ID, Name: "Анна", Email: "anna@example.org", Active: true}
	require.NoError(t, db.Create(&user).Error)

	return &org, &user
}

func newTestService(db *gorm.DB) *ReportService {
	return NewReportService(db, nil, nil)
}

func TestListReportTypesCatalog(t *testing.T) {
	s := newTestService(nil)

	infos := s.ListReportTypes()
	require.Len(t, infos, len(schemas.ReportTypes))

	seen := map[schemas.ReportType]bool{}
	for _, info := range infos {
		assert.True(t, info.Type.Valid())
		assert.False(t, seen[info.Type], "duplicate catalog entry for %s", info.Type)
		seen[info.Type] = true
		assert.NotEmpty(t, info.Label)
		assert.NotEmpty(t, info.Description)
	}
}

func TestCreateAndGetReport(t *testing.T) {
	db := setupServiceDB(t)
	org, user := seedTenant(t, db)
	s := newTestService(db)

	created, err := s.CreateReport(context.Background(), org, &schemas.CreateReportRequest{
		Type:        string(schemas.ReportTypeRevenue),
		Title:       "Доходы за месяц",
		Description: "Ежемесячный отчет",
		Status:      "active",
		Visibility:  "private",
		Filters:     schemas.ReportFilters{Period: schemas.PeriodMonth, GroupBy: "day"},
	}, user)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	assert.Equal(t, org.ID, created.OrganizationID)
	require.NotNil(t, created.CreatedByID)
	assert.Equal(t, user.ID, *created.CreatedByID)
	require.NotNil(t, created.Creator)
	assert.Equal(t, "Анна", created.Creator.Name)
	assert.Equal(t, "month", created.Filters["period"])

	got, err := s.GetReport(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Доходы за месяц", got.Title)
}

func TestGetReportNotFound(t *testing.T) {
	db := setupServiceDB(t)
	s := newTestService(db)

	_, err := s.GetReport(context.Background(), 999)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListReportsPagination(t *testing.T) {
	db := setupServiceDB(t)
	org, user := seedTenant(t, db)
	s := newTestService(db)

	for i := 0; i < 25; i++ {
		_, err := s.CreateReport(context.Background(), org, &schemas.CreateReportRequest{
			Type:   string(schemas.ReportTypeRevenue),
			Title:  fmt.Sprintf("Отчет %d", i),
			Status: "active",
		}, user)
		require.NoError(t, err)
	}

	page, err := s.ListReports(context.Background(), org.ID, schemas.ListReportsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PerPage)
	require.Len(t, page.Items, 20)

	// Newest first.
	assert.Equal(t, "Отчет 24", page.Items[0].Title)

	second, err := s.ListReports(context.Background(), org.ID, schemas.ListReportsQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Items, 5)
	assert.Equal(t, "Отчет 4", second.Items[0].Title)
}

func TestListReportsFilters(t *testing.T) {
	db := setupServiceDB(t)
	org, user := seedTenant(t, db)
	other := models.Organization{Name: "Другой фонд", Slug: "other", Active: true}
	require.NoError(t, db.Create(&other).Error)
	s := newTestService(db)

	mk := func(org *models.Organization, typ, title, status string) {
		_, err := s.CreateReport(context.Background(), org, &schemas.CreateReportRequest{
			Type: typ, Title: title, Status: status,
		}, user)
		require.NoError(t, err)
	}
	mk(org, "revenue", "Доходы март", "active")
	mk(org, "members", "Участники март", "active")
	mk(org, "revenue", "Доходы апрель", "archived")
	mk(&other, "revenue", "Чужой отчет", "active")

	page, err := s.ListReports(context.Background(), org.ID, schemas.ListReportsQuery{Type: "revenue"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = s.ListReports(context.Background(), org.ID, schemas.ListReportsQuery{Status: "archived"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Доходы апрель", page.Items[0].Title)

	page, err = s.ListReports(context.Background(), org.ID, schemas.ListReportsQuery{Search: "март"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	// Another organization's reports never leak into the listing.
	page, err = s.ListReports(context.Background(), org.ID, schemas.ListReportsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
}

func TestUpdateReportAssociations(t *testing.T) {
	db := setupServiceDB(t)
	org, user := seedTenant(t, db)
	s := newTestService(db)

	project := models.Project{OrganizationID: org.ID, Title: "Колодец", Status: "active"}
	require.NoError(t, db.Create(&project).Error)

	report, err := s.CreateReport(context.Background(), org, &schemas.CreateReportRequest{
		Type:      string(schemas.ReportTypeRevenue),
		Title:     "Доходы проекта",
		Status:    "active",
		ProjectID: schemas.OptionalID{Set: true, Value: &project.ID},
	}, user)
	require.NoError(t, err)
	require.NotNil(t, report.ProjectID)
	require.NotNil(t, report.Project)
	assert.Equal(t, "Колодец", report.Project.Title)

	// A present-but-empty key detaches the project.
	updated, err := s.UpdateReport(context.Background(), report, &schemas.UpdateReportRequest{
		ProjectID: schemas.OptionalID{Set: true, Value: nil},
	}, user)
	require.NoError(t, err)
	assert.Nil(t, updated.ProjectID)
	assert.Nil(t, updated.Project)

	// An absent key leaves the association untouched.
	title := "Переименованный"
	updated, err = s.UpdateReport(context.Background(), report, &schemas.UpdateReportRequest{
		Title: &title,
	}, user)
	require.NoError(t, err)
	assert.Equal(t, "Переименованный", updated.Title)
	assert.Nil(t, updated.ProjectID)

	// A new value re-associates.
	updated, err = s.UpdateReport(context.Background(), updated, &schemas.UpdateReportRequest{
		ProjectID: schemas.OptionalID{Set: true, Value: &project.ID},
	}, user)
	require.NoError(t, err)
	require.NotNil(t, updated.ProjectID)
	assert.Equal(t, project.ID, *updated.ProjectID)
}

func TestDeleteReport(t *testing.T) {
	db := setupServiceDB(t)
	org, user := seedTenant(t, db)
	s := newTestService(db)

	report, err := s.CreateReport(context.Background(), org, &schemas.CreateReportRequest{
		Type: "revenue", Title: "Временный", Status: "active",
	}, user)
	require.NoError(t, err)

	require.NoError(t, s.DeleteReport(context.Background(), report))

	_, err = s.GetReport(context.Background(), report.ID)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestEnsureReportBelongsToOrganization(t *testing.T) {
	s := newTestService(nil)

	report := &models.Report{ID: 1, OrganizationID: 5}
	require.NoError(t, s.EnsureReportBelongsToOrganization(report, &models.Organization{ID: 5}))

	err := s.EnsureReportBelongsToOrganization(report, &models.Organization{ID: 6})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPersistRun(t *testing.T) {
	db := setupServiceDB(t)
	org, user := seedTenant(t, db)
	s := newTestService(db)

	report, err := s.CreateReport(context.Background(), org, &schemas.CreateReportRequest{
		Type: "revenue", Title: "Доходы", Status: "active",
	}, user)
	require.NoError(t, err)

	// Pre-existing meta must survive a run.
	require.NoError(t, db.Model(&models.Report{}).Where("id = ?", report.ID).
		Update("meta", models.JSONMap{"pinned": true}).Error)

	payload := &schemas.ReportPayload{
		Type:    schemas.ReportTypeRevenue,
		Title:   "Отчет по доходам",
		Filters: schemas.ReportFilters{Period: schemas.PeriodMonth},
		Meta: schemas.ReportMeta{
			OrganizationID: org.ID,
			DateFrom:       testNow.AddDate(0, -1, 0),
			DateTo:         testNow,
		},
		Data: schemas.RevenueData{ByPeriod: []schemas.RevenueGroup{
			{Period: "2025-03", Total: 35000, Count: 2, TotalRubles: 350},
		}},
		Summary:     map[string]interface{}{"total_amount": int64(35000)},
		RowsCount:   1,
		GeneratedAt: testNow,
	}

	run, err := s.PersistRun(context.Background(), payload, org, user, report, nil, nil)
	require.NoError(t, err)
	require.NotZero(t, run.ID)
	assert.NotEqual(t, uuid.Nil, run.Token)
	assert.Equal(t, 1, run.RowsCount)
	require.NotNil(t, run.ReportID)
	assert.Equal(t, report.ID, *run.ReportID)

	reloaded, err := s.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastRunID)
	assert.Equal(t, run.ID, *reloaded.LastRunID)
	require.NotNil(t, reloaded.GeneratedAt)
	assert.True(t, reloaded.GeneratedAt.Equal(testNow))
	assert.Equal(t, "month", reloaded.Filters["period"])
	assert.EqualValues(t, 35000, reloaded.Summary["total_amount"])

	// Run meta was merged over what was already there.
	assert.Equal(t, true, reloaded.Meta["pinned"])
	assert.Contains(t, reloaded.Meta, "organization_id")

	require.NotNil(t, reloaded.LastRun)
	assert.Equal(t, run.Token, reloaded.LastRun.Token)
}

func TestPersistRunWithoutReport(t *testing.T) {
	db := setupServiceDB(t)
	org, user := seedTenant(t, db)
	s := newTestService(db)

	payload := &schemas.ReportPayload{
		Type:        schemas.ReportTypeMembers,
		Title:       "Отчет по участникам",
		Data:        schemas.MembersData{ActiveMembers: 3},
		Summary:     map[string]interface{}{"active_members": int64(3)},
		GeneratedAt: testNow,
	}

	run, err := s.PersistRun(context.Background(), payload, org, user, nil, nil, nil)
	require.NoError(t, err)
	require.NotZero(t, run.ID)
	assert.Nil(t, run.ReportID)

	var count int64
	require.NoError(t, db.Model(&models.ReportRun{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
