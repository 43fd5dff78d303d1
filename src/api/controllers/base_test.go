package controllers

import (
	"context"
	"testing"

	"fundraiser/src/models"
	"fundraiser/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupControllerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Organization{},
		&models.Project{},
		&models.ProjectStage{},
	))
	return db
}

func TestLoadStageTenantScoping(t *testing.T) {
	db := setupControllerDB(t)

	org := models.Organization{Name: "Фонд", Active: true}
	require.NoError(t, db.Create(&org).Error)
	other := models.Organization{Name: "Другой фонд", Active: true}
	require.NoError(t, db.Create(&other).Error)

	project := models.Project{OrganizationID: org.ID, Title: "Колодец", Status: "active"}
	require.NoError(t, db.Create(&project).Error)
	foreign := models.Project{OrganizationID: other.ID, Title: "Чужой", Status: "active"}
	require.NoError(t, db.Create(&foreign).Error)

	stage := models.ProjectStage{ProjectID: project.ID, Title: "Этап 1", TargetAmount: 10000}
	require.NoError(t, db.Create(&stage).Error)
	foreignStage := models.ProjectStage{ProjectID: foreign.ID, Title: "Чужой этап", TargetAmount: 99999}
	require.NoError(t, db.Create(&foreignStage).Error)

	ctx := context.Background()

	got, err := loadStage(ctx, db, org.ID, nil, stage.ID)
	require.NoError(t, err)
	assert.Equal(t, "Этап 1", got.Title)

	got, err = loadStage(ctx, db, org.ID, &project.ID, stage.ID)
	require.NoError(t, err)
	assert.Equal(t, stage.ID, got.ID)

	// Another organization's stage answers as not-found.
	var notFound *services.NotFoundError
	_, err = loadStage(ctx, db, org.ID, nil, foreignStage.ID)
	require.ErrorAs(t, err, &notFound)

	// A stage outside the supplied project answers as not-found too.
	otherProject := models.Project{OrganizationID: org.ID, Title: "Сад", Status: "active"}
	require.NoError(t, db.Create(&otherProject).Error)
	_, err = loadStage(ctx, db, org.ID, &otherProject.ID, stage.ID)
	require.ErrorAs(t, err, &notFound)
}

func TestLoadProjectTenantScoping(t *testing.T) {
	db := setupControllerDB(t)

	org := models.Organization{Name: "Фонд", Active: true}
	require.NoError(t, db.Create(&org).Error)
	other := models.Organization{Name: "Другой фонд", Active: true}
	require.NoError(t, db.Create(&other).Error)

	project := models.Project{OrganizationID: other.ID, Title: "Чужой", Status: "active"}
	require.NoError(t, db.Create(&project).Error)

	var notFound *services.NotFoundError
	_, err := loadProject(context.Background(), db, org.ID, project.ID)
	require.ErrorAs(t, err, &notFound)
}
