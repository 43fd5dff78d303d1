package controllers

import (
	"context"
	"errors"

	"fundraiser/src/models"
	"fundraiser/src/services"

	"gorm.io/gorm"
)

func loadOrganization(ctx context.Context, db *gorm.DB, id uint) (*models.Organization, error) {
	var org models.Organization
	err := db.WithContext(ctx).First(&org, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &services.NotFoundError{Message: "organization not found"}
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func loadProject(ctx context.Context, db *gorm.DB, orgID, id uint) (*models.Project, error) {
	var project models.Project
	err := db.WithContext(ctx).Where("organization_id = ?", orgID).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &services.NotFoundError{Message: "project not found"}
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// loadStage resolves a stage through its parent project so a stage id from
// another organization answers as not-found. A project id, when supplied,
// must also match.
func loadStage(ctx context.Context, db *gorm.DB, orgID uint, projectID *uint, id uint) (*models.ProjectStage, error) {
	q := db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = project_stages.project_id").
		Where("projects.organization_id = ?", orgID).
		Where("project_stages.id = ?", id)
	if projectID != nil {
		q = q.Where("project_stages.project_id = ?", *projectID)
	}

	var stage models.ProjectStage
	err := q.First(&stage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &services.NotFoundError{Message: "stage not found"}
	}
	if err != nil {
		return nil, err
	}
	return &stage, nil
}
