package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is a mutable, organization-owned report definition. Generated runs
// reference it but live their own immutable lifecycle in ReportRun.
type Report struct {
	ID             uint       `gorm:"primaryKey;column:id"`
	OrganizationID uint       `gorm:"column:organization_id"`
	ProjectID      *uint      `gorm:"column:project_id"`
	StageID        *uint      `gorm:"column:stage_id"`
	Type           string     `gorm:"column:type"`
	Title          string     `gorm:"column:title"`
	Description    string     `gorm:"column:description"`
	Status         string     `gorm:"column:status"`
	Visibility     string     `gorm:"column:visibility"`
	Filters        JSONMap    `gorm:"column:filters;type:json"`
	Summary        JSONMap    `gorm:"column:summary;type:json"`
	Meta           JSONMap    `gorm:"column:meta;type:json"`
	GeneratedAt    *time.Time `gorm:"column:generated_at"`
	LastRunID      *uint      `gorm:"column:last_run_id"`
	CreatedByID    *uint      `gorm:"column:created_by_id"`
	UpdatedByID    *uint      `gorm:"column:updated_by_id"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Project *Project      `gorm:"foreignKey:ProjectID"`
	Stage   *ProjectStage `gorm:"foreignKey:StageID"`
	Creator *User         `gorm:"foreignKey:CreatedByID"`
	Updater *User         `gorm:"foreignKey:UpdatedByID"`
	LastRun *ReportRun    `gorm:"foreignKey:LastRunID"`
}

func (Report) TableName() string {
	return "reports"
}

// ReportRun is the persisted snapshot of one report generation. Rows are
// written once and never updated; new generations supersede them.
type ReportRun struct {
	ID             uint      `gorm:"primaryKey;column:id"`
	Token          uuid.UUID `gorm:"column:token"`
	ReportID       *uint     `gorm:"column:report_id"`
	OrganizationID uint      `gorm:"column:organization_id"`
	ProjectID      *uint     `gorm:"column:project_id"`
	StageID        *uint     `gorm:"column:stage_id"`
	Type           string    `gorm:"column:type"`
	Title          string    `gorm:"column:title"`
	Filters        JSONMap   `gorm:"column:filters;type:json"`
	Meta           JSONMap   `gorm:"column:meta;type:json"`
	Summary        JSONMap   `gorm:"column:summary;type:json"`
	Data           JSONMap   `gorm:"column:data;type:json"`
	RowsCount      int       `gorm:"column:rows_count"`
	GeneratedAt    time.Time `gorm:"column:generated_at"`
	CreatedByID    *uint     `gorm:"column:created_by_id"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ReportRun) TableName() string {
	return "report_runs"
}
