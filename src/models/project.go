package models

import "time"

const ProjectStatusCompleted = "completed"

type Project struct {
	ID              uint      `gorm:"primaryKey;column:id"`
	OrganizationID  uint      `gorm:"column:organization_id"`
	Title           string    `gorm:"column:title"`
	Status          string    `gorm:"column:status"`
	TargetAmount    int64     `gorm:"column:target_amount"`
	CollectedAmount int64     `gorm:"column:collected_amount"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectStage is a sub-period of a project with its own funding target.
// Its date window can narrow a report's range when supplied.
type ProjectStage struct {
	ID              uint       `gorm:"primaryKey;column:id"`
	ProjectID       uint       `gorm:"column:project_id"`
	Title           string     `gorm:"column:title"`
	StartDate       *time.Time `gorm:"column:start_date"`
	EndDate         *time.Time `gorm:"column:end_date"`
	TargetAmount    int64      `gorm:"column:target_amount"`
	CollectedAmount int64      `gorm:"column:collected_amount"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProjectStage) TableName() string {
	return "project_stages"
}
