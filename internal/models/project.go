package models

import "time"

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectOnHold     ProjectStatus = "on-hold"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

type Project struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:255;not null"`

	CompanyID uint `gorm:"index;not null"`
	Company   Company

	StartDate time.Time     `gorm:"not null"`
	EndDate   *time.Time
	Status    ProjectStatus `gorm:"size:20;not null;default:planning"`
	Budget    float64       `gorm:"not null;default:0"`

	Managers []User `gorm:"many2many:project_managers;"`
	Team     []User `gorm:"many2many:project_team;"`

	CreatedByID uint `gorm:"index;not null"`
	CreatedBy   User

	CreatedAt time.Time
	UpdatedAt time.Time
}
