package models

import "time"

type Company struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:255"`
	Logo        string `gorm:"size:255"`

	Street  string `gorm:"size:100"`
	City    string `gorm:"size:100"`
	State   string `gorm:"size:100"`
	ZipCode string `gorm:"size:20"`
	Country string `gorm:"size:100"`

	ContactEmail string `gorm:"size:100"`
	ContactPhone string `gorm:"size:30"`
	Website      string `gorm:"size:100"`

	CreatedByID uint `gorm:"index;not null"`
	CreatedBy   User
	Managers    []User `gorm:"many2many:company_managers;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
