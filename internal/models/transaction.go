package models

import "time"

type TransactionType string

const (
	TypeExpense TransactionType = "expense"
	TypePayment TransactionType = "payment"
	TypeIncome  TransactionType = "income"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusApproved  TransactionStatus = "approved"
	StatusRejected  TransactionStatus = "rejected"
	StatusCompleted TransactionStatus = "completed"
)

type TransactionCategory string

const (
	CategorySalary     TransactionCategory = "salary"
	CategoryEquipment  TransactionCategory = "equipment"
	CategorySoftware   TransactionCategory = "software"
	CategoryConsulting TransactionCategory = "consulting"
	CategoryOffice     TransactionCategory = "office"
	CategoryTravel     TransactionCategory = "travel"
	CategoryMarketing  TransactionCategory = "marketing"
	CategoryUtilities  TransactionCategory = "utilities"
	CategoryTaxes      TransactionCategory = "taxes"
	CategoryOther      TransactionCategory = "other"
)

func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TypeExpense, TypePayment, TypeIncome:
		return true
	}
	return false
}

func ValidTransactionCategory(c TransactionCategory) bool {
	switch c {
	case CategorySalary, CategoryEquipment, CategorySoftware, CategoryConsulting,
		CategoryOffice, CategoryTravel, CategoryMarketing, CategoryUtilities,
		CategoryTaxes, CategoryOther:
		return true
	}
	return false
}

type Transaction struct {
	ID          uint                `gorm:"primaryKey"`
	Type        TransactionType     `gorm:"size:20;not null"`
	Amount      float64             `gorm:"not null"`
	Description string              `gorm:"size:255;not null"`
	Date        time.Time           `gorm:"index;not null"`
	Category    TransactionCategory `gorm:"size:30;not null"`

	ProjectID uint `gorm:"index;not null"`
	Project   Project

	// Always copied from the referenced project at creation, never set by clients.
	CompanyID uint `gorm:"index;not null"`
	Company   Company

	Status TransactionStatus `gorm:"size:20;not null;default:pending"`

	// Set iff status is approved or rejected.
	ApprovedByID *uint
	ApprovedBy   *User

	CreatedByID uint `gorm:"index;not null"`
	CreatedBy   User

	Notes string `gorm:"size:1000"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
