// Package scope resolves which records a principal may see or touch.
// List scoping is expressed as GORM query predicates; instance-level
// decisions live in the permission gate (gate.go).
package scope

import (
	"time"

	"projectfin-backend/internal/models"

	"gorm.io/gorm"
)

// ForCompanies scopes company list queries by role.
func ForCompanies(db *gorm.DB, p models.Principal) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		switch p.Role {
		case models.RoleAdmin:
			return q
		case models.RoleManager:
			managed := db.Table("company_managers").
				Select("company_id").
				Where("user_id = ?", p.ID)
			return q.Where("(companies.created_by_id = ? OR companies.id IN (?))", p.ID, managed)
		default:
			return q.Where("companies.created_by_id = ?", p.ID)
		}
	}
}

// ForProjects scopes project list queries by role. Team membership does not
// grant list visibility; it only grants single-resource reads via the gate.
func ForProjects(db *gorm.DB, p models.Principal) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		switch p.Role {
		case models.RoleAdmin:
			return q
		case models.RoleManager:
			managed := db.Table("project_managers").
				Select("project_id").
				Where("user_id = ?", p.ID)
			return q.Where("(projects.created_by_id = ? OR projects.id IN (?))", p.ID, managed)
		default:
			return q.Where("projects.created_by_id = ?", p.ID)
		}
	}
}

// ForTransactions scopes transaction list queries by role. Managers see
// transactions of projects they created or manage, plus their own; users see
// only their own.
func ForTransactions(db *gorm.DB, p models.Principal) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		switch p.Role {
		case models.RoleAdmin:
			return q
		case models.RoleManager:
			managedProjects := db.Model(&models.Project{}).
				Select("projects.id").
				Joins("LEFT JOIN project_managers pm ON pm.project_id = projects.id").
				Where("projects.created_by_id = ? OR pm.user_id = ?", p.ID, p.ID)
			return q.Where("(transactions.project_id IN (?) OR transactions.created_by_id = ?)", managedProjects, p.ID)
		default:
			return q.Where("transactions.created_by_id = ?", p.ID)
		}
	}
}

// TransactionFilters are caller-supplied narrowing filters, ANDed onto the
// role scope. Zero values mean "not set".
type TransactionFilters struct {
	Project   uint
	Company   uint
	Type      models.TransactionType
	Status    models.TransactionStatus
	Category  models.TransactionCategory
	StartDate *time.Time
	EndDate   *time.Time
	MinAmount float64
	MaxAmount float64
}

func (f TransactionFilters) Apply() func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Project != 0 {
			q = q.Where("transactions.project_id = ?", f.Project)
		}
		if f.Company != 0 {
			q = q.Where("transactions.company_id = ?", f.Company)
		}
		if f.Type != "" {
			q = q.Where("transactions.type = ?", f.Type)
		}
		if f.Status != "" {
			q = q.Where("transactions.status = ?", f.Status)
		}
		if f.Category != "" {
			q = q.Where("transactions.category = ?", f.Category)
		}
		if f.StartDate != nil {
			q = q.Where("transactions.date >= ?", *f.StartDate)
		}
		if f.EndDate != nil {
			q = q.Where("transactions.date <= ?", *f.EndDate)
		}
		if f.MinAmount != 0 {
			q = q.Where("transactions.amount >= ?", f.MinAmount)
		}
		if f.MaxAmount != 0 {
			q = q.Where("transactions.amount <= ?", f.MaxAmount)
		}
		return q
	}
}
