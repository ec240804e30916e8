package finance

import (
	"sort"
	"time"

	"projectfin-backend/internal/apperr"
	"projectfin-backend/internal/models"
	"projectfin-backend/internal/scope"

	"gorm.io/gorm"
)

type TypeSummary struct {
	Type  models.TransactionType `json:"type"`
	Total float64                `json:"total"`
	Count int64                  `json:"count"`
}

type CategorySummary struct {
	Category models.TransactionCategory `json:"category"`
	Total    float64                    `json:"total"`
	Count    int64                      `json:"count"`
}

type MonthlySummary struct {
	Year  int                    `json:"year"`
	Month int                    `json:"month"`
	Type  models.TransactionType `json:"type"`
	Total float64                `json:"total"`
}

type StatusCount struct {
	Status models.TransactionStatus `json:"status"`
	Count  int64                    `json:"count"`
}

type Totals struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

type Summary struct {
	ByType     []TypeSummary     `json:"byType"`
	ByCategory []CategorySummary `json:"byCategory"`
	Monthly    []MonthlySummary  `json:"monthly"`
	ByStatus   []StatusCount     `json:"byStatus"`
}

type SummaryResponse struct {
	Summary Summary `json:"summary"`
	Totals  Totals  `json:"totals"`
}

// SummaryFilters narrow the aggregated set. Zero values mean "not set".
type SummaryFilters struct {
	Company   uint
	Project   uint
	StartDate *time.Time
	EndDate   *time.Time
}

// BuildSummary aggregates approved transactions visible to the principal.
// The requested status filter never applies here: summary endpoints only
// ever aggregate approved transactions.
func BuildSummary(db *gorm.DB, p models.Principal, f SummaryFilters) (*SummaryResponse, error) {
	scoped := func() *gorm.DB {
		q := db.Model(&models.Transaction{}).Scopes(scope.ForTransactions(db, p))
		if f.Company != 0 {
			q = q.Where("transactions.company_id = ?", f.Company)
		}
		if f.Project != 0 {
			q = q.Where("transactions.project_id = ?", f.Project)
		}
		if f.StartDate != nil {
			q = q.Where("transactions.date >= ?", *f.StartDate)
		}
		if f.EndDate != nil {
			q = q.Where("transactions.date <= ?", *f.EndDate)
		}
		return q.Where("transactions.status = ?", models.StatusApproved)
	}

	byType := make([]TypeSummary, 0)
	if err := scoped().
		Select("type, SUM(amount) AS total, COUNT(*) AS count").
		Group("type").
		Scan(&byType).Error; err != nil {
		return nil, apperr.Internal("summary by type failed", err)
	}

	byCategory := make([]CategorySummary, 0)
	if err := scoped().
		Select("category, SUM(amount) AS total, COUNT(*) AS count").
		Group("category").
		Scan(&byCategory).Error; err != nil {
		return nil, apperr.Internal("summary by category failed", err)
	}

	// Monthly grouping is folded in Go so the date bucketing works the same
	// on every SQL dialect.
	var rows []monthlyRow
	if err := scoped().
		Select("date, type, amount").
		Scan(&rows).Error; err != nil {
		return nil, apperr.Internal("monthly summary failed", err)
	}
	monthly := foldMonthly(rows)

	// Status counts intentionally bypass the manager project scope: only the
	// user role is narrowed to self-created transactions.
	statusQ := db.Model(&models.Transaction{})
	if p.Role == models.RoleUser {
		statusQ = statusQ.Where("created_by_id = ?", p.ID)
	}
	byStatus := make([]StatusCount, 0)
	if err := statusQ.
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, apperr.Internal("status count failed", err)
	}

	return &SummaryResponse{
		Summary: Summary{
			ByType:     byType,
			ByCategory: byCategory,
			Monthly:    monthly,
			ByStatus:   byStatus,
		},
		Totals: DeriveTotals(byType),
	}, nil
}

type monthlyRow struct {
	Date   time.Time
	Type   models.TransactionType
	Amount float64
}

func foldMonthly(rows []monthlyRow) []MonthlySummary {
	type key struct {
		year  int
		month int
		typ   models.TransactionType
	}

	buckets := make(map[key]float64)
	for _, r := range rows {
		k := key{year: r.Date.Year(), month: int(r.Date.Month()), typ: r.Type}
		buckets[k] += r.Amount
	}

	monthly := make([]MonthlySummary, 0, len(buckets))
	for k, total := range buckets {
		monthly = append(monthly, MonthlySummary{
			Year:  k.year,
			Month: k.month,
			Type:  k.typ,
			Total: total,
		})
	}

	sort.Slice(monthly, func(i, j int) bool {
		if monthly[i].Year != monthly[j].Year {
			return monthly[i].Year < monthly[j].Year
		}
		if monthly[i].Month != monthly[j].Month {
			return monthly[i].Month < monthly[j].Month
		}
		return monthly[i].Type < monthly[j].Type
	})

	return monthly
}

// DeriveTotals computes the income/expense/balance totals from the by-type
// summary. Payment and income both count as income; missing types are 0.
func DeriveTotals(byType []TypeSummary) Totals {
	var t Totals
	for _, item := range byType {
		switch item.Type {
		case models.TypeExpense:
			t.Expenses += item.Total
		case models.TypePayment, models.TypeIncome:
			t.Income += item.Total
		}
	}
	t.Balance = t.Income - t.Expenses
	return t
}
