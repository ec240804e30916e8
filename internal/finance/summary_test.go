package finance

import (
	"testing"
	"time"

	"projectfin-backend/internal/database"
	"projectfin-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type summaryFixture struct {
	admin   models.User
	user    models.User
	project models.Project
}

func seedSummary(t *testing.T, db *gorm.DB) summaryFixture {
	t.Helper()

	f := summaryFixture{
		admin: models.User{Name: "Admin", Email: "admin@test.local", PasswordHash: "x", Role: models.RoleAdmin},
		user:  models.User{Name: "Uma", Email: "uma@test.local", PasswordHash: "x", Role: models.RoleUser},
	}
	for _, u := range []*models.User{&f.admin, &f.user} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	co := models.Company{Name: "Acme", CreatedByID: f.admin.ID}
	if err := db.Create(&co).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	f.project = models.Project{
		Name: "Alpha", Description: "d", CompanyID: co.ID,
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:      models.ProjectPlanning,
		CreatedByID: f.admin.ID,
	}
	if err := db.Create(&f.project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return f
}

func seedTx(t *testing.T, db *gorm.DB, f summaryFixture, creator models.User,
	typ models.TransactionType, amount float64, status models.TransactionStatus, date time.Time) {
	t.Helper()

	tx := models.Transaction{
		Type:        typ,
		Amount:      amount,
		Description: "d",
		Date:        date,
		Category:    models.CategoryOther,
		ProjectID:   f.project.ID,
		CompanyID:   f.project.CompanyID,
		Status:      status,
		CreatedByID: creator.ID,
	}
	if err := db.Create(&tx).Error; err != nil {
		t.Fatalf("seed tx: %v", err)
	}
}

func TestBuildSummary_TotalsAndApprovedOnly(t *testing.T) {
	db := newTestDB(t)
	f := seedSummary(t, db)

	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	seedTx(t, db, f, f.admin, models.TypeExpense, 100, models.StatusApproved, jan)
	seedTx(t, db, f, f.admin, models.TypeIncome, 400, models.StatusApproved, mar)
	seedTx(t, db, f, f.admin, models.TypePayment, 50, models.StatusApproved, mar)
	// Pending and rejected amounts never enter the summary.
	seedTx(t, db, f, f.admin, models.TypeIncome, 9999, models.StatusPending, mar)
	seedTx(t, db, f, f.admin, models.TypeExpense, 9999, models.StatusRejected, mar)

	admin := models.Principal{ID: f.admin.ID, Role: models.RoleAdmin}
	resp, err := BuildSummary(db, admin, SummaryFilters{})
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}

	if resp.Totals.Expenses != 100 {
		t.Errorf("expenses = %v, want 100", resp.Totals.Expenses)
	}
	// Payment and income both count as income.
	if resp.Totals.Income != 450 {
		t.Errorf("income = %v, want 450", resp.Totals.Income)
	}
	if resp.Totals.Balance != resp.Totals.Income-resp.Totals.Expenses {
		t.Errorf("balance = %v, want income-expenses = %v",
			resp.Totals.Balance, resp.Totals.Income-resp.Totals.Expenses)
	}

	var approvedCount int64
	for _, item := range resp.Summary.ByType {
		approvedCount += item.Count
	}
	if approvedCount != 3 {
		t.Errorf("aggregated %d transactions, want 3 approved", approvedCount)
	}
}

func TestBuildSummary_EmptySet(t *testing.T) {
	db := newTestDB(t)
	f := seedSummary(t, db)

	admin := models.Principal{ID: f.admin.ID, Role: models.RoleAdmin}
	resp, err := BuildSummary(db, admin, SummaryFilters{})
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}

	if resp.Totals.Income != 0 || resp.Totals.Expenses != 0 || resp.Totals.Balance != 0 {
		t.Errorf("empty set totals = %+v, want all zero", resp.Totals)
	}
	if len(resp.Summary.ByType) != 0 || len(resp.Summary.Monthly) != 0 {
		t.Errorf("empty set produced summary rows: %+v", resp.Summary)
	}
}

func TestBuildSummary_MonthlySorted(t *testing.T) {
	db := newTestDB(t)
	f := seedSummary(t, db)

	seedTx(t, db, f, f.admin, models.TypeIncome, 10, models.StatusApproved, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	seedTx(t, db, f, f.admin, models.TypeIncome, 20, models.StatusApproved, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	seedTx(t, db, f, f.admin, models.TypeIncome, 30, models.StatusApproved, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	seedTx(t, db, f, f.admin, models.TypeIncome, 40, models.StatusApproved, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))

	admin := models.Principal{ID: f.admin.ID, Role: models.RoleAdmin}
	resp, err := BuildSummary(db, admin, SummaryFilters{})
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}

	monthly := resp.Summary.Monthly
	if len(monthly) != 3 {
		t.Fatalf("got %d monthly buckets, want 3", len(monthly))
	}
	for i := 1; i < len(monthly); i++ {
		prev, cur := monthly[i-1], monthly[i]
		if cur.Year < prev.Year || (cur.Year == prev.Year && cur.Month < prev.Month) {
			t.Errorf("monthly not sorted: %+v before %+v", prev, cur)
		}
	}
	// Same-month amounts fold into one bucket.
	for _, m := range monthly {
		if m.Year == 2025 && m.Month == 1 && m.Total != 70 {
			t.Errorf("2025-01 total = %v, want 70", m.Total)
		}
	}
}

func TestBuildSummary_StatusCountsScopedForUser(t *testing.T) {
	db := newTestDB(t)
	f := seedSummary(t, db)

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	seedTx(t, db, f, f.user, models.TypeExpense, 10, models.StatusPending, now)
	seedTx(t, db, f, f.user, models.TypeExpense, 10, models.StatusApproved, now)
	seedTx(t, db, f, f.admin, models.TypeExpense, 10, models.StatusPending, now)
	seedTx(t, db, f, f.admin, models.TypeExpense, 10, models.StatusRejected, now)

	user := models.Principal{ID: f.user.ID, Role: models.RoleUser}
	resp, err := BuildSummary(db, user, SummaryFilters{})
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}

	var total int64
	for _, sc := range resp.Summary.ByStatus {
		total += sc.Count
	}
	if total != 2 {
		t.Errorf("user status counts cover %d transactions, want 2 self-created", total)
	}

	// Admin status counts are unrestricted.
	admin := models.Principal{ID: f.admin.ID, Role: models.RoleAdmin}
	resp, err = BuildSummary(db, admin, SummaryFilters{})
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	total = 0
	for _, sc := range resp.Summary.ByStatus {
		total += sc.Count
	}
	if total != 4 {
		t.Errorf("admin status counts cover %d transactions, want 4", total)
	}
}

func TestDeriveTotals(t *testing.T) {
	tests := []struct {
		name   string
		byType []TypeSummary
		want   Totals
	}{
		{
			name: "empty",
			want: Totals{},
		},
		{
			name: "mixed",
			byType: []TypeSummary{
				{Type: models.TypeExpense, Total: 120},
				{Type: models.TypePayment, Total: 80},
				{Type: models.TypeIncome, Total: 40},
			},
			want: Totals{Income: 120, Expenses: 120, Balance: 0},
		},
		{
			name: "expense only",
			byType: []TypeSummary{
				{Type: models.TypeExpense, Total: 55},
			},
			want: Totals{Expenses: 55, Balance: -55},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTotals(tt.byType); got != tt.want {
				t.Errorf("DeriveTotals() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
