package scope

import (
	"testing"

	"projectfin-backend/internal/apperr"
	"projectfin-backend/internal/models"
)

var (
	gateAdmin   = models.Principal{ID: 1, Role: models.RoleAdmin}
	gateManager = models.Principal{ID: 2, Role: models.RoleManager}
	gateUser    = models.Principal{ID: 3, Role: models.RoleUser}
)

func TestCanReadCompany(t *testing.T) {
	company := &models.Company{
		ID:          10,
		CreatedByID: 3,
		Managers:    []models.User{{ID: 2}},
	}

	tests := []struct {
		name      string
		principal models.Principal
		wantDeny  bool
	}{
		{name: "admin", principal: gateAdmin},
		{name: "creator", principal: gateUser},
		{name: "manager", principal: gateManager},
		{name: "stranger", principal: models.Principal{ID: 99, Role: models.RoleUser}, wantDeny: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanReadCompany(tt.principal, company)
			if tt.wantDeny {
				if apperr.KindOf(err) != apperr.KindForbidden {
					t.Fatalf("expected forbidden, got %v", err)
				}
				if err.Error() != "not authorized to access this company" {
					t.Errorf("deny reason = %q", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
		})
	}
}

func TestCanReadProject_TeamMember(t *testing.T) {
	project := &models.Project{
		ID:          20,
		CreatedByID: 1,
		Team:        []models.User{{ID: 3}},
	}

	// Team membership grants instance reads but not mutation.
	if err := CanReadProject(gateUser, project); err != nil {
		t.Errorf("team member should read the project: %v", err)
	}
	err := CanMutateProject(gateUser, project)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("team member must not mutate the project, got %v", err)
	}
}

func TestCanReadTransaction_ManagerAsymmetry(t *testing.T) {
	// Managers read any transaction instance even when their list scope
	// would exclude it.
	tx := &models.Transaction{ID: 30, CreatedByID: 99}

	if err := CanReadTransaction(gateManager, tx); err != nil {
		t.Errorf("manager should read any transaction instance: %v", err)
	}
	if err := CanReadTransaction(gateUser, tx); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("user must not read a foreign transaction, got %v", err)
	}
	own := &models.Transaction{ID: 31, CreatedByID: gateUser.ID}
	if err := CanReadTransaction(gateUser, own); err != nil {
		t.Errorf("user should read an own transaction: %v", err)
	}
}

func TestCanMutateTransaction(t *testing.T) {
	tests := []struct {
		name       string
		principal  models.Principal
		tx         models.Transaction
		wantReason string
	}{
		{
			name:      "creator edits pending",
			principal: gateUser,
			tx:        models.Transaction{CreatedByID: gateUser.ID, Status: models.StatusPending},
		},
		{
			name:       "user edits foreign",
			principal:  gateUser,
			tx:         models.Transaction{CreatedByID: 99, Status: models.StatusPending},
			wantReason: "not authorized to update this transaction",
		},
		{
			name:       "creator edits approved",
			principal:  gateUser,
			tx:         models.Transaction{CreatedByID: gateUser.ID, Status: models.StatusApproved},
			wantReason: "cannot update transaction that has been approved or rejected",
		},
		{
			name:       "manager edits rejected",
			principal:  gateManager,
			tx:         models.Transaction{CreatedByID: 99, Status: models.StatusRejected},
			wantReason: "cannot update transaction that has been approved or rejected",
		},
		{
			name:      "admin edits approved",
			principal: gateAdmin,
			tx:        models.Transaction{CreatedByID: 99, Status: models.StatusApproved},
		},
		{
			name:      "manager edits foreign pending",
			principal: gateManager,
			tx:        models.Transaction{CreatedByID: 99, Status: models.StatusPending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanMutateTransaction(tt.principal, &tt.tx)
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected deny, got allow")
			}
			if err.Error() != tt.wantReason {
				t.Errorf("deny reason = %q, want %q", err.Error(), tt.wantReason)
			}
		})
	}
}
