package finance

import (
	"testing"
	"time"

	"projectfin-backend/internal/apperr"
	"projectfin-backend/internal/models"
)

var (
	lcAdmin = models.Principal{ID: 1, Role: models.RoleAdmin}
	lcUser  = models.Principal{ID: 3, Role: models.RoleUser}
)

func TestInitialStatus(t *testing.T) {
	status, approvedBy := InitialStatus(lcAdmin)
	if status != models.StatusApproved {
		t.Errorf("admin creation status = %s, want approved", status)
	}
	if approvedBy == nil || *approvedBy != lcAdmin.ID {
		t.Errorf("admin creation approvedBy = %v, want %d", approvedBy, lcAdmin.ID)
	}

	for _, role := range []models.Role{models.RoleManager, models.RoleUser} {
		status, approvedBy := InitialStatus(models.Principal{ID: 9, Role: role})
		if status != models.StatusPending {
			t.Errorf("%s creation status = %s, want pending", role, status)
		}
		if approvedBy != nil {
			t.Errorf("%s creation approvedBy = %v, want nil", role, approvedBy)
		}
	}
}

func TestApprove(t *testing.T) {
	tx := models.Transaction{Status: models.StatusPending}
	if err := Approve(&tx, lcAdmin); err != nil {
		t.Fatalf("approve pending: %v", err)
	}
	if tx.Status != models.StatusApproved {
		t.Errorf("status = %s, want approved", tx.Status)
	}
	if tx.ApprovedByID == nil || *tx.ApprovedByID != lcAdmin.ID {
		t.Errorf("approvedBy = %v, want %d", tx.ApprovedByID, lcAdmin.ID)
	}

	// Second approve must fail with the current status in the message and
	// must not mutate the transaction.
	err := Approve(&tx, models.Principal{ID: 42, Role: models.RoleManager})
	if apperr.KindOf(err) != apperr.KindInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if err.Error() != "transaction is already approved" {
		t.Errorf("message = %q, want %q", err.Error(), "transaction is already approved")
	}
	if tx.Status != models.StatusApproved || *tx.ApprovedByID != lcAdmin.ID {
		t.Error("failed approve mutated the transaction")
	}
}

func TestReject(t *testing.T) {
	tests := []struct {
		name      string
		notes     string
		reason    string
		wantNotes string
	}{
		{
			name:      "without prior notes",
			reason:    "missing receipt",
			wantNotes: "Rejection reason: missing receipt",
		},
		{
			name:      "appends to prior notes",
			notes:     "Q3 invoice",
			reason:    "duplicate",
			wantNotes: "Q3 invoice\nRejection reason: duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := models.Transaction{Status: models.StatusPending, Notes: tt.notes}
			if err := Reject(&tx, lcAdmin, tt.reason); err != nil {
				t.Fatalf("reject pending: %v", err)
			}
			if tx.Status != models.StatusRejected {
				t.Errorf("status = %s, want rejected", tx.Status)
			}
			if tx.ApprovedByID == nil || *tx.ApprovedByID != lcAdmin.ID {
				t.Errorf("approvedBy = %v, want %d", tx.ApprovedByID, lcAdmin.ID)
			}
			if tx.Notes != tt.wantNotes {
				t.Errorf("notes = %q, want %q", tx.Notes, tt.wantNotes)
			}
		})
	}
}

func TestReject_NonPendingFails(t *testing.T) {
	for _, status := range []models.TransactionStatus{
		models.StatusApproved, models.StatusRejected, models.StatusCompleted,
	} {
		tx := models.Transaction{Status: status, Notes: "keep"}
		err := Reject(&tx, lcAdmin, "why not")
		if apperr.KindOf(err) != apperr.KindInvalidTransition {
			t.Errorf("reject %s: expected invalid transition, got %v", status, err)
		}
		if want := "transaction is already " + string(status); err.Error() != want {
			t.Errorf("reject %s: message = %q, want %q", status, err.Error(), want)
		}
		if tx.Status != status || tx.Notes != "keep" || tx.ApprovedByID != nil {
			t.Errorf("reject %s mutated the transaction", status)
		}
	}
}

func TestApplyEdit_NonAdminForcesReview(t *testing.T) {
	approver := uint(7)

	for _, status := range []models.TransactionStatus{
		models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusCompleted,
	} {
		tx := models.Transaction{
			Status:       status,
			ApprovedByID: &approver,
			Amount:       100,
		}
		ApplyEdit(&tx, lcUser, TransactionPatch{Amount: 250})

		if tx.Status != models.StatusPending {
			t.Errorf("prior status %s: status after edit = %s, want pending", status, tx.Status)
		}
		if tx.ApprovedByID != nil {
			t.Errorf("prior status %s: approvedBy not cleared", status)
		}
		if tx.Amount != 250 {
			t.Errorf("prior status %s: amount = %v, want 250", status, tx.Amount)
		}
	}
}

func TestApplyEdit_AdminKeepsStatus(t *testing.T) {
	approver := uint(7)
	tx := models.Transaction{
		Status:       models.StatusApproved,
		ApprovedByID: &approver,
	}
	ApplyEdit(&tx, lcAdmin, TransactionPatch{Description: "adjusted"})

	if tx.Status != models.StatusApproved {
		t.Errorf("admin edit changed status to %s", tx.Status)
	}
	if tx.ApprovedByID == nil || *tx.ApprovedByID != approver {
		t.Error("admin edit cleared approvedBy")
	}
	if tx.Description != "adjusted" {
		t.Errorf("description = %q", tx.Description)
	}
}

func TestApplyEdit_ZeroValuesLeaveFields(t *testing.T) {
	// The merge is replace-if-set: a zero value cannot clear a field.
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	tx := models.Transaction{
		Type:        models.TypeExpense,
		Amount:      100,
		Description: "original",
		Date:        date,
		Category:    models.CategoryTravel,
		Notes:       "note",
		Status:      models.StatusPending,
	}

	ApplyEdit(&tx, lcUser, TransactionPatch{})

	if tx.Type != models.TypeExpense || tx.Amount != 100 ||
		tx.Description != "original" || !tx.Date.Equal(date) ||
		tx.Category != models.CategoryTravel || tx.Notes != "note" {
		t.Errorf("empty patch changed stored fields: %+v", tx)
	}
}
