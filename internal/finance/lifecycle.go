// Package finance holds the transaction lifecycle, the financial summary
// aggregation and the export formatter, plus their HTTP handlers.
package finance

import (
	"fmt"
	"time"

	"projectfin-backend/internal/apperr"
	"projectfin-backend/internal/models"
)

// InitialStatus returns the status and approver a new transaction starts
// with: admins self-approve on creation, everyone else starts pending.
func InitialStatus(p models.Principal) (models.TransactionStatus, *uint) {
	if p.IsAdmin() {
		id := p.ID
		return models.StatusApproved, &id
	}
	return models.StatusPending, nil
}

// Approve moves a pending transaction to approved. Any other current status
// fails without mutating the transaction.
func Approve(tx *models.Transaction, p models.Principal) error {
	if tx.Status != models.StatusPending {
		return apperr.InvalidTransition("transaction is already %s", tx.Status)
	}

	id := p.ID
	tx.Status = models.StatusApproved
	tx.ApprovedByID = &id
	return nil
}

// Reject moves a pending transaction to rejected and appends the reason to
// the notes. Notes are an append-only audit trail, never overwritten.
func Reject(tx *models.Transaction, p models.Principal, reason string) error {
	if tx.Status != models.StatusPending {
		return apperr.InvalidTransition("transaction is already %s", tx.Status)
	}

	id := p.ID
	tx.Status = models.StatusRejected
	tx.ApprovedByID = &id
	if tx.Notes != "" {
		tx.Notes = fmt.Sprintf("%s\nRejection reason: %s", tx.Notes, reason)
	} else {
		tx.Notes = fmt.Sprintf("Rejection reason: %s", reason)
	}
	return nil
}

// TransactionPatch carries a partial update. Zero values leave the stored
// field unchanged, so an empty string or zero amount cannot clear a field.
type TransactionPatch struct {
	Type        models.TransactionType
	Amount      float64
	Description string
	Date        time.Time
	Category    models.TransactionCategory
	Notes       string
}

// ApplyEdit merges the patch into the transaction. Every non-admin edit
// forces re-review: status goes back to pending and the approver is cleared,
// regardless of the prior status. Admin edits never reset status.
func ApplyEdit(tx *models.Transaction, p models.Principal, patch TransactionPatch) {
	if patch.Type != "" {
		tx.Type = patch.Type
	}
	if patch.Amount != 0 {
		tx.Amount = patch.Amount
	}
	if patch.Description != "" {
		tx.Description = patch.Description
	}
	if !patch.Date.IsZero() {
		tx.Date = patch.Date
	}
	if patch.Category != "" {
		tx.Category = patch.Category
	}
	if patch.Notes != "" {
		tx.Notes = patch.Notes
	}

	if !p.IsAdmin() {
		tx.Status = models.StatusPending
		tx.ApprovedByID = nil
		tx.ApprovedBy = nil
	}
}
