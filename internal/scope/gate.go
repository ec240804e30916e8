package scope

import (
	"projectfin-backend/internal/apperr"
	"projectfin-backend/internal/models"
)

// The gate checks assume association slices (Managers, Team) are preloaded
// on the resource. Callers must load the resource first so that a missing id
// surfaces as NotFound before any Forbidden decision.

func containsUser(users []models.User, id uint) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func CanReadCompany(p models.Principal, company *models.Company) error {
	if p.IsAdmin() || company.CreatedByID == p.ID || containsUser(company.Managers, p.ID) {
		return nil
	}
	return apperr.Forbidden("not authorized to access this company")
}

func CanMutateCompany(p models.Principal, company *models.Company) error {
	if p.IsAdmin() || company.CreatedByID == p.ID || containsUser(company.Managers, p.ID) {
		return nil
	}
	return apperr.Forbidden("not authorized to update this company")
}

// CanReadProject also honors team membership, which list scoping does not.
func CanReadProject(p models.Principal, project *models.Project) error {
	if p.IsAdmin() || project.CreatedByID == p.ID ||
		containsUser(project.Managers, p.ID) || containsUser(project.Team, p.ID) {
		return nil
	}
	return apperr.Forbidden("not authorized to access this project")
}

func CanMutateProject(p models.Principal, project *models.Project) error {
	if p.IsAdmin() || project.CreatedByID == p.ID || containsUser(project.Managers, p.ID) {
		return nil
	}
	return apperr.Forbidden("not authorized to update this project")
}

// CanCreateProject checks mutate rights against the parent company.
func CanCreateProject(p models.Principal, company *models.Company) error {
	if p.IsAdmin() || company.CreatedByID == p.ID || containsUser(company.Managers, p.ID) {
		return nil
	}
	return apperr.Forbidden("not authorized to create projects for this company")
}

// CanReadTransaction gives managers full instance-read access even though
// their list scope is narrower. Intentional asymmetry.
func CanReadTransaction(p models.Principal, tx *models.Transaction) error {
	if p.Role != models.RoleUser || tx.CreatedByID == p.ID {
		return nil
	}
	return apperr.Forbidden("not authorized to access this transaction")
}

func CanMutateTransaction(p models.Principal, tx *models.Transaction) error {
	if p.Role == models.RoleUser && tx.CreatedByID != p.ID {
		return apperr.Forbidden("not authorized to update this transaction")
	}
	if (tx.Status == models.StatusApproved || tx.Status == models.StatusRejected) && !p.IsAdmin() {
		return apperr.Forbidden("cannot update transaction that has been approved or rejected")
	}
	return nil
}
