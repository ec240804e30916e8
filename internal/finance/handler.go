package finance

import (
	"fmt"
	"time"

	"projectfin-backend/internal/apperr"
	"projectfin-backend/internal/audit"
	"projectfin-backend/internal/auth"
	"projectfin-backend/internal/database"
	"projectfin-backend/internal/models"
	"projectfin-backend/internal/scope"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type EntityRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type TransactionResponse struct {
	ID          uint                        `json:"id"`
	Type        models.TransactionType      `json:"type"`
	Amount      float64                     `json:"amount"`
	Description string                      `json:"description"`
	Date        time.Time                   `json:"date"`
	Category    models.TransactionCategory  `json:"category"`
	Project     EntityRef                   `json:"project"`
	Company     EntityRef                   `json:"company"`
	Status      models.TransactionStatus    `json:"status"`
	CreatedBy   UserRef                     `json:"created_by"`
	ApprovedBy  *UserRef                    `json:"approved_by"`
	Notes       string                      `json:"notes"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

type CreateTransactionRequest struct {
	Type        models.TransactionType      `json:"type"`
	Amount      float64                     `json:"amount"`
	Description string                      `json:"description"`
	Date        string                      `json:"date"`
	Category    models.TransactionCategory  `json:"category"`
	Project     uint                        `json:"project"`
	Notes       string                      `json:"notes"`
}

type UpdateTransactionRequest struct {
	Type        models.TransactionType      `json:"type"`
	Amount      float64                     `json:"amount"`
	Description string                      `json:"description"`
	Date        string                      `json:"date"`
	Category    models.TransactionCategory  `json:"category"`
	Notes       string                      `json:"notes"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func toTransactionResponse(tx *models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          tx.ID,
		Type:        tx.Type,
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.Date,
		Category:    tx.Category,
		Project:     EntityRef{ID: tx.ProjectID, Name: tx.Project.Name},
		Company:     EntityRef{ID: tx.CompanyID, Name: tx.Company.Name},
		Status:      tx.Status,
		CreatedBy:   UserRef{ID: tx.CreatedBy.ID, Name: tx.CreatedBy.Name, Email: tx.CreatedBy.Email},
		Notes:       tx.Notes,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
	if tx.ApprovedBy != nil {
		resp.ApprovedBy = &UserRef{ID: tx.ApprovedBy.ID, Name: tx.ApprovedBy.Name, Email: tx.ApprovedBy.Email}
	}
	return resp
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params(name), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseFilters(c *fiber.Ctx) (scope.TransactionFilters, error) {
	var f scope.TransactionFilters

	if v := c.Query("project"); v != "" {
		fmt.Sscan(v, &f.Project)
	}
	if v := c.Query("company"); v != "" {
		fmt.Sscan(v, &f.Company)
	}
	f.Type = models.TransactionType(c.Query("type"))
	f.Status = models.TransactionStatus(c.Query("status"))
	f.Category = models.TransactionCategory(c.Query("category"))

	if v := c.Query("startDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "startDate must be YYYY-MM-DD")
		}
		f.StartDate = &t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "endDate must be YYYY-MM-DD")
		}
		f.EndDate = &t
	}
	if v := c.Query("minAmount"); v != "" {
		fmt.Sscan(v, &f.MinAmount)
	}
	if v := c.Query("maxAmount"); v != "" {
		fmt.Sscan(v, &f.MaxAmount)
	}

	return f, nil
}

func preloadTransaction(q *gorm.DB) *gorm.DB {
	return q.Preload("Project").Preload("Company").Preload("CreatedBy").Preload("ApprovedBy")
}

func loadTransaction(id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := preloadTransaction(database.DB).First(&tx, id).Error; err != nil {
		return nil, apperr.NotFound("Transaction not found")
	}
	return &tx, nil
}

func principalName(p models.Principal) string {
	var user models.User
	if err := database.DB.First(&user, p.ID).Error; err != nil {
		return ""
	}
	return user.Name
}

// GET /api/finances
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		filters, err := parseFilters(c)
		if err != nil {
			return err
		}

		var txs []models.Transaction
		q := preloadTransaction(database.DB.Model(&models.Transaction{})).
			Scopes(scope.ForTransactions(database.DB, p), filters.Apply()).
			Order("date DESC")
		if err := q.Find(&txs).Error; err != nil {
			return apperr.Internal("could not list transactions", err)
		}

		resp := make([]TransactionResponse, 0, len(txs))
		for i := range txs {
			resp = append(resp, toTransactionResponse(&txs[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/finances/:id
func GetTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		tx, err := loadTransaction(id)
		if err != nil {
			return err
		}
		if err := scope.CanReadTransaction(p, tx); err != nil {
			return err
		}

		return c.JSON(toTransactionResponse(tx))
	}
}

// POST /api/finances
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if !models.ValidTransactionType(body.Type) {
			return apperr.Validation("type must be one of expense, payment, income")
		}
		if !models.ValidTransactionCategory(body.Category) {
			return apperr.Validation("invalid category")
		}
		if body.Amount < 0 {
			return apperr.Validation("amount must not be negative")
		}
		if body.Description == "" {
			return apperr.Validation("description is required")
		}

		var project models.Project
		if err := database.DB.First(&project, body.Project).Error; err != nil {
			return apperr.NotFound("Project not found")
		}

		date := time.Now()
		if body.Date != "" {
			d, err := parseDate(body.Date)
			if err != nil {
				return apperr.Validation("date must be YYYY-MM-DD")
			}
			date = d
		}

		status, approvedBy := InitialStatus(p)

		tx := models.Transaction{
			Type:         body.Type,
			Amount:       body.Amount,
			Description:  body.Description,
			Date:         date,
			Category:     body.Category,
			ProjectID:    project.ID,
			CompanyID:    project.CompanyID, // always copied from the project
			Status:       status,
			ApprovedByID: approvedBy,
			CreatedByID:  p.ID,
			Notes:        body.Notes,
		}

		if err := database.DB.Create(&tx).Error; err != nil {
			return apperr.Internal("could not create transaction", err)
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("created %s transaction of %.2f", tx.Type, tx.Amount),
			After:       tx,
		})

		created, err := loadTransaction(tx.ID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(created))
	}
}

// PUT /api/finances/:id
func UpdateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		tx, err := loadTransaction(id)
		if err != nil {
			return err
		}
		if err := scope.CanMutateTransaction(p, tx); err != nil {
			return err
		}

		var body UpdateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Type != "" && !models.ValidTransactionType(body.Type) {
			return apperr.Validation("type must be one of expense, payment, income")
		}
		if body.Category != "" && !models.ValidTransactionCategory(body.Category) {
			return apperr.Validation("invalid category")
		}

		patch := TransactionPatch{
			Type:        body.Type,
			Amount:      body.Amount,
			Description: body.Description,
			Category:    body.Category,
			Notes:       body.Notes,
		}
		if body.Date != "" {
			d, err := parseDate(body.Date)
			if err != nil {
				return apperr.Validation("date must be YYYY-MM-DD")
			}
			patch.Date = d
		}

		before := *tx
		ApplyEdit(tx, p, patch)

		if err := database.DB.Save(tx).Error; err != nil {
			return apperr.Internal("could not update transaction", err)
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionUpdate,
			Description: "updated transaction",
			Before:      before,
			After:       tx,
		})

		updated, err := loadTransaction(tx.ID)
		if err != nil {
			return err
		}
		return c.JSON(toTransactionResponse(updated))
	}
}

// DELETE /api/finances/:id (admin only at the route layer)
func DeleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		tx, err := loadTransaction(id)
		if err != nil {
			return err
		}

		if err := database.DB.Delete(&models.Transaction{}, tx.ID).Error; err != nil {
			return apperr.Internal("could not delete transaction", err)
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionDelete,
			Description: "deleted transaction",
			Before:      tx,
		})

		return c.JSON(fiber.Map{"message": "Transaction removed"})
	}
}

// PUT /api/finances/:id/approve (admin, manager)
func ApproveTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		tx, err := loadTransaction(id)
		if err != nil {
			return err
		}
		if err := Approve(tx, p); err != nil {
			return err
		}

		if err := database.DB.Save(tx).Error; err != nil {
			return apperr.Internal("could not approve transaction", err)
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionApprove,
			Description: "approved transaction",
			After:       tx,
		})

		updated, err := loadTransaction(tx.ID)
		if err != nil {
			return err
		}
		return c.JSON(toTransactionResponse(updated))
	}
}

// PUT /api/finances/:id/reject (admin, manager)
func RejectTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		var body RejectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		tx, err := loadTransaction(id)
		if err != nil {
			return err
		}
		if err := Reject(tx, p, body.Reason); err != nil {
			return err
		}

		if err := database.DB.Save(tx).Error; err != nil {
			return apperr.Internal("could not reject transaction", err)
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "transaction",
			EntityID:    tx.ID,
			Action:      models.AuditActionReject,
			Description: "rejected transaction",
			After:       tx,
		})

		updated, err := loadTransaction(tx.ID)
		if err != nil {
			return err
		}
		return c.JSON(toTransactionResponse(updated))
	}
}

// GET /api/finances/summary
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		filters, err := parseFilters(c)
		if err != nil {
			return err
		}

		resp, err := BuildSummary(database.DB, p, SummaryFilters{
			Company:   filters.Company,
			Project:   filters.Project,
			StartDate: filters.StartDate,
			EndDate:   filters.EndDate,
		})
		if err != nil {
			return err
		}

		return c.JSON(resp)
	}
}

// GET /api/finances/export?format=json|csv|xlsx|pdf
func ExportTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		filters, err := parseFilters(c)
		if err != nil {
			return err
		}

		var txs []models.Transaction
		q := preloadTransaction(database.DB.Model(&models.Transaction{})).
			Scopes(scope.ForTransactions(database.DB, p), filters.Apply()).
			Order("date DESC")
		if err := q.Find(&txs).Error; err != nil {
			return apperr.Internal("could not export transactions", err)
		}

		records := BuildExportRecords(txs)

		switch c.Query("format", "json") {
		case "json":
			return c.JSON(records)
		case "csv":
			c.Set(fiber.HeaderContentType, "text/csv")
			c.Set(fiber.HeaderContentDisposition, "attachment; filename=transactions.csv")
			return c.SendString(WriteCSV(records))
		case "xlsx":
			buf, err := WriteXLSX(records)
			if err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			c.Set(fiber.HeaderContentDisposition, "attachment; filename=transactions.xlsx")
			return c.Send(buf.Bytes())
		case "pdf":
			buf, err := WritePDF(records)
			if err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, "application/pdf")
			c.Set(fiber.HeaderContentDisposition, "attachment; filename=transactions.pdf")
			return c.Send(buf.Bytes())
		default:
			return apperr.Validation("format must be one of json, csv, xlsx, pdf")
		}
	}
}
