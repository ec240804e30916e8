package company

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
)

type UserRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AddressPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type ContactPayload struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

type CompanyRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Logo        string         `json:"logo"`
	Address     AddressPayload `json:"address"`
	ContactInfo ContactPayload `json:"contactInfo"`
	Managers    []uint         `json:"managers"`
}

type ProjectSummary struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	StartDate   time.Time            `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
	Budget      float64              `json:"budget"`
}

type CompanyResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Logo        string           `json:"logo"`
	Address     AddressPayload   `json:"address"`
	ContactInfo ContactPayload   `json:"contactInfo"`
	CreatedBy   UserRef          `json:"created_by"`
	Managers    []UserRef        `json:"managers"`
	Projects    []ProjectSummary `json:"projects,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toUserRefs(users []models.User) []UserRef {
	refs := make([]UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, UserRef{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return refs
}

func toCompanyResponse(company *models.Company) CompanyResponse {
	return CompanyResponse{
		ID:          company.ID,
		Name:        company.Name,
		Description: company.Description,
		Logo:        company.Logo,
		Address: AddressPayload{
			Street:  company.Street,
			City:    company.City,
			State:   company.State,
			ZipCode: company.ZipCode,
			Country: company.Country,
		},
		ContactInfo: ContactPayload{
			Email:   company.ContactEmail,
			Phone:   company.ContactPhone,
			Website: company.Website,
		},
		CreatedBy: UserRef{ID: company.CreatedBy.ID, Name: company.CreatedBy.Name, Email: company.CreatedBy.Email},
		Managers:  toUserRefs(company.Managers),
		CreatedAt: company.CreatedAt,
		UpdatedAt: company.UpdatedAt,
	}
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params(name), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

func loadCompany(id uint) (*models.Company, error) {
	var company models.Company
	if err := database.DB.Preload("CreatedBy").Preload("Managers").First(&company, id).Error; err != nil {
		return nil, apperr.NotFound("Company not found")
	}
	return &company, nil
}

func loadManagers(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := database.DB.Find(&users, ids).Error; err != nil {
		return nil, apperr.Internal("could not load managers", err)
	}
	if len(users) != len(ids) {
		return nil, apperr.Validation("one or more manager ids do not exist")
	}
	return users, nil
}

func principalName(p models.Principal) string {
	var user models.User
	if err := database.DB.First(&user, p.ID).Error; err != nil {
		return ""
	}
	return user.Name
}

// GET /api/companies
func ListCompaniesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		var companies []models.Company
		q := database.DB.Model(&models.Company{}).
			Preload("CreatedBy").Preload("Managers").
			Scopes(scope.ForCompanies(database.DB, p))
		if err := q.Find(&companies).Error; err != nil {
			return apperr.Internal("could not list companies", err)
		}

		resp := make([]CompanyResponse, 0, len(companies))
		for i := range companies {
			resp = append(resp, toCompanyResponse(&companies[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/companies/:id
func GetCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		company, err := loadCompany(id)
		if err != nil {
			return err
		}
		if err := scope.CanReadCompany(p, company); err != nil {
			return err
		}

		var projects []models.Project
		if err := database.DB.Where("company_id = ?", company.ID).Find(&projects).Error; err != nil {
			return apperr.Internal("could not load company projects", err)
		}

		resp := toCompanyResponse(company)
		resp.Projects = make([]ProjectSummary, 0, len(projects))
		for _, pr := range projects {
			resp.Projects = append(resp.Projects, ProjectSummary{
				ID:          pr.ID,
				Name:        pr.Name,
				Description: pr.Description,
				Status:      pr.Status,
				StartDate:   pr.StartDate,
				EndDate:     pr.EndDate,
				Budget:      pr.Budget,
			})
		}

		return c.JSON(resp)
	}
}

// POST /api/companies (admin, manager)
func CreateCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		var body CompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name == "" {
			return apperr.Validation("company name is required")
		}

		managers, err := loadManagers(body.Managers)
		if err != nil {
			return err
		}

		company := models.Company{
			Name:         body.Name,
			Description:  body.Description,
			Logo:         body.Logo,
			Street:       body.Address.Street,
			City:         body.Address.City,
			State:        body.Address.State,
			ZipCode:      body.Address.ZipCode,
			Country:      body.Address.Country,
			ContactEmail: body.ContactInfo.Email,
			ContactPhone: body.ContactInfo.Phone,
			Website:      body.ContactInfo.Website,
			CreatedByID:  p.ID,
			Managers:     managers,
		}

		if err := database.DB.Create(&company).Error; err != nil {
			return apperr.Internal("could not create company", err)
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "company",
			EntityID:    company.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("created company %q", company.Name),
			After:       company,
		})

		created, err := loadCompany(company.ID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toCompanyResponse(created))
	}
}

// PUT /api/companies/:id (admin, manager)
func UpdateCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		company, err := loadCompany(id)
		if err != nil {
			return err
		}
		if err := scope.CanMutateCompany(p, company); err != nil {
			return err
		}

		var body CompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := *company

		// Replace-if-set merge: absent fields keep their stored values.
		if body.Name != "" {
			company.Name = body.Name
		}
		if body.Description != "" {
			company.Description = body.Description
		}
		if body.Logo != "" {
			company.Logo = body.Logo
		}
		if body.Address.Street != "" {
			company.Street = body.Address.Street
		}
		if body.Address.City != "" {
			company.City = body.Address.City
		}
		if body.Address.State != "" {
			company.State = body.Address.State
		}
		if body.Address.ZipCode != "" {
			company.ZipCode = body.Address.ZipCode
		}
		if body.Address.Country != "" {
			company.Country = body.Address.Country
		}
		if body.ContactInfo.Email != "" {
			company.ContactEmail = body.ContactInfo.Email
		}
		if body.ContactInfo.Phone != "" {
			company.ContactPhone = body.ContactInfo.Phone
		}
		if body.ContactInfo.Website != "" {
			company.Website = body.ContactInfo.Website
		}

		if err := database.DB.Save(company).Error; err != nil {
			return apperr.Internal("could not update company", err)
		}

		if len(body.Managers) > 0 {
			managers, err := loadManagers(body.Managers)
			if err != nil {
				return err
			}
			if err := database.DB.Model(company).Association("Managers").Replace(managers); err != nil {
				return apperr.Internal("could not update company managers", err)
			}
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "company",
			EntityID:    company.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("updated company %q", company.Name),
			Before:      before,
			After:       company,
		})

		updated, err := loadCompany(company.ID)
		if err != nil {
			return err
		}
		return c.JSON(toCompanyResponse(updated))
	}
}

// DELETE /api/companies/:id (admin only at the route layer)
func DeleteCompanyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		company, err := loadCompany(id)
		if err != nil {
			return err
		}
		if err := scope.CanMutateCompany(p, company); err != nil {
			return err
		}

		// No cascade: deleting a company leaves its projects in place.
		if err := database.DB.Select("Managers").Delete(company).Error; err != nil {
			return apperr.Internal("could not delete company", err)
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "company",
			EntityID:    company.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("deleted company %q", company.Name),
			Before:      company,
		})

		return c.JSON(fiber.Map{"message": "Company removed"})
	}
}
