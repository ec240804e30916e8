package project

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

type EntityRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProjectRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Company     uint                 `json:"company"`
	StartDate   string               `json:"startDate"`
	EndDate     string               `json:"endDate"`
	Status      models.ProjectStatus `json:"status"`
	Budget      float64              `json:"budget"`
	Managers    []uint               `json:"managers"`
	Team        []uint               `json:"team"`
}

type ProjectResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Company     EntityRef            `json:"company"`
	StartDate   time.Time            `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
	Status      models.ProjectStatus `json:"status"`
	Budget      float64              `json:"budget"`
	CreatedBy   UserRef              `json:"created_by"`
	Managers    []UserRef            `json:"managers"`
	Team        []UserRef            `json:"team"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func validStatus(s models.ProjectStatus) bool {
	switch s {
	case models.ProjectPlanning, models.ProjectInProgress, models.ProjectOnHold,
		models.ProjectCompleted, models.ProjectCancelled:
		return true
	}
	return false
}

func toUserRefs(users []models.User) []UserRef {
	refs := make([]UserRef, 0, len(users))
	for _, u := range users {
		refs = append(refs, UserRef{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return refs
}

func toProjectResponse(project *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Company:     EntityRef{ID: project.CompanyID, Name: project.Company.Name},
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		Status:      project.Status,
		Budget:      project.Budget,
		CreatedBy:   UserRef{ID: project.CreatedBy.ID, Name: project.CreatedBy.Name, Email: project.CreatedBy.Email},
		Managers:    toUserRefs(project.Managers),
		Team:        toUserRefs(project.Team),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params(name), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

func loadProject(id uint) (*models.Project, error) {
	var project models.Project
	err := database.DB.
		Preload("Company").Preload("CreatedBy").Preload("Managers").Preload("Team").
		First(&project, id).Error
	if err != nil {
		return nil, apperr.NotFound("Project not found")
	}
	return &project, nil
}

func loadUsers(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := database.DB.Find(&users, ids).Error; err != nil {
		return nil, apperr.Internal("could not load users", err)
	}
	if len(users) != len(ids) {
		return nil, apperr.Validation("one or more user ids do not exist")
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

// GET /api/projects?company=1&status=planning
func ListProjectsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		q := database.DB.Model(&models.Project{}).
			Preload("Company").Preload("CreatedBy").Preload("Managers").Preload("Team").
			Scopes(scope.ForProjects(database.DB, p))

		if v := c.Query("company"); v != "" {
			var companyID uint
			if _, err := fmt.Sscan(v, &companyID); err == nil && companyID > 0 {
				q = q.Where("projects.company_id = ?", companyID)
			}
		}
		if v := c.Query("status"); v != "" {
			q = q.Where("projects.status = ?", v)
		}

		var projects []models.Project
		if err := q.Find(&projects).Error; err != nil {
			return apperr.Internal("could not list projects", err)
		}

		resp := make([]ProjectResponse, 0, len(projects))
		for i := range projects {
			resp = append(resp, toProjectResponse(&projects[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/projects/:id
func GetProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		project, err := loadProject(id)
		if err != nil {
			return err
		}
		if err := scope.CanReadProject(p, project); err != nil {
			return err
		}

		return c.JSON(toProjectResponse(project))
	}
}

// POST /api/projects (admin, manager)
func CreateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		var body ProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name == "" {
			return apperr.Validation("project name is required")
		}
		if body.Description == "" {
			return apperr.Validation("project description is required")
		}
		if body.StartDate == "" {
			return apperr.Validation("startDate is required")
		}
		startDate, err := time.Parse("2006-01-02", body.StartDate)
		if err != nil {
			return apperr.Validation("startDate must be YYYY-MM-DD")
		}
		var endDate *time.Time
		if body.EndDate != "" {
			d, err := time.Parse("2006-01-02", body.EndDate)
			if err != nil {
				return apperr.Validation("endDate must be YYYY-MM-DD")
			}
			endDate = &d
		}
		status := body.Status
		if status == "" {
			status = models.ProjectPlanning
		}
		if !validStatus(status) {
			return apperr.Validation("invalid project status")
		}

		// Company existence is checked before the permission gate, so a
		// missing company id reads as not-found rather than forbidden.
		var parent models.Company
		if err := database.DB.Preload("Managers").First(&parent, body.Company).Error; err != nil {
			return apperr.NotFound("Company not found")
		}
		if err := scope.CanCreateProject(p, &parent); err != nil {
			return err
		}

		managers, err := loadUsers(body.Managers)
		if err != nil {
			return err
		}
		team, err := loadUsers(body.Team)
		if err != nil {
			return err
		}

		project := models.Project{
			Name:        body.Name,
			Description: body.Description,
			CompanyID:   parent.ID,
			StartDate:   startDate,
			EndDate:     endDate,
			Status:      status,
			Budget:      body.Budget,
			Managers:    managers,
			Team:        team,
			CreatedByID: p.ID,
		}

		if err := database.DB.Create(&project).Error; err != nil {
			return apperr.Internal("could not create project", err)
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "project",
			EntityID:    project.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("created project %q", project.Name),
			After:       project,
		})

		created, err := loadProject(project.ID)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toProjectResponse(created))
	}
}

// PUT /api/projects/:id (admin, manager)
func UpdateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		project, err := loadProject(id)
		if err != nil {
			return err
		}
		if err := scope.CanMutateProject(p, project); err != nil {
			return err
		}

		var body ProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := *project

		// Replace-if-set merge: absent fields keep their stored values.
		if body.Name != "" {
			project.Name = body.Name
		}
		if body.Description != "" {
			project.Description = body.Description
		}
		if body.StartDate != "" {
			d, err := time.Parse("2006-01-02", body.StartDate)
			if err != nil {
				return apperr.Validation("startDate must be YYYY-MM-DD")
			}
			project.StartDate = d
		}
		if body.EndDate != "" {
			d, err := time.Parse("2006-01-02", body.EndDate)
			if err != nil {
				return apperr.Validation("endDate must be YYYY-MM-DD")
			}
			project.EndDate = &d
		}
		if body.Status != "" {
			if !validStatus(body.Status) {
				return apperr.Validation("invalid project status")
			}
			project.Status = body.Status
		}
		if body.Budget != 0 {
			project.Budget = body.Budget
		}

		if err := database.DB.Save(project).Error; err != nil {
			return apperr.Internal("could not update project", err)
		}

		if len(body.Managers) > 0 {
			managers, err := loadUsers(body.Managers)
			if err != nil {
				return err
			}
			if err := database.DB.Model(project).Association("Managers").Replace(managers); err != nil {
				return apperr.Internal("could not update project managers", err)
			}
		}
		if len(body.Team) > 0 {
			team, err := loadUsers(body.Team)
			if err != nil {
				return err
			}
			if err := database.DB.Model(project).Association("Team").Replace(team); err != nil {
				return apperr.Internal("could not update project team", err)
			}
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "project",
			EntityID:    project.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("updated project %q", project.Name),
			Before:      before,
			After:       project,
		})

		updated, err := loadProject(project.ID)
		if err != nil {
			return err
		}
		return c.JSON(toProjectResponse(updated))
	}
}

// DELETE /api/projects/:id (admin only at the route layer)
func DeleteProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		project, err := loadProject(id)
		if err != nil {
			return err
		}
		if err := scope.CanMutateProject(p, project); err != nil {
			return err
		}

		// No cascade: transactions under the project are left in place.
		if err := database.DB.Select("Managers", "Team").Delete(project).Error; err != nil {
			return apperr.Internal("could not delete project", err)
		}

		audit.Record(audit.LogOptions{
			UserID:      p.ID,
			UserName:    principalName(p),
			EntityType:  "project",
			EntityID:    project.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("deleted project %q", project.Name),
			Before:      project,
		})

		return c.JSON(fiber.Map{"message": "Project removed"})
	}
}
