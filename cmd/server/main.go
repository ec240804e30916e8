package main

import (
	"errors"
	"log"
	"strings"

	"projectfin-backend/internal/apperr"
	"projectfin-backend/internal/audit"
	"projectfin-backend/internal/auth"
	"projectfin-backend/internal/company"
	"projectfin-backend/internal/config"
	"projectfin-backend/internal/database"
	"projectfin-backend/internal/finance"
	"projectfin-backend/internal/models"
	"projectfin-backend/internal/project"
	"projectfin-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func httpStatus(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindValidation, apperr.KindInvalidTransition:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func main() {
	cfg := config.Load()
	database.Init(cfg)
	auth.SeedAdmin(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
			}
			var ae *apperr.Error
			if errors.As(err, &ae) {
				if ae.Kind == apperr.KindInternal {
					log.Println("internal error:", err)
				}
				return c.Status(httpStatus(ae.Kind)).JSON(fiber.Map{"message": ae.Message})
			}
			log.Println("unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Users
	userRoutes := protected.Group("/users")
	userRoutes.Put("/profile/update", users.UpdateProfileHandler())
	userRoutes.Get("/", auth.RequireRole(models.RoleAdmin), users.ListUsersHandler())
	userRoutes.Post("/", auth.RequireRole(models.RoleAdmin), users.CreateUserHandler())
	userRoutes.Get("/:id", users.GetUserHandler())
	userRoutes.Put("/:id", auth.RequireRole(models.RoleAdmin), users.UpdateUserHandler())
	userRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), users.DeleteUserHandler())

	// Companies
	companyRoutes := protected.Group("/companies")
	companyRoutes.Get("/", company.ListCompaniesHandler())
	companyRoutes.Post("/", auth.RequireRole(models.RoleAdmin, models.RoleManager), company.CreateCompanyHandler())
	companyRoutes.Get("/:id", company.GetCompanyHandler())
	companyRoutes.Put("/:id", auth.RequireRole(models.RoleAdmin, models.RoleManager), company.UpdateCompanyHandler())
	companyRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), company.DeleteCompanyHandler())

	// Projects
	projectRoutes := protected.Group("/projects")
	projectRoutes.Get("/", project.ListProjectsHandler())
	projectRoutes.Post("/", auth.RequireRole(models.RoleAdmin, models.RoleManager), project.CreateProjectHandler())
	projectRoutes.Get("/:id", project.GetProjectHandler())
	projectRoutes.Put("/:id", auth.RequireRole(models.RoleAdmin, models.RoleManager), project.UpdateProjectHandler())
	projectRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), project.DeleteProjectHandler())

	// Finances. Static paths before the :id route so "summary" does not
	// parse as a transaction id.
	financeRoutes := protected.Group("/finances")
	financeRoutes.Get("/summary", finance.SummaryHandler())
	financeRoutes.Get("/export", finance.ExportTransactionsHandler())
	financeRoutes.Get("/", finance.ListTransactionsHandler())
	financeRoutes.Post("/", finance.CreateTransactionHandler())
	financeRoutes.Get("/:id", finance.GetTransactionHandler())
	financeRoutes.Put("/:id", finance.UpdateTransactionHandler())
	financeRoutes.Delete("/:id", auth.RequireRole(models.RoleAdmin), finance.DeleteTransactionHandler())
	financeRoutes.Put("/:id/approve", auth.RequireRole(models.RoleAdmin, models.RoleManager), finance.ApproveTransactionHandler())
	financeRoutes.Put("/:id/reject", auth.RequireRole(models.RoleAdmin, models.RoleManager), finance.RejectTransactionHandler())

	// Audit logs
	protected.Get("/audit-logs", auth.RequireRole(models.RoleAdmin), audit.ListAuditLogsHandler())

	log.Println("server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
