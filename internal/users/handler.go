package users

import (
	"fmt"
	"strings"
	"time"

	"projectfin-backend/internal/apperr"
	"projectfin-backend/internal/auth"
	"projectfin-backend/internal/database"
	"projectfin-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type UserResponse struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

type CreateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type UpdateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validRole(r models.Role) bool {
	switch r {
	case models.RoleAdmin, models.RoleManager, models.RoleUser:
		return true
	}
	return false
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params(name), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

// GET /api/users (admin)
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var list []models.User
		if err := database.DB.Order("id").Find(&list).Error; err != nil {
			return apperr.Internal("could not list users", err)
		}

		resp := make([]UserResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toUserResponse(&list[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/users/:id (admin or self)
func GetUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			return apperr.NotFound("User not found")
		}
		if !p.IsAdmin() && user.ID != p.ID {
			return apperr.Forbidden("not authorized to access this user")
		}

		return c.JSON(toUserResponse(&user))
	}
}

// POST /api/users (admin)
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return apperr.Validation("name, email and password are required")
		}
		if body.Role == "" {
			body.Role = models.RoleUser
		}
		if !validRole(body.Role) {
			return apperr.Validation("role must be one of admin, manager, user")
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return apperr.Validation("email is already in use")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperr.Internal("could not hash password", err)
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         body.Role,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return apperr.Internal("could not create user", err)
		}

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(&user))
	}
}

// PUT /api/users/:id (admin)
func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			return apperr.NotFound("User not found")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != "" {
			user.Name = body.Name
		}
		if body.Email != "" {
			user.Email = strings.TrimSpace(strings.ToLower(body.Email))
		}
		if body.Role != "" {
			if !validRole(body.Role) {
				return apperr.Validation("role must be one of admin, manager, user")
			}
			user.Role = body.Role
		}
		if body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				return apperr.Internal("could not hash password", err)
			}
			user.PasswordHash = string(hash)
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return apperr.Internal("could not update user", err)
		}

		return c.JSON(toUserResponse(&user))
	}
}

// DELETE /api/users/:id (admin)
func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}
		if id == p.ID {
			return apperr.Validation("cannot delete your own account")
		}

		var user models.User
		if err := database.DB.First(&user, id).Error; err != nil {
			return apperr.NotFound("User not found")
		}

		if err := database.DB.Delete(&user).Error; err != nil {
			return apperr.Internal("could not delete user", err)
		}

		return c.JSON(fiber.Map{"message": "User removed"})
	}
}

// PUT /api/users/profile/update (self)
func UpdateProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.CurrentPrincipal(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, p.ID).Error; err != nil {
			return apperr.NotFound("User not found")
		}

		var body UpdateProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != "" {
			user.Name = body.Name
		}
		if body.Email != "" {
			user.Email = strings.TrimSpace(strings.ToLower(body.Email))
		}
		if body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				return apperr.Internal("could not hash password", err)
			}
			user.PasswordHash = string(hash)
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return apperr.Internal("could not update profile", err)
		}

		return c.JSON(toUserResponse(&user))
	}
}
