package auth

import (
	"log"

	"projectfin-backend/internal/config"
	"projectfin-backend/internal/database"
	"projectfin-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the initial admin account when no admin exists yet.
// ADMIN_PASSWORD must be set for the seed to run.
func SeedAdmin(cfg *config.Config) {
	var count int64
	database.DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count)
	if count > 0 {
		return
	}

	if cfg.AdminPassword == "" {
		log.Println("[WARN] no admin user exists and ADMIN_PASSWORD is not set, skipping admin seed")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("admin seed: password hash failed: %v", err)
		return
	}

	admin := models.User{
		Name:         "Admin User",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("admin seed: create failed: %v", err)
		return
	}

	log.Println("admin user created:", admin.Email)
}
