// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the admin user (admin@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	accountdomain "user-management-api/internal/account/domain"
	accountrepo "user-management-api/internal/account/repository"
	"user-management-api/internal/config"
	"user-management-api/internal/db"
	"user-management-api/internal/security"
)

const (
	adminEmail  = "admin@example.com"
	userEmail   = "user@example.com"
	devPassword = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	accounts := accountrepo.NewPostgresRepository(pool)

	existing, err := accounts.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (admin@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	seedAccounts := []*accountdomain.Account{
		{
			ID:           uuid.New().String(),
			Email:        adminEmail,
			FirstName:    "Admin",
			LastName:     "User",
			PasswordHash: passwordHash,
			Role:         accountdomain.RoleAdmin,
			Status:       accountdomain.StatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           uuid.New().String(),
			Email:        userEmail,
			FirstName:    "Regular",
			LastName:     "User",
			PasswordHash: passwordHash,
			Role:         accountdomain.RoleUser,
			Status:       accountdomain.StatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	for _, a := range seedAccounts {
		if err := accounts.Create(ctx, a); err != nil {
			log.Fatalf("create %s: %v", a.Email, err)
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Admin login: %s / %s\n", adminEmail, devPassword)
	fmt.Printf("User login: %s / %s\n", userEmail, devPassword)
}
