// seed creates an admin account in the local dev database, or promotes an
// existing account to admin.
// Run: SEED_ADMIN_PASSWORD=... go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ErlanBelekov/user-accounts/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/user-accounts/internal/password"
	"github.com/ErlanBelekov/user-accounts/internal/usecase"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// seedConfig is the subset of the server config the seed needs, plus the
// admin account to provision. BCRYPT_COST matches the server so seeded
// hashes are as strong as registered ones.
type seedConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required" validate:"required"`
	BcryptCost    int    `env:"BCRYPT_COST" envDefault:"12" validate:"min=10,max=14"`
	AdminName     string `env:"SEED_ADMIN_NAME"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@test.local" validate:"required,email"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD,required" validate:"required"`
}

func loadConfig() (*seedConfig, error) {
	cfg := &seedConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func main() {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v (run: direnv allow)", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Fatalf("migrate: %v", err)
	}

	admins := usecase.NewAdminUsecase(postgres.NewUserRepository(pool), password.NewBcrypt(cfg.BcryptCost))
	user, created, err := admins.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		pool.Close()
		log.Fatalf("ensure admin: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Admin:   %s\n", user.Email)
	fmt.Printf("  User ID: %s\n", user.ID)
	if created {
		fmt.Printf("  Account created (verified, bcrypt cost %d)\n", cfg.BcryptCost)
	} else {
		fmt.Println("  Existing account promoted, password unchanged")
	}
	fmt.Println()
	fmt.Println("Log in:")
	fmt.Println()
	fmt.Printf("    curl -s -c cookies.txt -X POST http://localhost:8080/api/v1/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"...\"}'\n", user.Email)
	fmt.Println()
	fmt.Println("    curl -s -b cookies.txt http://localhost:8080/api/v1/admin/users")
}
