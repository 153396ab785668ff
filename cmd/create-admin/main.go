package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/opsboard/opsboard/internal/adapter/persistence"
	"github.com/opsboard/opsboard/internal/config"
	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/service/password"
)

const bcryptCost = 10

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	userRepo := persistence.NewPostgresUserRepository(db)

	email := "admin@opsboard.local"
	userPassword := "admin123"
	name := "Administrator"

	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if len(os.Args) > 2 {
		userPassword = os.Args[2]
	}
	if len(os.Args) > 3 {
		name = os.Args[3]
	}

	passwordService := password.NewBcryptPasswordService(bcryptCost)
	hashedPassword, err := passwordService.Hash(userPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := domain.NewUser(email, name, hashedPassword, domain.RoleAdmin)

	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created\n")
	fmt.Printf("Email: %s\n", email)
	fmt.Printf("Name:  %s\n", name)
	fmt.Printf("ID:    %s\n", admin.ID)
}
