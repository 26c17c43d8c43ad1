package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/config"
	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/repository/postgres"
	"github.com/rugstore/storefront/internal/service"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/create-staff/main.go <email> <password>")
		fmt.Println("Example: go run cmd/create-staff/main.go \"ops@rugstore.example\" \"a-long-password\"")
		os.Exit(1)
	}

	email := os.Args[1]
	password := os.Args[2]

	if len(password) < 8 {
		fmt.Fprintln(os.Stderr, "Password must be at least 8 characters")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(db, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	passwordHash, err := service.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	// Create repositories
	repos := postgres.NewRepositories(db, logger)

	user := &domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		IsStaff:      true,
	}

	if err := repos.User.Create(context.Background(), user); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create staff user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Staff user created.\n\n")
	fmt.Printf("User ID: %s\n", user.ID.String())
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("\nLog in with:\n")
	fmt.Printf("shop login --email %s\n", user.Email)
}
