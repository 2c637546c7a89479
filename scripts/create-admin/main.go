package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/pkg/config"
	"github.com/eduflow/eduflow-server-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Failed to get SQL DB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sqlDB.Close()

	ctx := context.Background()
	if err := sqlDB.PingContext(ctx); err != nil {
		appLogger.Error("Failed to ping database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("Database connection established")

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("First Name: ")
	firstName, _ := reader.ReadString('\n')
	firstName = strings.TrimSpace(firstName)

	fmt.Print("Last Name: ")
	lastName, _ := reader.ReadString('\n')
	lastName = strings.TrimSpace(lastName)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password (min 8 chars): ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	fmt.Print("Account type [admin/moderator]: ")
	accountType, _ := reader.ReadString('\n')
	accountType = strings.ToLower(strings.TrimSpace(accountType))

	if email == "" || len(password) < 8 {
		fmt.Println("❌ Error: Email and password (min 8 chars) are required")
		os.Exit(1)
	}

	input := user.CreateInput{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  password,
	}

	switch accountType {
	case "admin", "":
		input.IsStaff = true
		input.IsSuperuser = true
		accountType = "admin"
	case "moderator":
		input.IsModerator = true
	default:
		fmt.Printf("❌ Error: unknown account type %q (use admin or moderator)\n", accountType)
		os.Exit(1)
	}

	newUser, err := user.Create(db, input)
	if err != nil {
		if err == user.ErrEmailTaken {
			fmt.Println("❌ Error: A user with this email already exists")
			os.Exit(1)
		}
		appLogger.Error("Failed to create account", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println("\n✅ Account created successfully!")
	fmt.Printf("   ID: %s\n", newUser.ID)
	fmt.Printf("   Email: %s\n", newUser.Email)
	fmt.Printf("   Type: %s\n", accountType)
}
