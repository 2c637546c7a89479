package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/internal/jobs"
	"github.com/eduflow/eduflow-server-go/pkg/config"
	"github.com/eduflow/eduflow-server-go/pkg/logger"
)

// Manual run of the inactive-user deactivation sweep. With --dry-run it
// only lists the accounts that would be disabled.
func main() {
	dryRun := flag.Bool("dry-run", false, "list accounts without deactivating them")
	flag.Parse()

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

	cutoff := time.Now().Add(-jobs.InactivityThreshold)

	candidates, err := user.ListInactive(db, cutoff)
	if err != nil {
		appLogger.Error("Failed to list inactive users", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if len(candidates) == 0 {
		fmt.Println("No inactive accounts found.")
		return
	}

	fmt.Printf("Accounts inactive since %s:\n", cutoff.Format("2006-01-02"))
	for _, usr := range candidates {
		lastLogin := "never"
		if usr.LastLogin != nil {
			lastLogin = usr.LastLogin.Format("2006-01-02")
		}
		fmt.Printf("   %s  last login %s\n", usr.Email, lastLogin)
	}

	if *dryRun {
		fmt.Printf("\nDry run: %d account(s) would be deactivated.\n", len(candidates))
		return
	}

	deactivated, err := user.DeactivateInactive(db, cutoff)
	if err != nil {
		appLogger.Error("Failed to deactivate users", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("\n✅ Deactivated %d account(s).\n", deactivated)
}
