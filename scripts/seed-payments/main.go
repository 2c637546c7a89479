package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/course"
	"github.com/eduflow/eduflow-server-go/internal/features/lesson"
	"github.com/eduflow/eduflow-server-go/internal/features/payment"
	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/pkg/config"
	"github.com/eduflow/eduflow-server-go/pkg/logger"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// Seeds a handful of sample payments spread over the past year, for local
// development and demos. Requires existing users and courses.
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

	var users []user.User
	if err := db.Limit(20).Find(&users).Error; err != nil || len(users) == 0 {
		fmt.Println("❌ Error: no users found, create some accounts first")
		os.Exit(1)
	}

	var courses []course.Course
	if err := db.Limit(20).Find(&courses).Error; err != nil || len(courses) == 0 {
		fmt.Println("❌ Error: no courses found, create some courses first")
		os.Exit(1)
	}

	var lessons []lesson.Lesson
	if err := db.Limit(20).Find(&lessons).Error; err != nil {
		appLogger.Error("Failed to load lessons", slog.String("error", err.Error()))
		os.Exit(1)
	}

	methods := []types.PaymentMethod{
		types.PaymentMethodCash,
		types.PaymentMethodTransfer,
		types.PaymentMethodStripe,
	}
	statuses := []types.PaymentStatus{
		types.PaymentStatusPending,
		types.PaymentStatusPaid,
		types.PaymentStatusFailed,
		types.PaymentStatusRefunded,
	}

	created := 0
	for i := 0; i < 30; i++ {
		usr := users[rand.Intn(len(users))]
		paymentDate := time.Now().AddDate(0, 0, -rand.Intn(365))

		input := payment.CreateInput{
			UserID:      usr.ID,
			Amount:      types.NewMoney(float64(rand.Intn(9000)+1000) / 100),
			Method:      methods[rand.Intn(len(methods))],
			Status:      statuses[rand.Intn(len(statuses))],
			PaymentDate: &paymentDate,
		}

		// Mostly course payments, lesson payments when lessons exist.
		if len(lessons) > 0 && i%4 == 3 {
			lessonID := lessons[rand.Intn(len(lessons))].ID
			input.PaidLessonID = &lessonID
		} else {
			courseID := courses[rand.Intn(len(courses))].ID
			input.PaidCourseID = &courseID
		}

		if _, err := payment.Create(db, input); err != nil {
			appLogger.Warn("Failed to create sample payment", slog.String("error", err.Error()))
			continue
		}
		created++
	}

	fmt.Printf("\n✅ Seeded %d sample payments!\n", created)
}
