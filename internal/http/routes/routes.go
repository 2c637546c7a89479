package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/auth"
	"github.com/eduflow/eduflow-server-go/internal/features/course"
	"github.com/eduflow/eduflow-server-go/internal/features/lesson"
	"github.com/eduflow/eduflow-server-go/internal/features/payment"
	"github.com/eduflow/eduflow-server-go/internal/features/subscription"
	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/internal/middleware"
	"github.com/eduflow/eduflow-server-go/internal/services/checkout"
	"github.com/eduflow/eduflow-server-go/pkg/cache"
	"github.com/eduflow/eduflow-server-go/pkg/config"
	"github.com/eduflow/eduflow-server-go/pkg/email"
	"github.com/eduflow/eduflow-server-go/pkg/health"
)

// Deps carries the shared infrastructure handed to every feature.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Logger   *slog.Logger
	Denylist cache.Client
	Mailer   email.Sender
	Notifier lesson.Notifier
}

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, deps Deps) {
	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(deps.DB, deps.Logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.VersionInfo)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")

	authMiddleware := middleware.NewAuthMiddleware(deps.DB, deps.Config.JWTSecret, deps.Denylist, deps.Logger)
	authenticate := authMiddleware.AuthenticateToken()

	tokens := auth.DefaultTokens(deps.Config.JWTSecret, deps.Config.JWTRefreshSecret)
	authHandler := auth.NewHandler(deps.DB, tokens, deps.Denylist, deps.Mailer, deps.Logger)
	auth.RegisterRoutes(api, authHandler)

	userHandler := user.NewHandler(deps.DB, deps.Logger)
	user.RegisterRoutes(api, userHandler, authenticate)

	courseHandler := course.NewHandler(deps.DB, deps.Logger)
	course.RegisterRoutes(api, courseHandler, authenticate)

	lessonHandler := lesson.NewHandler(deps.DB, deps.Notifier, deps.Logger)
	lesson.RegisterRoutes(api, lessonHandler, authenticate)

	subscriptionHandler := subscription.NewHandler(deps.DB, deps.Logger)
	subscription.RegisterRoutes(api, subscriptionHandler, authenticate)

	paymentHandler := payment.NewHandler(deps.DB, deps.Logger)
	payment.RegisterRoutes(api, paymentHandler, authenticate)

	checkoutService := checkout.NewService(deps.Config.Stripe)
	checkoutHandler := checkout.NewHandler(deps.DB, checkoutService, deps.Logger)
	checkout.RegisterRoutes(api, checkoutHandler, authenticate)
}
