package routers

import (
	"strings"

	"trxflow/config"
	authControllers "trxflow/controllers/auth"
	transactionController "trxflow/controllers/transaction"
	"trxflow/middleware"
	"trxflow/repository"
	authRoutes "trxflow/routers/authRoutes"
	"trxflow/routers/transactionRoutes"
	"trxflow/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options tunes NewApp. AccessLog is off in tests.
type Options struct {
	AccessLog bool
	HashCost  int
}

// NewApp wires repositories, services and controllers over db and mounts
// every route.
func NewApp(cfg *config.Config, db *gorm.DB, log *zap.Logger, opts Options) *fiber.App {
	transactionRepo := repository.NewTransactionRepository(db)
	userRepo := repository.NewUserRepository(db)

	references := services.NewReferenceService(transactionRepo)
	transactions := services.NewTransactionService(transactionRepo, references, log)
	users := services.NewUserService(userRepo, services.NewUserIDService(userRepo), opts.HashCost, log)

	app := fiber.New(fiber.Config{
		AppName:               "trxflow",
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: strings.Join([]string{
			fiber.HeaderContentType,
			fiber.HeaderAuthorization,
			middleware.HeaderUserRole,
			middleware.HeaderUserID,
		}, ","),
	}))

	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	app.Use(middleware.Metrics())

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database unavailable", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authRoutes.SetupAuthRoutes(app, authControllers.New(users, log), users)

	trxController := transactionController.New(transactions, references, log)
	transactionRoutes.SetupV1Routes(app, trxController)
	transactionRoutes.SetupV2Routes(app, trxController, users)

	return app
}
