// Package server wires the services into the Fiber application.
package server

import (
	"context"
	"strings"
	"time"

	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/auth"
	"butce-backend/internal/config"
	"butce-backend/internal/customer"
	"butce-backend/internal/database"
	"butce-backend/internal/logger"
	"butce-backend/internal/models"
	"butce-backend/internal/report"
	"butce-backend/internal/retention"
	"butce-backend/internal/salesperson"
	"butce-backend/internal/transaction"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New builds the application. cache may be nil.
func New(cfg *config.Config, log *zap.Logger, db *gorm.DB, cache *report.Cache) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: apperror.ErrorHandler(!cfg.IsProduction()),
	})

	app.Use(logger.FiberMiddleware(log))
	app.Use(recover.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(corsOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + logger.RequestIDHeader,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: logger.RequestIDHeader,
	}))
	app.Use(dbDeadline(cfg.DBAcquireTimeout))

	var invalidator transaction.Invalidator
	if cache != nil {
		invalidator = cache
	}

	transactions := transaction.NewService(db, transaction.NewNormalizer(cfg.ReportingCurrency, cfg.AllowedCurrencies), invalidator)
	salespersons := salesperson.NewService(db)
	customers := customer.NewService(db, customer.NewAllocator(customer.RandomCode))
	members := retention.NewMemberService(db)
	coordinator := retention.NewCoordinator(retention.NewGormStore(db))
	listings := retention.NewListings(db)
	reports := report.NewService(db, cache, cfg.DefaultInvestTarget)

	ops := auth.RequireRole(models.RoleOperationsManager)
	gm := auth.RequireRole(models.RoleGeneralManager)
	both := auth.RequireRole(models.RoleOperationsManager, models.RoleGeneralManager)

	api := app.Group("/api")

	// Public
	api.Get("/health", healthHandler(db))
	api.Post("/auth/login", auth.LoginHandler(cfg, auth.NewUserStore(db)))

	protected := api.Group("", auth.JWTMiddleware(cfg.JWTSecret), auth.RequireRole())
	protected.Get("/users/me", auth.MeHandler())

	// İşlemler
	protected.Get("/transactions", both, transaction.ListTransactionsHandler(transactions))
	protected.Get("/transactions/:id", both, transaction.GetTransactionHandler(transactions))
	protected.Post("/transactions", ops, transaction.CreateTransactionHandler(transactions))
	protected.Put("/transactions/:id", ops, transaction.UpdateTransactionHandler(transactions))
	protected.Delete("/transactions/:id", ops, transaction.DeleteTransactionHandler(transactions))

	// Satışçılar
	protected.Get("/salespersons", both, salesperson.ListSalespersonsHandler(salespersons))
	protected.Get("/salespersons/:id", both, salesperson.GetSalespersonHandler(salespersons))
	protected.Post("/salespersons", ops, salesperson.CreateSalespersonHandler(salespersons))
	protected.Put("/salespersons/:id", ops, salesperson.UpdateSalespersonHandler(salespersons))
	protected.Delete("/salespersons/:id", ops, salesperson.DeleteSalespersonHandler(salespersons))

	// Müşteriler (her iki rol)
	protected.Get("/customers", customer.ListCustomersHandler(customers))
	protected.Get("/customers/:id", customer.GetCustomerHandler(customers))
	protected.Post("/customers", customer.CreateCustomerHandler(customers))
	protected.Put("/customers/:id", customer.UpdateCustomerHandler(customers))
	protected.Delete("/customers/:id", customer.DeleteCustomerHandler(customers))

	// Raporlar
	reportRoutes := protected.Group("/reports", gm)
	reportRoutes.Get("/summary", report.SummaryHandler(reports))
	reportRoutes.Get("/by-salesperson", report.BySalespersonHandler(reports))
	reportRoutes.Get("/salesperson-stats", report.SalespersonStatsHandler(reports))
	reportRoutes.Get("/flow-chart", report.FlowChartHandler(reports))
	reportRoutes.Get("/export", report.ExportHandler(reports))

	// RET ekibi
	protected.Get("/ret-members", both, retention.ListMembersHandler(members))
	protected.Get("/ret-members/:id", both, retention.GetMemberHandler(members))
	protected.Post("/ret-members", ops, retention.CreateMemberHandler(members))
	protected.Put("/ret-members/:id", ops, retention.UpdateMemberHandler(members))
	protected.Delete("/ret-members/:id", ops, retention.DeleteMemberHandler(members))

	// RET atamaları
	assignments := protected.Group("/ret-assignments", gm)
	assignments.Get("/", retention.ListAssignmentsHandler(listings))
	assignments.Get("/candidates", retention.CandidatesHandler(listings))
	assignments.Get("/ret-members", retention.MemberPickerHandler(listings))
	assignments.Get("/summary", retention.SummaryHandler(listings))
	assignments.Post("/", retention.AssignHandler(coordinator))
	assignments.Delete("/:id", retention.UnassignHandler(coordinator))

	protected.Get("/gm/assignable", gm, retention.AssignableHandler(listings))
	protected.Get("/audit-logs", gm, audit.ListAuditLogsHandler(db))

	return app
}

// dbDeadline bounds the store work of one request. Queries that run past it
// fail with context.DeadlineExceeded, which the error handler reports as a
// retryable 503.
func dbDeadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if timeout <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// GET /api/health
func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := database.Ping(c.UserContext(), db); err != nil {
			return &apperror.Error{Kind: apperror.KindUnavailable, Message: "Veritabanına ulaşılamıyor", Err: err}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
