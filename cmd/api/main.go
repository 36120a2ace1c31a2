package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-expense/internal/common/api"
	"go-expense/internal/config"
	"go-expense/internal/database"
	"go-expense/internal/features/analytics"
	"go-expense/internal/features/audit"
	"go-expense/internal/features/auth"
	"go-expense/internal/features/company"
	"go-expense/internal/features/expense"
	"go-expense/internal/features/notification"
	"go-expense/internal/features/recurring"
	"go-expense/internal/features/rule"
	"go-expense/internal/features/user"
	"go-expense/internal/logger"
	"go-expense/internal/middleware"
	"go-expense/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates the Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags a constructor so Fx adds its result to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every collected route.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer runs Fiber in a goroutine and shuts it down with the app.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes creates database indexes in the background on startup
func InitializeIndexes(
	lc fx.Lifecycle,
	logger *zap.Logger,
	users user.UserRepository,
	rules rule.RuleRepository,
	expenses expense.ExpenseRepository,
	audits audit.AuditRepository,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				for name, ensure := range map[string]func(context.Context) error{
					"users":    users.EnsureIndexes,
					"rules":    rules.EnsureIndexes,
					"expenses": expenses.EnsureIndexes,
					"audit":    audits.EnsureIndexes,
				} {
					if err := ensure(ctx); err != nil {
						logger.Warn("failed to ensure indexes",
							zap.String("collection", name), zap.Error(err))
					}
				}
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			company.NewCompanyRepository,
			user.NewUserRepository,
			rule.NewRuleRepository,
			expense.NewExpenseRepository,
			audit.NewAuditRepository,
			notification.NewNotificationRepository,

			company.NewCompanyService,
			user.NewUserService,
			rule.NewRuleService,
			auth.NewAuthService,
			audit.NewAuditService,
			notification.NewNotificationService,
			expense.NewExpenseService,
			analytics.NewAnalyticsService,

			// Interface adapters so the expense service stays mockable
			func(s audit.AuditService) expense.Recorder { return s },
			func(s notification.NotificationService) expense.Notifier { return s },

			recurring.NewScheduler,

			auth.NewAuthController,
			company.NewCompanyController,
			user.NewUserController,
			rule.NewRuleController,
			expense.NewExpenseController,
			audit.NewAuditController,
			notification.NewNotificationController,
			analytics.NewAnalyticsController,

			AsRoute(auth.NewAuthApi),
			AsRoute(company.NewCompanyApi),
			AsRoute(user.NewUserApi),
			AsRoute(rule.NewRuleApi),
			AsRoute(expense.NewExpenseApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(analytics.NewAnalyticsApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(*recurring.Scheduler) {},
			InitializeIndexes,
		),
	)

	app.Run()
}
