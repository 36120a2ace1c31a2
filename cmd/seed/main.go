package main

import (
	"context"
	"time"

	common_models "go-expense/internal/common/models"
	"go-expense/internal/config"
	"go-expense/internal/database"
	"go-expense/internal/features/auth"
	"go-expense/internal/features/company"
	"go-expense/internal/features/rule"
	"go-expense/internal/features/user"
	"go-expense/internal/logger"
	"go-expense/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Seeds a demo company through the regular registration path so the data
// matches exactly what the API would create: an admin, a manager with two
// reports, and a handful of category-specific approval rules.
func seed(
	authSvc auth.AuthService,
	rules rule.RuleService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	go func() {
		defer shutdowner.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		result, err := authSvc.RegisterCompany(ctx, auth.RegisterCompanyInput{
			CompanyName: "Acme Corp",
			Country:     "United States",
			Currency:    "USD",
			AdminName:   "Alice Admin",
			Email:       "admin@acme.test",
			Password:    "password123",
		})
		if err != nil {
			logger.Error("company registration failed", zap.Error(err))
			return
		}
		companyID := result.User.Company

		manager, err := authSvc.RegisterEmployee(ctx, companyID.Hex(), auth.RegisterEmployeeInput{
			Name:     "Mark Manager",
			Email:    "manager@acme.test",
			Password: "password123",
			Role:     common_models.RoleManager,
		})
		if err != nil {
			logger.Error("manager registration failed", zap.Error(err))
			return
		}

		for _, emp := range []auth.RegisterEmployeeInput{
			{Name: "Eve Employee", Email: "eve@acme.test", Password: "password123", Department: "Engineering", ManagerID: manager.ID.Hex()},
			{Name: "Erin Employee", Email: "erin@acme.test", Password: "password123", Department: "Sales", ManagerID: manager.ID.Hex()},
		} {
			if _, err := authSvc.RegisterEmployee(ctx, companyID.Hex(), emp); err != nil {
				logger.Error("employee registration failed", zap.String("email", emp.Email), zap.Error(err))
				return
			}
		}

		for _, r := range categoryRules(companyID) {
			if _, err := rules.Create(ctx, companyID.Hex(), &r); err != nil {
				logger.Error("rule creation failed", zap.String("rule", r.Name), zap.Error(err))
				return
			}
		}

		logger.Info("seed finished",
			zap.String("company_id", companyID.Hex()),
			zap.String("admin", "admin@acme.test"))
	}()
}

func categoryRules(companyID primitive.ObjectID) []rule.ApprovalRule {
	return []rule.ApprovalRule{
		{
			Name:        "Travel expenses need extra scrutiny",
			Description: "Travel above 200 goes through manager and admin",
			IsActive:    true,
			Priority:    10,
			Conditions: rule.RuleConditions{
				AmountMin:  200.01,
				AmountMax:  rule.MaxAmountUnbounded,
				Categories: []string{"Travel", "Accommodation"},
			},
			ApprovalFlow: rule.ApprovalFlow{
				Type:                   "sequential",
				RequireManagerApproval: true,
				Steps: []rule.StepTemplate{
					{StepNumber: 0, Name: "Admin review", ApproverType: common_models.ApproverTypeRoleBased, RequiredRole: common_models.RoleAdmin},
				},
			},
			NotificationSettings: rule.NotificationSettings{SendToApprovers: true, SendToEmployee: true},
		},
		{
			Name:        "Software purchases",
			Description: "All software spend is reviewed by an admin",
			IsActive:    true,
			Priority:    8,
			Conditions: rule.RuleConditions{
				AmountMin:  0,
				AmountMax:  rule.MaxAmountUnbounded,
				Categories: []string{"Software"},
			},
			ApprovalFlow: rule.ApprovalFlow{
				Type: "sequential",
				Steps: []rule.StepTemplate{
					{StepNumber: 0, Name: "Admin review", ApproverType: common_models.ApproverTypeRoleBased, RequiredRole: common_models.RoleAdmin},
				},
			},
			NotificationSettings: rule.NotificationSettings{SendToApprovers: true, SendToEmployee: true},
		},
		{
			Name:        "Small meals auto-approve",
			Description: "Meals up to 75 are approved automatically",
			IsActive:    true,
			Priority:    6,
			Conditions: rule.RuleConditions{
				AmountMin:  0,
				AmountMax:  75,
				Categories: []string{"Meals"},
			},
			ApprovalFlow: rule.ApprovalFlow{Type: "sequential"},
			AutoApproval: rule.AutoApprovalRules{Enabled: true, MaxAmount: 75, Categories: []string{"Meals"}},
			NotificationSettings: rule.NotificationSettings{SendToEmployee: true},
		},
		{
			Name:        "Training budget",
			Description: "Training expenses need the manager",
			IsActive:    true,
			Priority:    4,
			Conditions: rule.RuleConditions{
				AmountMin:  0,
				AmountMax:  rule.MaxAmountUnbounded,
				Categories: []string{"Training"},
			},
			ApprovalFlow: rule.ApprovalFlow{
				Type:                   "sequential",
				RequireManagerApproval: true,
			},
			NotificationSettings: rule.NotificationSettings{SendToApprovers: true, SendToEmployee: true},
		},
	}
}

func main() {
	fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			company.NewCompanyRepository,
			user.NewUserRepository,
			rule.NewRuleRepository,
			rule.NewRuleService,
			auth.NewAuthService,
		),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			seed,
		),
		fx.NopLogger,
	).Run()
}
