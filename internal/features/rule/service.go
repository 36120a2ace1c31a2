package rule

import (
	"context"
	"fmt"

	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RuleService interface {
	Create(ctx context.Context, companyID string, rule *ApprovalRule) (*ApprovalRule, error)
	Get(ctx context.Context, companyID, id string) (*ApprovalRule, error)
	List(ctx context.Context, companyID string) ([]ApprovalRule, error)
	Update(ctx context.Context, companyID, id string, rule *ApprovalRule) (*ApprovalRule, error)
	SetActive(ctx context.Context, companyID, id string, active bool) error
	Delete(ctx context.Context, companyID, id string) error
	// FindApplicable resolves the winning rule for an expense, nil when no
	// active rule matches. convertedAmount must already be in the company
	// default currency.
	FindApplicable(ctx context.Context, companyID primitive.ObjectID, convertedAmount float64, category string, employeeRole common_models.Role) (*ApprovalRule, error)
	RecordUsage(ctx context.Context, id primitive.ObjectID)
	// SeedDefaults installs the three starter rules a fresh company gets.
	SeedDefaults(ctx context.Context, companyID primitive.ObjectID) error
}

type RuleServiceImpl struct {
	Repo   RuleRepository
	Logger *zap.Logger
}

func NewRuleService(repo RuleRepository, logger *zap.Logger) RuleService {
	return &RuleServiceImpl{Repo: repo, Logger: logger}
}

func validateRule(rule *ApprovalRule) error {
	fields := make([]apperr.FieldError, 0)
	if rule.Name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "is required"})
	}
	if rule.Conditions.AmountMin < 0 {
		fields = append(fields, apperr.FieldError{Field: "conditions.amountMin", Message: "must not be negative"})
	}
	if rule.Conditions.AmountMax < rule.Conditions.AmountMin {
		fields = append(fields, apperr.FieldError{Field: "conditions.amountMax", Message: "must be at least amountMin"})
	}
	for _, c := range rule.Conditions.Categories {
		if !common_models.IsValidCategory(c) {
			fields = append(fields, apperr.FieldError{Field: "conditions.categories", Message: "unknown category " + c})
		}
	}
	for _, role := range rule.Conditions.EmployeeRoles {
		if !common_models.IsValidRole(role) {
			fields = append(fields, apperr.FieldError{Field: "conditions.employeeRoles", Message: "unknown role " + string(role)})
		}
	}
	for i, step := range rule.ApprovalFlow.Steps {
		if !common_models.IsValidApproverType(step.ApproverType) {
			fields = append(fields, apperr.FieldError{
				Field:   fmt.Sprintf("approvalFlow.steps[%d].approverType", i),
				Message: "unknown approver type " + string(step.ApproverType),
			})
		}
	}
	if rule.AutoApproval.Enabled && rule.AutoApproval.MaxAmount < 0 {
		fields = append(fields, apperr.FieldError{Field: "autoApprovalRules.maxAmount", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return apperr.NewValidation(fields...)
	}
	return nil
}

func (s *RuleServiceImpl) Create(ctx context.Context, companyID string, rule *ApprovalRule) (*ApprovalRule, error) {
	cid, err := primitive.ObjectIDFromHex(companyID)
	if err != nil {
		return nil, err
	}
	if rule.Conditions.AmountMax == 0 && rule.Conditions.AmountMin == 0 && len(rule.ApprovalFlow.Steps) > 0 {
		rule.Conditions.AmountMax = MaxAmountUnbounded
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	rule.ID = primitive.NilObjectID
	rule.Company = cid
	rule.Statistics = RuleStatistics{}
	if err := s.Repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.Logger.Info("approval rule created",
		zap.String("company_id", companyID),
		zap.String("rule_id", rule.ID.Hex()),
		zap.Int("priority", rule.Priority))
	return rule, nil
}

func (s *RuleServiceImpl) Get(ctx context.Context, companyID, id string) (*ApprovalRule, error) {
	rule, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil || rule.Company.Hex() != companyID {
		return nil, fmt.Errorf("approval rule %s: %w", id, apperr.ErrNotFound)
	}
	return rule, nil
}

func (s *RuleServiceImpl) List(ctx context.Context, companyID string) ([]ApprovalRule, error) {
	cid, err := primitive.ObjectIDFromHex(companyID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListByCompany(ctx, cid)
}

func (s *RuleServiceImpl) Update(ctx context.Context, companyID, id string, rule *ApprovalRule) (*ApprovalRule, error) {
	existing, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	rule.ID = existing.ID
	rule.Company = existing.Company
	rule.CreatedAt = existing.CreatedAt
	rule.Statistics = existing.Statistics
	if err := s.Repo.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *RuleServiceImpl) SetActive(ctx context.Context, companyID, id string, active bool) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	return s.Repo.SetActive(ctx, id, active)
}

func (s *RuleServiceImpl) Delete(ctx context.Context, companyID, id string) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

func (s *RuleServiceImpl) FindApplicable(ctx context.Context, companyID primitive.ObjectID, convertedAmount float64, category string, employeeRole common_models.Role) (*ApprovalRule, error) {
	rules, err := s.Repo.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return SelectApplicable(rules, convertedAmount, category, employeeRole), nil
}

func (s *RuleServiceImpl) RecordUsage(ctx context.Context, id primitive.ObjectID) {
	if err := s.Repo.IncrementUsage(ctx, id); err != nil {
		s.Logger.Warn("failed to record rule usage", zap.String("rule_id", id.Hex()), zap.Error(err))
	}
}

// SeedDefaults gives a new company a sane starting policy: small expenses
// auto-approve, medium ones need the manager, large ones add an admin step.
func (s *RuleServiceImpl) SeedDefaults(ctx context.Context, companyID primitive.ObjectID) error {
	defaults := []ApprovalRule{
		{
			Company:     companyID,
			Name:        "Auto-approve small expenses",
			Description: "Expenses up to 50 in company currency are approved automatically",
			IsActive:    true,
			Priority:    1,
			Conditions:  RuleConditions{AmountMin: 0, AmountMax: 50},
			ApprovalFlow: ApprovalFlow{
				Type: "sequential",
			},
			AutoApproval: AutoApprovalRules{Enabled: true, MaxAmount: 50},
			NotificationSettings: NotificationSettings{
				SendToEmployee: true,
			},
		},
		{
			Company:     companyID,
			Name:        "Manager approval",
			Description: "Expenses between 50 and 500 require manager approval",
			IsActive:    true,
			Priority:    2,
			Conditions:  RuleConditions{AmountMin: 50.01, AmountMax: 500},
			ApprovalFlow: ApprovalFlow{
				Type:                   "sequential",
				RequireManagerApproval: true,
			},
			NotificationSettings: NotificationSettings{
				SendToApprovers:       true,
				SendToEmployee:        true,
				ReminderIntervalHours: 24,
			},
		},
		{
			Company:     companyID,
			Name:        "Manager and admin approval",
			Description: "Expenses above 500 require manager approval followed by an admin",
			IsActive:    true,
			Priority:    3,
			Conditions:  RuleConditions{AmountMin: 500.01, AmountMax: MaxAmountUnbounded},
			ApprovalFlow: ApprovalFlow{
				Type:                   "sequential",
				RequireManagerApproval: true,
				Steps: []StepTemplate{
					{
						StepNumber:   0,
						Name:         "Admin review",
						ApproverType: common_models.ApproverTypeRoleBased,
						RequiredRole: common_models.RoleAdmin,
					},
				},
			},
			NotificationSettings: NotificationSettings{
				SendToApprovers:        true,
				SendToEmployee:         true,
				ReminderIntervalHours:  24,
				EscalationNotification: true,
			},
		},
	}

	for i := range defaults {
		if err := s.Repo.Create(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("seed default rule %q: %w", defaults[i].Name, err)
		}
	}
	s.Logger.Info("default approval rules created", zap.String("company_id", companyID.Hex()))
	return nil
}
