package expense

import (
	"context"
	"fmt"
	"time"

	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/features/company"
	"go-expense/internal/features/rule"
	"go-expense/internal/features/user"
	"go-expense/pkg/currency"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Recorder receives audit events. Failures are logged, never propagated.
type Recorder interface {
	Record(ctx context.Context, companyID primitive.ObjectID, action common_models.AuditAction, module, recordID, actorID string, changes map[string]common_models.Change)
}

// Notifier delivers in-app notifications to users.
type Notifier interface {
	Notify(ctx context.Context, companyID primitive.ObjectID, userIDs []primitive.ObjectID, title, message, refType, refID string)
}

type SubmitExpenseInput struct {
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Category      string            `json:"category"`
	Description   string            `json:"description"`
	MerchantName  string            `json:"merchantName"`
	Date          *time.Time        `json:"date"`
	Receipt       string            `json:"receipt"`
	PaymentMethod string            `json:"paymentMethod"`
	Tags          []string          `json:"tags"`
	IsRecurring   bool              `json:"isRecurring"`
	Recurring     *RecurringDetails `json:"recurringDetails"`
}

type DecideInput struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment"`
}

// Requester identifies the caller of an expense operation.
type Requester struct {
	UserID    primitive.ObjectID
	CompanyID primitive.ObjectID
	Role      common_models.Role
}

type ExpenseService interface {
	// Submit runs the full intake pipeline: validate, convert currency,
	// resolve the approval rule, build the workflow and persist.
	Submit(ctx context.Context, employeeID string, input SubmitExpenseInput) (*Expense, error)
	// Decide applies one approve/reject verdict to the current step.
	Decide(ctx context.Context, req Requester, expenseID string, input DecideInput) (*Expense, error)
	Get(ctx context.Context, req Requester, expenseID string) (*Expense, error)
	ListMine(ctx context.Context, employeeID string, filter ListFilter) ([]Expense, int64, error)
	ListCompany(ctx context.Context, req Requester, filter ListFilter) ([]Expense, int64, error)
	ListPendingApprovals(ctx context.Context, req Requester) ([]Expense, error)
	// Pay marks an approved expense as reimbursed. The method is optional.
	Pay(ctx context.Context, req Requester, expenseID, reimbursementMethod string) (*Expense, error)
	AddComment(ctx context.Context, req Requester, expenseID, text string) error
	Summary(ctx context.Context, req Requester, from, to *time.Time) ([]CategoryTotal, error)
	// ResubmitRecurring creates a fresh submission from a due recurring
	// expense and advances its schedule.
	ResubmitRecurring(ctx context.Context, template *Expense) error
}

type ExpenseServiceImpl struct {
	Repo      ExpenseRepository
	Users     user.UserRepository
	Companies company.CompanyRepository
	Rules     rule.RuleService
	Audit     Recorder
	Notifier  Notifier
	Logger    *zap.Logger
}

func NewExpenseService(
	repo ExpenseRepository,
	users user.UserRepository,
	companies company.CompanyRepository,
	rules rule.RuleService,
	audit Recorder,
	notifier Notifier,
	logger *zap.Logger,
) ExpenseService {
	return &ExpenseServiceImpl{
		Repo:      repo,
		Users:     users,
		Companies: companies,
		Rules:     rules,
		Audit:     audit,
		Notifier:  notifier,
		Logger:    logger,
	}
}

func validateSubmit(input *SubmitExpenseInput) error {
	fields := make([]apperr.FieldError, 0)
	if input.Amount <= 0 {
		fields = append(fields, apperr.FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	if !common_models.IsValidCategory(input.Category) {
		fields = append(fields, apperr.FieldError{Field: "category", Message: "unknown category " + input.Category})
	}
	if input.Description == "" {
		fields = append(fields, apperr.FieldError{Field: "description", Message: "is required"})
	}
	if input.PaymentMethod != "" && !common_models.IsValidPaymentMethod(input.PaymentMethod) {
		fields = append(fields, apperr.FieldError{Field: "paymentMethod", Message: "unknown payment method " + input.PaymentMethod})
	}
	if input.Currency != "" && !company.IsSupportedCurrency(input.Currency) {
		fields = append(fields, apperr.FieldError{Field: "currency", Message: "unsupported currency " + input.Currency})
	}
	if input.Date != nil && input.Date.After(time.Now()) {
		fields = append(fields, apperr.FieldError{Field: "date", Message: "must not be in the future"})
	}
	// recurring details are optional: a clone of a recurring template keeps
	// the isRecurring flag without carrying its own schedule
	if input.Recurring != nil {
		switch input.Recurring.Frequency {
		case "daily", "weekly", "monthly", "yearly":
		default:
			fields = append(fields, apperr.FieldError{Field: "recurringDetails.frequency", Message: "must be daily, weekly, monthly or yearly"})
		}
	}
	if len(fields) > 0 {
		return apperr.NewValidation(fields...)
	}
	return nil
}

func (s *ExpenseServiceImpl) Submit(ctx context.Context, employeeID string, input SubmitExpenseInput) (*Expense, error) {
	if err := validateSubmit(&input); err != nil {
		return nil, err
	}

	employee, err := s.Users.FindByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, fmt.Errorf("user %s: %w", employeeID, apperr.ErrNotFound)
	}

	comp, err := s.Companies.GetByID(ctx, employee.Company.Hex())
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, fmt.Errorf("company %s: %w", employee.Company.Hex(), apperr.ErrNotFound)
	}

	curr := input.Currency
	if curr == "" {
		curr = employee.Currency
	}
	if curr == "" {
		curr = comp.DefaultCurrency
	}

	now := time.Now()
	date := now
	if input.Date != nil {
		date = *input.Date
	}

	e := &Expense{
		ID:            primitive.NewObjectID(),
		Employee:      employee.ID,
		Company:       comp.ID,
		Amount:        input.Amount,
		Currency:      curr,
		ExchangeRate:  currency.Rate(curr, comp.DefaultCurrency),
		Category:      input.Category,
		Description:   input.Description,
		MerchantName:  input.MerchantName,
		Date:          date,
		Receipt:       input.Receipt,
		PaymentMethod: input.PaymentMethod,
		Tags:          input.Tags,
		IsRecurring:   input.IsRecurring,
		SubmittedAt:   &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	e.Recalculate()

	if input.IsRecurring && input.Recurring != nil {
		rec := *input.Recurring
		if rec.NextDueDate == nil {
			next := nextOccurrence(date, rec.Frequency)
			rec.NextDueDate = &next
		}
		e.Recurring = &rec
	}

	applied, err := s.Rules.FindApplicable(ctx, comp.ID, e.ConvertedAmount, e.Category, employee.Role)
	if err != nil {
		return nil, err
	}

	managerID, err := s.resolveManager(ctx, employee)
	if err != nil {
		return nil, err
	}
	roleMembers, err := s.resolveRoleMembers(ctx, comp.ID, applied)
	if err != nil {
		return nil, err
	}

	built, err := BuildWorkflow(BuildInput{
		Rule:            applied,
		EmployeeID:      employee.ID,
		ManagerID:       managerID,
		RoleMembers:     roleMembers,
		ConvertedAmount: e.ConvertedAmount,
		Category:        e.Category,
		IsRecurring:     e.IsRecurring,
	})
	if err != nil {
		return nil, err
	}

	if built.AutoApproved {
		e.Status = common_models.ExpenseStatusApproved
		e.ApprovedAt = &now
	} else {
		e.Status = common_models.ExpenseStatusPending
		e.Workflow = ApprovalWorkflow{
			CurrentStep:      0,
			TotalSteps:       len(built.Steps),
			Steps:            built.Steps,
			AppliedRule:      built.AppliedRule,
			ConditionalRules: built.ConditionalRules,
		}
	}

	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}

	if applied != nil {
		s.Rules.RecordUsage(ctx, applied.ID)
	}
	s.Audit.Record(ctx, comp.ID, common_models.AuditActionSubmit, "expense", e.ID.Hex(), employee.ID.Hex(), nil)

	if e.Status == common_models.ExpenseStatusPending {
		if step := e.CurrentStep(); step != nil {
			s.Notifier.Notify(ctx, comp.ID, stepApprovers(step),
				"Expense awaiting approval",
				fmt.Sprintf("%s submitted a %s expense of %.2f %s", employee.Name, e.Category, e.Amount, e.Currency),
				"expense", e.ID.Hex())
		}
	} else {
		s.Notifier.Notify(ctx, comp.ID, []primitive.ObjectID{employee.ID},
			"Expense auto-approved",
			fmt.Sprintf("Your %s expense of %.2f %s was approved automatically", e.Category, e.Amount, e.Currency),
			"expense", e.ID.Hex())
	}

	s.Logger.Info("expense submitted",
		zap.String("company_id", comp.ID.Hex()),
		zap.String("expense_id", e.ID.Hex()),
		zap.String("status", string(e.Status)),
		zap.Float64("converted_amount", e.ConvertedAmount))

	return e, nil
}

func (s *ExpenseServiceImpl) resolveManager(ctx context.Context, employee *user.User) (*primitive.ObjectID, error) {
	if employee.Manager == nil {
		return nil, nil
	}
	manager, err := s.Users.FindByID(ctx, employee.Manager.Hex())
	if err != nil {
		return nil, err
	}
	if manager == nil || !manager.IsActive {
		return nil, nil
	}
	return &manager.ID, nil
}

func (s *ExpenseServiceImpl) resolveRoleMembers(ctx context.Context, companyID primitive.ObjectID, applied *rule.ApprovalRule) (map[common_models.Role][]primitive.ObjectID, error) {
	if applied == nil {
		return nil, nil
	}
	members := make(map[common_models.Role][]primitive.ObjectID)
	for _, tmpl := range applied.ApprovalFlow.Steps {
		if tmpl.ApproverType != common_models.ApproverTypeRoleBased || tmpl.RequiredRole == "" {
			continue
		}
		if _, done := members[tmpl.RequiredRole]; done {
			continue
		}
		users, err := s.Users.ListByCompanyAndRole(ctx, companyID, tmpl.RequiredRole)
		if err != nil {
			return nil, err
		}
		ids := make([]primitive.ObjectID, 0, len(users))
		for _, u := range users {
			if u.IsActive {
				ids = append(ids, u.ID)
			}
		}
		members[tmpl.RequiredRole] = ids
	}
	return members, nil
}

func stepApprovers(step *StepInstance) []primitive.ObjectID {
	if step.Approver != nil {
		return []primitive.ObjectID{*step.Approver}
	}
	return step.ApproverGroup
}

func (s *ExpenseServiceImpl) Decide(ctx context.Context, req Requester, expenseID string, input DecideInput) (*Expense, error) {
	e, err := s.Repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e == nil || e.Company != req.CompanyID {
		return nil, fmt.Errorf("expense %s: %w", expenseID, apperr.ErrNotFound)
	}

	expectedStep := e.Workflow.CurrentStep
	now := time.Now()
	if err := ApplyDecision(e, Decision{
		ApproverID: req.UserID,
		Approve:    input.Approve,
		Comment:    input.Comment,
	}, now); err != nil {
		return nil, err
	}

	if err := s.Repo.ApplyWorkflowUpdate(ctx, e, expectedStep); err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, e.Company, common_models.AuditActionApproval, "expense", e.ID.Hex(), req.UserID.Hex(), map[string]common_models.Change{
		"status": {Old: common_models.ExpenseStatusPending, New: e.Status},
	})

	switch e.Status {
	case common_models.ExpenseStatusApproved:
		s.Notifier.Notify(ctx, e.Company, []primitive.ObjectID{e.Employee},
			"Expense approved",
			fmt.Sprintf("Your %s expense of %.2f %s was approved", e.Category, e.Amount, e.Currency),
			"expense", e.ID.Hex())
	case common_models.ExpenseStatusRejected:
		s.Notifier.Notify(ctx, e.Company, []primitive.ObjectID{e.Employee},
			"Expense rejected",
			fmt.Sprintf("Your %s expense of %.2f %s was rejected", e.Category, e.Amount, e.Currency),
			"expense", e.ID.Hex())
	default:
		if step := e.CurrentStep(); step != nil {
			s.Notifier.Notify(ctx, e.Company, stepApprovers(step),
				"Expense awaiting approval",
				fmt.Sprintf("A %s expense of %.2f %s needs your approval", e.Category, e.Amount, e.Currency),
				"expense", e.ID.Hex())
		}
	}

	s.Logger.Info("expense decision applied",
		zap.String("expense_id", e.ID.Hex()),
		zap.String("approver_id", req.UserID.Hex()),
		zap.Bool("approved", input.Approve),
		zap.String("status", string(e.Status)))

	return e, nil
}

func (s *ExpenseServiceImpl) Get(ctx context.Context, req Requester, expenseID string) (*Expense, error) {
	e, err := s.Repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e == nil || e.Company != req.CompanyID {
		return nil, fmt.Errorf("expense %s: %w", expenseID, apperr.ErrNotFound)
	}
	if !s.canView(e, req) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, apperr.ErrNotAuthorized)
	}
	return e, nil
}

func (s *ExpenseServiceImpl) canView(e *Expense, req Requester) bool {
	if req.Role == common_models.RoleAdmin {
		return true
	}
	if e.Employee == req.UserID {
		return true
	}
	for i := range e.Workflow.Steps {
		if IsDesignatedApprover(&e.Workflow.Steps[i], req.UserID) {
			return true
		}
	}
	return false
}

func (s *ExpenseServiceImpl) ListMine(ctx context.Context, employeeID string, filter ListFilter) ([]Expense, int64, error) {
	oid, err := primitive.ObjectIDFromHex(employeeID)
	if err != nil {
		return nil, 0, err
	}
	return s.Repo.ListByEmployee(ctx, oid, filter)
}

func (s *ExpenseServiceImpl) ListCompany(ctx context.Context, req Requester, filter ListFilter) ([]Expense, int64, error) {
	if req.Role != common_models.RoleAdmin {
		return nil, 0, fmt.Errorf("company expense listing: %w", apperr.ErrNotAuthorized)
	}
	return s.Repo.ListByCompany(ctx, req.CompanyID, filter)
}

func (s *ExpenseServiceImpl) ListPendingApprovals(ctx context.Context, req Requester) ([]Expense, error) {
	allCompany := req.Role == common_models.RoleAdmin
	expenses, err := s.Repo.ListPendingForApprover(ctx, req.CompanyID, req.UserID, allCompany)
	if err != nil {
		return nil, err
	}
	if allCompany {
		return expenses, nil
	}

	// keep only expenses whose current step names the caller
	actionable := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if step := e.CurrentStep(); step != nil && IsDesignatedApprover(step, req.UserID) {
			actionable = append(actionable, e)
		}
	}
	return actionable, nil
}

func (s *ExpenseServiceImpl) Pay(ctx context.Context, req Requester, expenseID, reimbursementMethod string) (*Expense, error) {
	if req.Role != common_models.RoleAdmin {
		return nil, fmt.Errorf("marking expenses paid: %w", apperr.ErrNotAuthorized)
	}
	if reimbursementMethod != "" && !common_models.IsValidPaymentMethod(reimbursementMethod) {
		return nil, apperr.NewValidation(apperr.FieldError{Field: "reimbursementMethod", Message: "unknown reimbursement method " + reimbursementMethod})
	}
	e, err := s.Repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e == nil || e.Company != req.CompanyID {
		return nil, fmt.Errorf("expense %s: %w", expenseID, apperr.ErrNotFound)
	}

	now := time.Now()
	if err := MarkPaid(e, now); err != nil {
		return nil, err
	}
	e.ReimbursementMethod = reimbursementMethod
	e.ReimbursementDate = &now
	if err := s.Repo.MarkPaid(ctx, e); err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, e.Company, common_models.AuditActionUpdate, "expense", e.ID.Hex(), req.UserID.Hex(), map[string]common_models.Change{
		"status": {Old: common_models.ExpenseStatusApproved, New: common_models.ExpenseStatusPaid},
	})
	s.Notifier.Notify(ctx, e.Company, []primitive.ObjectID{e.Employee},
		"Expense paid",
		fmt.Sprintf("Your %s expense of %.2f %s has been paid", e.Category, e.Amount, e.Currency),
		"expense", e.ID.Hex())

	return e, nil
}

func (s *ExpenseServiceImpl) AddComment(ctx context.Context, req Requester, expenseID, text string) error {
	if text == "" {
		return apperr.NewValidation(apperr.FieldError{Field: "text", Message: "is required"})
	}
	e, err := s.Get(ctx, req, expenseID)
	if err != nil {
		return err
	}
	return s.Repo.AddComment(ctx, e.ID, Comment{
		User:      req.UserID,
		Text:      text,
		CreatedAt: time.Now(),
	})
}

func (s *ExpenseServiceImpl) Summary(ctx context.Context, req Requester, from, to *time.Time) ([]CategoryTotal, error) {
	if req.Role == common_models.RoleAdmin {
		return s.Repo.SummaryByCategory(ctx, req.CompanyID, nil, from, to)
	}
	uid := req.UserID
	return s.Repo.SummaryByCategory(ctx, req.CompanyID, &uid, from, to)
}

func (s *ExpenseServiceImpl) ResubmitRecurring(ctx context.Context, template *Expense) error {
	if template.Recurring == nil || template.Recurring.NextDueDate == nil {
		return nil
	}
	due := *template.Recurring.NextDueDate

	if template.Recurring.EndDate != nil && due.After(*template.Recurring.EndDate) {
		return s.Repo.UpdateRecurringNextDue(ctx, template.ID, nil)
	}

	// the clone keeps the recurring flag so recurring-only auto-approval
	// rules can match it, but no schedule: only the template reschedules
	dueDate := due
	_, err := s.Submit(ctx, template.Employee.Hex(), SubmitExpenseInput{
		Amount:        template.Amount,
		Currency:      template.Currency,
		Category:      template.Category,
		Description:   template.Description,
		MerchantName:  template.MerchantName,
		Date:          &dueDate,
		Receipt:       template.Receipt,
		PaymentMethod: template.PaymentMethod,
		Tags:          template.Tags,
		IsRecurring:   true,
	})
	if err != nil {
		return fmt.Errorf("resubmit recurring expense %s: %w", template.ID.Hex(), err)
	}

	next := nextOccurrence(due, template.Recurring.Frequency)
	if template.Recurring.EndDate != nil && next.After(*template.Recurring.EndDate) {
		return s.Repo.UpdateRecurringNextDue(ctx, template.ID, nil)
	}
	return s.Repo.UpdateRecurringNextDue(ctx, template.ID, &next)
}

func nextOccurrence(from time.Time, frequency string) time.Time {
	switch frequency {
	case "daily":
		return from.AddDate(0, 0, 1)
	case "weekly":
		return from.AddDate(0, 0, 7)
	case "yearly":
		return from.AddDate(1, 0, 0)
	default: // monthly
		return from.AddDate(0, 1, 0)
	}
}
