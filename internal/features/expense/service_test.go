package expense

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/features/company"
	"go-expense/internal/features/rule"
	"go-expense/internal/features/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeExpenseRepo struct {
	expenses map[primitive.ObjectID]*Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: make(map[primitive.ObjectID]*Expense)}
}

func (r *fakeExpenseRepo) Create(ctx context.Context, e *Expense) error {
	stored := *e
	r.expenses[e.ID] = &stored
	return nil
}

func (r *fakeExpenseRepo) GetByID(ctx context.Context, id string) (*Expense, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	stored, ok := r.expenses[oid]
	if !ok {
		return nil, nil
	}
	cp := *stored
	cp.Workflow.Steps = append([]StepInstance(nil), stored.Workflow.Steps...)
	return &cp, nil
}

func (r *fakeExpenseRepo) ApplyWorkflowUpdate(ctx context.Context, e *Expense, expectedStep int) error {
	stored, ok := r.expenses[e.ID]
	if !ok || stored.Status != common_models.ExpenseStatusPending || stored.Workflow.CurrentStep != expectedStep {
		return fmt.Errorf("expense was decided concurrently: %w", apperr.ErrInvalidState)
	}
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *fakeExpenseRepo) MarkPaid(ctx context.Context, e *Expense) error {
	stored, ok := r.expenses[e.ID]
	if !ok || stored.Status != common_models.ExpenseStatusApproved {
		return fmt.Errorf("expense is no longer approved: %w", apperr.ErrInvalidState)
	}
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *fakeExpenseRepo) ListByEmployee(ctx context.Context, employeeID primitive.ObjectID, filter ListFilter) ([]Expense, int64, error) {
	var out []Expense
	for _, e := range r.expenses {
		if e.Employee == employeeID {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeExpenseRepo) ListByCompany(ctx context.Context, companyID primitive.ObjectID, filter ListFilter) ([]Expense, int64, error) {
	var out []Expense
	for _, e := range r.expenses {
		if e.Company == companyID {
			out = append(out, *e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeExpenseRepo) ListPendingForApprover(ctx context.Context, companyID, userID primitive.ObjectID, allCompany bool) ([]Expense, error) {
	var out []Expense
	for _, e := range r.expenses {
		if e.Company != companyID || e.Status != common_models.ExpenseStatusPending {
			continue
		}
		if allCompany {
			out = append(out, *e)
			continue
		}
		for i := range e.Workflow.Steps {
			if IsDesignatedApprover(&e.Workflow.Steps[i], userID) {
				out = append(out, *e)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) AddComment(ctx context.Context, id primitive.ObjectID, comment Comment) error {
	stored, ok := r.expenses[id]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.Comments = append(stored.Comments, comment)
	return nil
}

func (r *fakeExpenseRepo) ListRecurringDue(ctx context.Context, now time.Time) ([]Expense, error) {
	var out []Expense
	for _, e := range r.expenses {
		if !e.IsRecurring || e.Status != common_models.ExpenseStatusApproved {
			continue
		}
		if e.Recurring != nil && e.Recurring.NextDueDate != nil && !e.Recurring.NextDueDate.After(now) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) UpdateRecurringNextDue(ctx context.Context, id primitive.ObjectID, next *time.Time) error {
	if stored, ok := r.expenses[id]; ok && stored.Recurring != nil {
		stored.Recurring.NextDueDate = next
	}
	return nil
}

func (r *fakeExpenseRepo) SummaryByCategory(ctx context.Context, companyID primitive.ObjectID, employeeID *primitive.ObjectID, from, to *time.Time) ([]CategoryTotal, error) {
	return nil, nil
}

func (r *fakeExpenseRepo) CountByStatus(ctx context.Context, companyID primitive.ObjectID) (map[common_models.ExpenseStatus]int64, error) {
	return nil, nil
}

func (r *fakeExpenseRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeUserRepo struct {
	users map[primitive.ObjectID]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	m := make(map[primitive.ObjectID]*user.User, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	return r.users[oid], nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]user.User, error) {
	var out []user.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]user.User, error) {
	var out []user.User
	for _, u := range r.users {
		if u.Company == companyID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListByCompanyAndRole(ctx context.Context, companyID primitive.ObjectID, role common_models.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range r.users {
		if u.Company == companyID && u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id string, role common_models.Role) error {
	return nil
}
func (r *fakeUserRepo) UpdateStatus(ctx context.Context, id string, isActive bool) error { return nil }
func (r *fakeUserRepo) AddDirectReport(ctx context.Context, managerID, reportID primitive.ObjectID) error {
	return nil
}
func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return nil
}
func (r *fakeUserRepo) CountByCompany(ctx context.Context, companyID primitive.ObjectID, activeOnly bool) (int64, error) {
	return 0, nil
}
func (r *fakeUserRepo) CountByRole(ctx context.Context, companyID primitive.ObjectID) (map[common_models.Role]int64, error) {
	return nil, nil
}
func (r *fakeUserRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeCompanyRepo struct {
	company *company.Company
}

func (r *fakeCompanyRepo) Create(ctx context.Context, c *company.Company) error { return nil }
func (r *fakeCompanyRepo) GetByID(ctx context.Context, id string) (*company.Company, error) {
	if r.company != nil && r.company.ID.Hex() == id {
		return r.company, nil
	}
	return nil, nil
}
func (r *fakeCompanyRepo) SetAdminUser(ctx context.Context, id string, adminID primitive.ObjectID) error {
	return nil
}
func (r *fakeCompanyRepo) UpdateSettings(ctx context.Context, id string, settings company.Settings) error {
	return nil
}

type fakeRuleService struct {
	rules     []rule.ApprovalRule
	usageHits int
}

func (s *fakeRuleService) Create(ctx context.Context, companyID string, r *rule.ApprovalRule) (*rule.ApprovalRule, error) {
	return r, nil
}
func (s *fakeRuleService) Get(ctx context.Context, companyID, id string) (*rule.ApprovalRule, error) {
	return nil, apperr.ErrNotFound
}
func (s *fakeRuleService) List(ctx context.Context, companyID string) ([]rule.ApprovalRule, error) {
	return s.rules, nil
}
func (s *fakeRuleService) Update(ctx context.Context, companyID, id string, r *rule.ApprovalRule) (*rule.ApprovalRule, error) {
	return r, nil
}
func (s *fakeRuleService) SetActive(ctx context.Context, companyID, id string, active bool) error {
	return nil
}
func (s *fakeRuleService) Delete(ctx context.Context, companyID, id string) error { return nil }
func (s *fakeRuleService) FindApplicable(ctx context.Context, companyID primitive.ObjectID, convertedAmount float64, category string, employeeRole common_models.Role) (*rule.ApprovalRule, error) {
	return rule.SelectApplicable(s.rules, convertedAmount, category, employeeRole), nil
}
func (s *fakeRuleService) RecordUsage(ctx context.Context, id primitive.ObjectID) { s.usageHits++ }
func (s *fakeRuleService) SeedDefaults(ctx context.Context, companyID primitive.ObjectID) error {
	return nil
}

type nopRecorder struct{}

func (nopRecorder) Record(ctx context.Context, companyID primitive.ObjectID, action common_models.AuditAction, module, recordID, actorID string, changes map[string]common_models.Change) {
}

type captureNotifier struct {
	sent [][]primitive.ObjectID
}

func (n *captureNotifier) Notify(ctx context.Context, companyID primitive.ObjectID, userIDs []primitive.ObjectID, title, message, refType, refID string) {
	n.sent = append(n.sent, userIDs)
}

type fixture struct {
	service  ExpenseService
	repo     *fakeExpenseRepo
	rules    *fakeRuleService
	notifier *captureNotifier
	company  *company.Company
	admin    *user.User
	manager  *user.User
	employee *user.User
	orphan   *user.User // no manager assigned
}

func newFixture(rules ...rule.ApprovalRule) *fixture {
	companyID := primitive.NewObjectID()
	comp := &company.Company{
		ID:              companyID,
		Name:            "Test Co",
		DefaultCurrency: "USD",
		IsActive:        true,
	}

	admin := &user.User{ID: primitive.NewObjectID(), Name: "Admin", Role: common_models.RoleAdmin, Company: companyID, IsActive: true}
	manager := &user.User{ID: primitive.NewObjectID(), Name: "Manager", Role: common_models.RoleManager, Company: companyID, IsActive: true}
	employee := &user.User{ID: primitive.NewObjectID(), Name: "Employee", Role: common_models.RoleEmployee, Company: companyID, IsActive: true, Manager: &manager.ID}
	orphan := &user.User{ID: primitive.NewObjectID(), Name: "Orphan", Role: common_models.RoleEmployee, Company: companyID, IsActive: true}

	for i := range rules {
		rules[i].Company = companyID
		if rules[i].ID.IsZero() {
			rules[i].ID = primitive.NewObjectID()
		}
	}

	repo := newFakeExpenseRepo()
	ruleSvc := &fakeRuleService{rules: rules}
	notifier := &captureNotifier{}
	svc := NewExpenseService(
		repo,
		newFakeUserRepo(admin, manager, employee, orphan),
		&fakeCompanyRepo{company: comp},
		ruleSvc,
		nopRecorder{},
		notifier,
		zap.NewNop(),
	)

	return &fixture{
		service:  svc,
		repo:     repo,
		rules:    ruleSvc,
		notifier: notifier,
		company:  comp,
		admin:    admin,
		manager:  manager,
		employee: employee,
		orphan:   orphan,
	}
}

func (f *fixture) requester(u *user.User) Requester {
	return Requester{UserID: u.ID, CompanyID: f.company.ID, Role: u.Role}
}

func TestSubmitAutoApprovesSmallAmountWithoutManager(t *testing.T) {
	f := newFixture()

	e, err := f.service.Submit(context.Background(), f.orphan.ID.Hex(), SubmitExpenseInput{
		Amount:      30,
		Category:    "Meals",
		Description: "team lunch",
	})
	require.NoError(t, err)
	assert.Equal(t, common_models.ExpenseStatusApproved, e.Status)
	assert.NotNil(t, e.ApprovedAt)
	assert.Empty(t, e.Workflow.Steps)
}

func TestSubmitNoApprovalPath(t *testing.T) {
	f := newFixture()

	_, err := f.service.Submit(context.Background(), f.orphan.ID.Hex(), SubmitExpenseInput{
		Amount:      600,
		Category:    "Travel",
		Description: "conference flight",
	})
	assert.ErrorIs(t, err, apperr.ErrNoApprovalPath)
}

func TestSubmitRoutesToManagerByDefault(t *testing.T) {
	f := newFixture()

	e, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      600,
		Category:    "Travel",
		Description: "conference flight",
	})
	require.NoError(t, err)
	assert.Equal(t, common_models.ExpenseStatusPending, e.Status)
	require.Len(t, e.Workflow.Steps, 1)
	assert.Equal(t, f.manager.ID, *e.Workflow.Steps[0].Approver)
	// manager was notified
	require.NotEmpty(t, f.notifier.sent)
	assert.Contains(t, f.notifier.sent[0], f.manager.ID)
}

func TestSubmitAppliesHighestPriorityRule(t *testing.T) {
	f := newFixture(
		rule.ApprovalRule{
			Name:     "generic",
			IsActive: true,
			Priority: 5,
			Conditions: rule.RuleConditions{
				AmountMin: 0, AmountMax: rule.MaxAmountUnbounded,
			},
			ApprovalFlow: rule.ApprovalFlow{RequireManagerApproval: true},
		},
		rule.ApprovalRule{
			Name:     "travel admin review",
			IsActive: true,
			Priority: 10,
			Conditions: rule.RuleConditions{
				AmountMin: 500, AmountMax: rule.MaxAmountUnbounded,
				Categories: []string{"Travel"},
			},
			ApprovalFlow: rule.ApprovalFlow{
				Steps: []rule.StepTemplate{
					{Name: "Admin review", ApproverType: common_models.ApproverTypeRoleBased, RequiredRole: common_models.RoleAdmin},
				},
			},
		},
	)

	e, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      600,
		Category:    "Travel",
		Description: "conference flight",
	})
	require.NoError(t, err)
	assert.Equal(t, common_models.ExpenseStatusPending, e.Status)
	require.Len(t, e.Workflow.Steps, 1)
	assert.Equal(t, common_models.ApproverTypeRoleBased, e.Workflow.Steps[0].ApproverType)
	assert.Equal(t, []primitive.ObjectID{f.admin.ID}, e.Workflow.Steps[0].ApproverGroup)
	assert.Equal(t, 1, f.rules.usageHits)
	require.NotNil(t, e.Workflow.AppliedRule)
	assert.Equal(t, f.rules.rules[1].ID, *e.Workflow.AppliedRule)
}

func TestSubmitConvertsCurrency(t *testing.T) {
	f := newFixture()

	e, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      100,
		Currency:    "EUR",
		Category:    "Meals",
		Description: "client dinner",
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", e.Currency)
	assert.Greater(t, e.ConvertedAmount, 100.0) // EUR is worth more than USD
	assert.InDelta(t, e.Amount*e.ExchangeRate, e.ConvertedAmount, 1e-9)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture()

	_, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      -5,
		Category:    "NotACategory",
		Description: "",
	})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestSubmitRejectsFutureDate(t *testing.T) {
	f := newFixture()

	future := time.Now().Add(48 * time.Hour)
	_, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      30,
		Category:    "Meals",
		Description: "time travel lunch",
		Date:        &future,
	})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "date", verr.Fields[0].Field)
}

func TestSubmitCarriesMerchantAndTags(t *testing.T) {
	f := newFixture()

	e, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:       120,
		Category:     "Travel",
		Description:  "flight to Berlin",
		MerchantName: "Lufthansa",
		Tags:         []string{"q3", "offsite"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lufthansa", e.MerchantName)
	assert.Equal(t, []string{"q3", "offsite"}, e.Tags)

	// the merchant shows up in export rows
	row := exportRow(e)
	assert.Contains(t, row, "Lufthansa")
}

func TestDecideTwoStepApproveThenReject(t *testing.T) {
	f := newFixture(rule.ApprovalRule{
		Name:     "manager then admin",
		IsActive: true,
		Priority: 5,
		Conditions: rule.RuleConditions{
			AmountMin: 0, AmountMax: rule.MaxAmountUnbounded,
		},
		ApprovalFlow: rule.ApprovalFlow{
			RequireManagerApproval: true,
			Steps: []rule.StepTemplate{
				{Name: "Admin review", ApproverType: common_models.ApproverTypeRoleBased, RequiredRole: common_models.RoleAdmin},
			},
		},
	})

	e, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      800,
		Category:    "Travel",
		Description: "trade show",
	})
	require.NoError(t, err)
	require.Len(t, e.Workflow.Steps, 2)

	// manager approves step one
	e, err = f.service.Decide(context.Background(), f.requester(f.manager), e.ID.Hex(), DecideInput{Approve: true})
	require.NoError(t, err)
	assert.Equal(t, common_models.ExpenseStatusPending, e.Status)
	assert.Equal(t, 1, e.Workflow.CurrentStep)

	// admin rejects step two
	e, err = f.service.Decide(context.Background(), f.requester(f.admin), e.ID.Hex(), DecideInput{Approve: false, Comment: "over budget"})
	require.NoError(t, err)
	assert.Equal(t, common_models.ExpenseStatusRejected, e.Status)
	assert.Equal(t, "over budget", e.RejectionReason)

	// persisted state matches, including the decision comment log
	stored, err := f.service.Get(context.Background(), f.requester(f.admin), e.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, common_models.ExpenseStatusRejected, stored.Status)
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, f.admin.ID, stored.Comments[0].User)
	assert.Equal(t, "over budget", stored.Comments[0].Text)
}

func TestDecideNonDesignatedUser(t *testing.T) {
	f := newFixture()

	e, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      200,
		Category:    "Meals",
		Description: "dinner",
	})
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), f.requester(f.orphan), e.ID.Hex(), DecideInput{Approve: true})
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestDecideAfterTerminal(t *testing.T) {
	f := newFixture()

	e, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      200,
		Category:    "Meals",
		Description: "dinner",
	})
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), f.requester(f.manager), e.ID.Hex(), DecideInput{Approve: true})
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), f.requester(f.manager), e.ID.Hex(), DecideInput{Approve: true})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestPayLifecycle(t *testing.T) {
	f := newFixture()

	e, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      200,
		Category:    "Meals",
		Description: "dinner",
	})
	require.NoError(t, err)

	// pending expenses cannot be paid
	_, err = f.service.Pay(context.Background(), f.requester(f.admin), e.ID.Hex(), "")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = f.service.Decide(context.Background(), f.requester(f.manager), e.ID.Hex(), DecideInput{Approve: true})
	require.NoError(t, err)

	// non-admins cannot pay
	_, err = f.service.Pay(context.Background(), f.requester(f.manager), e.ID.Hex(), "")
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	// unknown reimbursement methods are refused
	_, err = f.service.Pay(context.Background(), f.requester(f.admin), e.ID.Hex(), "gold bars")
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)

	paid, err := f.service.Pay(context.Background(), f.requester(f.admin), e.ID.Hex(), "Bank Transfer")
	require.NoError(t, err)
	assert.Equal(t, common_models.ExpenseStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, "Bank Transfer", paid.ReimbursementMethod)
	assert.NotNil(t, paid.ReimbursementDate)
}

func TestGetVisibility(t *testing.T) {
	f := newFixture()

	e, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      200,
		Category:    "Meals",
		Description: "dinner",
	})
	require.NoError(t, err)

	// owner, approver and admin can view
	for _, u := range []*user.User{f.employee, f.manager, f.admin} {
		_, err := f.service.Get(context.Background(), f.requester(u), e.ID.Hex())
		assert.NoError(t, err, u.Name)
	}

	// an unrelated employee cannot
	_, err = f.service.Get(context.Background(), f.requester(f.orphan), e.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	// another company sees nothing
	foreign := Requester{UserID: f.admin.ID, CompanyID: primitive.NewObjectID(), Role: common_models.RoleAdmin}
	_, err = f.service.Get(context.Background(), foreign, e.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListPendingApprovalsFiltersToCurrentStep(t *testing.T) {
	f := newFixture(rule.ApprovalRule{
		Name:     "manager then admin",
		IsActive: true,
		Priority: 5,
		Conditions: rule.RuleConditions{
			AmountMin: 0, AmountMax: rule.MaxAmountUnbounded,
		},
		ApprovalFlow: rule.ApprovalFlow{
			RequireManagerApproval: true,
			Steps: []rule.StepTemplate{
				{Name: "Admin review", ApproverType: common_models.ApproverTypeRoleBased, RequiredRole: common_models.RoleAdmin},
			},
		},
	})

	e, err := f.service.Submit(context.Background(), f.employee.ID.Hex(), SubmitExpenseInput{
		Amount:      800,
		Category:    "Travel",
		Description: "trade show",
	})
	require.NoError(t, err)

	// step one belongs to the manager, not the admin group yet
	pending, err := f.service.ListPendingApprovals(context.Background(), f.requester(f.manager))
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.service.Decide(context.Background(), f.requester(f.manager), e.ID.Hex(), DecideInput{Approve: true})
	require.NoError(t, err)

	pending, err = f.service.ListPendingApprovals(context.Background(), f.requester(f.manager))
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestResubmitRecurringAdvancesSchedule(t *testing.T) {
	f := newFixture()

	due := time.Now().Add(-time.Hour)
	template := &Expense{
		ID:          primitive.NewObjectID(),
		Employee:    f.employee.ID,
		Company:     f.company.ID,
		Amount:      40,
		Currency:    "USD",
		Category:    "Software",
		Description: "monthly license",
		Status:      common_models.ExpenseStatusApproved,
		IsRecurring: true,
		Recurring: &RecurringDetails{
			Frequency:   "monthly",
			NextDueDate: &due,
		},
	}
	require.NoError(t, f.repo.Create(context.Background(), template))

	require.NoError(t, f.service.ResubmitRecurring(context.Background(), template))

	stored, err := f.repo.GetByID(context.Background(), template.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, stored.Recurring.NextDueDate)
	assert.True(t, stored.Recurring.NextDueDate.After(due))

	// a fresh expense was created for the employee; it keeps the recurring
	// flag but no schedule of its own
	list, _, err := f.service.ListMine(context.Background(), f.employee.ID.Hex(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, e := range list {
		if e.ID == template.ID {
			continue
		}
		assert.True(t, e.IsRecurring)
		assert.Nil(t, e.Recurring)
	}
}

func TestResubmitRecurringCloneHitsRecurringOnlyRule(t *testing.T) {
	f := newFixture(rule.ApprovalRule{
		Name:     "recurring auto approve",
		IsActive: true,
		Priority: 5,
		Conditions: rule.RuleConditions{
			AmountMin: 0, AmountMax: rule.MaxAmountUnbounded,
		},
		AutoApproval: rule.AutoApprovalRules{
			Enabled:       true,
			MaxAmount:     100,
			RecurringOnly: true,
		},
	})

	due := time.Now().Add(-time.Hour)
	template := &Expense{
		ID:          primitive.NewObjectID(),
		Employee:    f.employee.ID,
		Company:     f.company.ID,
		Amount:      40,
		Currency:    "USD",
		Category:    "Software",
		Description: "monthly license",
		Status:      common_models.ExpenseStatusApproved,
		IsRecurring: true,
		Recurring: &RecurringDetails{
			Frequency:   "monthly",
			NextDueDate: &due,
		},
	}
	require.NoError(t, f.repo.Create(context.Background(), template))

	require.NoError(t, f.service.ResubmitRecurring(context.Background(), template))

	list, _, err := f.service.ListMine(context.Background(), f.employee.ID.Hex(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, e := range list {
		if e.ID == template.ID {
			continue
		}
		assert.Equal(t, common_models.ExpenseStatusApproved, e.Status)
		assert.Empty(t, e.Workflow.Steps)
	}
}

func TestListRecurringDueSkipsUndecidedTemplates(t *testing.T) {
	f := newFixture()

	due := time.Now().Add(-time.Hour)
	for _, status := range []common_models.ExpenseStatus{
		common_models.ExpenseStatusApproved,
		common_models.ExpenseStatusPending,
		common_models.ExpenseStatusRejected,
	} {
		require.NoError(t, f.repo.Create(context.Background(), &Expense{
			ID:          primitive.NewObjectID(),
			Employee:    f.employee.ID,
			Company:     f.company.ID,
			Amount:      40,
			Status:      status,
			IsRecurring: true,
			Recurring: &RecurringDetails{
				Frequency:   "monthly",
				NextDueDate: &due,
			},
		}))
	}

	listed, err := f.repo.ListRecurringDue(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, common_models.ExpenseStatusApproved, listed[0].Status)
}

func TestResubmitRecurringStopsAfterEndDate(t *testing.T) {
	f := newFixture()

	due := time.Now().Add(-time.Hour)
	end := time.Now().Add(-2 * time.Hour)
	template := &Expense{
		ID:          primitive.NewObjectID(),
		Employee:    f.employee.ID,
		Company:     f.company.ID,
		Amount:      40,
		Currency:    "USD",
		Category:    "Software",
		Description: "monthly license",
		Status:      common_models.ExpenseStatusApproved,
		IsRecurring: true,
		Recurring: &RecurringDetails{
			Frequency:   "monthly",
			NextDueDate: &due,
			EndDate:     &end,
		},
	}
	require.NoError(t, f.repo.Create(context.Background(), template))

	require.NoError(t, f.service.ResubmitRecurring(context.Background(), template))

	stored, err := f.repo.GetByID(context.Background(), template.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, stored.Recurring.NextDueDate)

	// nothing new was submitted
	list, _, err := f.service.ListMine(context.Background(), f.employee.ID.Hex(), ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
