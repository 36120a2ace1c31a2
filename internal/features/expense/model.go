package expense

import (
	"time"

	common_models "go-expense/internal/common/models"
	"go-expense/internal/features/rule"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StepInstance is one materialized approval step of a submitted expense.
// Single-approver types (manager, specific_user, department_head) carry
// Approver; group types (role_based, any_from_group) carry ApproverGroup.
// Status is terminal once it leaves pending.
type StepInstance struct {
	StepNumber    int                        `bson:"step_number" json:"stepNumber"`
	Name          string                     `bson:"name,omitempty" json:"name,omitempty"`
	ApproverType  common_models.ApproverType `bson:"approver_type" json:"approverType"`
	Approver      *primitive.ObjectID        `bson:"approver,omitempty" json:"approver,omitempty"`
	ApproverGroup []primitive.ObjectID       `bson:"approver_group,omitempty" json:"approverGroup,omitempty"`
	Status        common_models.StepStatus   `bson:"status" json:"status"`
	Comments      string                     `bson:"comments,omitempty" json:"comments,omitempty"`
	ApprovedAt    *time.Time                 `bson:"approved_at,omitempty" json:"approvedAt,omitempty"`
	ApprovedBy    *primitive.ObjectID        `bson:"approved_by,omitempty" json:"approvedBy,omitempty"`
}

// ApprovalWorkflow tracks sequential progress through the steps.
// CurrentStep is a zero-based index that only ever moves forward.
type ApprovalWorkflow struct {
	CurrentStep      int                    `bson:"current_step" json:"currentStep"`
	TotalSteps       int                    `bson:"total_steps" json:"totalSteps"`
	Steps            []StepInstance         `bson:"steps" json:"steps"`
	AppliedRule      *primitive.ObjectID    `bson:"applied_rule,omitempty" json:"appliedRule,omitempty"`
	ConditionalRules *rule.ConditionalRules `bson:"conditional_rules,omitempty" json:"conditionalRules,omitempty"`
}

type Comment struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

type RecurringDetails struct {
	Frequency   string     `bson:"frequency" json:"frequency"` // daily | weekly | monthly | yearly
	NextDueDate *time.Time `bson:"next_due_date,omitempty" json:"nextDueDate,omitempty"`
	EndDate     *time.Time `bson:"end_date,omitempty" json:"endDate,omitempty"`
}

// Expense is the central record. ConvertedAmount is Amount in the company
// default currency and is what rules match against.
type Expense struct {
	ID                  primitive.ObjectID          `bson:"_id,omitempty" json:"id"`
	Employee            primitive.ObjectID          `bson:"employee" json:"employee"`
	Company             primitive.ObjectID          `bson:"company" json:"company"`
	Amount              float64                     `bson:"amount" json:"amount"`
	Currency            string                      `bson:"currency" json:"currency"`
	ExchangeRate        float64                     `bson:"exchange_rate" json:"exchangeRate"`
	ConvertedAmount     float64                     `bson:"converted_amount" json:"convertedAmount"`
	Category            string                      `bson:"category" json:"category"`
	Description         string                      `bson:"description" json:"description"`
	MerchantName        string                      `bson:"merchant_name,omitempty" json:"merchantName,omitempty"`
	Date                time.Time                   `bson:"date" json:"date"`
	Receipt             string                      `bson:"receipt,omitempty" json:"receipt,omitempty"`
	PaymentMethod       string                      `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	Tags                []string                    `bson:"tags,omitempty" json:"tags,omitempty"`
	Status              common_models.ExpenseStatus `bson:"status" json:"status"`
	Workflow            ApprovalWorkflow            `bson:"approval_workflow" json:"approvalWorkflow"`
	Comments            []Comment                   `bson:"comments,omitempty" json:"comments,omitempty"`
	RejectionReason     string                      `bson:"rejection_reason,omitempty" json:"rejectionReason,omitempty"`
	IsRecurring         bool                        `bson:"is_recurring" json:"isRecurring"`
	Recurring           *RecurringDetails           `bson:"recurring_details,omitempty" json:"recurringDetails,omitempty"`
	SubmittedAt         *time.Time                  `bson:"submitted_at,omitempty" json:"submittedAt,omitempty"`
	ApprovedAt          *time.Time                  `bson:"approved_at,omitempty" json:"approvedAt,omitempty"`
	RejectedAt          *time.Time                  `bson:"rejected_at,omitempty" json:"rejectedAt,omitempty"`
	PaidAt              *time.Time                  `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	ReimbursementMethod string                      `bson:"reimbursement_method,omitempty" json:"reimbursementMethod,omitempty"`
	ReimbursementDate   *time.Time                  `bson:"reimbursement_date,omitempty" json:"reimbursementDate,omitempty"`
	CreatedAt           time.Time                   `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time                   `bson:"updated_at" json:"updatedAt"`
}

// CurrentStep returns the step awaiting a decision, nil when the workflow
// is finished or empty.
func (e *Expense) CurrentStep() *StepInstance {
	wf := &e.Workflow
	if wf.CurrentStep < 0 || wf.CurrentStep >= len(wf.Steps) {
		return nil
	}
	return &wf.Steps[wf.CurrentStep]
}

// Recalculate refreshes ConvertedAmount from Amount and ExchangeRate.
func (e *Expense) Recalculate() {
	rate := e.ExchangeRate
	if rate == 0 {
		rate = 1
		e.ExchangeRate = 1
	}
	e.ConvertedAmount = e.Amount * rate
}

// IsTerminal reports whether the expense can no longer receive decisions.
func (e *Expense) IsTerminal() bool {
	switch e.Status {
	case common_models.ExpenseStatusApproved,
		common_models.ExpenseStatusRejected,
		common_models.ExpenseStatusPaid:
		return true
	}
	return false
}
