package rule

import (
	"time"

	common_models "go-expense/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RuleConditions is the declarative matching predicate of a rule: an
// inclusive amount range over the company-currency converted amount plus
// optional category / role sets (empty set matches anything).
type RuleConditions struct {
	AmountMin     float64              `bson:"amount_min" json:"amountMin"`
	AmountMax     float64              `bson:"amount_max" json:"amountMax"`
	Categories    []string             `bson:"categories,omitempty" json:"categories,omitempty"`
	Departments   []string             `bson:"departments,omitempty" json:"departments,omitempty"`
	EmployeeRoles []common_models.Role `bson:"employee_roles,omitempty" json:"employeeRoles,omitempty"`
}

// StepTemplate configures one approval step of a rule's flow.
type StepTemplate struct {
	StepNumber   int                        `bson:"step_number" json:"stepNumber"`
	Name         string                     `bson:"name" json:"name"`
	ApproverType common_models.ApproverType `bson:"approver_type" json:"approverType"`
	Approvers    []primitive.ObjectID       `bson:"approvers,omitempty" json:"approvers,omitempty"`
	RequiredRole common_models.Role         `bson:"required_role,omitempty" json:"requiredRole,omitempty"`
	IsOptional   bool                       `bson:"is_optional" json:"isOptional"`
	TimeoutHours int                        `bson:"timeout_hours" json:"timeoutHours"`
	EscalateTo   *primitive.ObjectID        `bson:"escalate_to,omitempty" json:"escalateTo,omitempty"`
}

// PercentageApproval, SpecificApproverOverride and HybridApproval are
// configuration the source system stored but never evaluated at decision
// time. They are persisted verbatim and ignored by the engine.
type PercentageApproval struct {
	Enabled          bool    `bson:"enabled" json:"enabled"`
	Percentage       float64 `bson:"percentage" json:"percentage"`
	MinimumApprovers int     `bson:"minimum_approvers" json:"minimumApprovers"`
}

type SpecificApproverOverride struct {
	Enabled     bool                 `bson:"enabled" json:"enabled"`
	Approvers   []primitive.ObjectID `bson:"approvers,omitempty" json:"approvers,omitempty"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
}

type HybridApprovalRule struct {
	Type  string      `bson:"type" json:"type"`
	Value interface{} `bson:"value,omitempty" json:"value,omitempty"`
}

type HybridApproval struct {
	Enabled  bool                 `bson:"enabled" json:"enabled"`
	Operator string               `bson:"operator,omitempty" json:"operator,omitempty"` // "AND" | "OR"
	Rules    []HybridApprovalRule `bson:"rules,omitempty" json:"rules,omitempty"`
}

type ConditionalRules struct {
	PercentageApproval       PercentageApproval       `bson:"percentage_approval" json:"percentageApproval"`
	SpecificApproverOverride SpecificApproverOverride `bson:"specific_approver_override" json:"specificApproverOverride"`
	HybridApproval           HybridApproval           `bson:"hybrid_approval" json:"hybridApproval"`
}

// ApprovalFlow describes the workflow a matching rule materializes.
type ApprovalFlow struct {
	Type                   string            `bson:"type" json:"type"` // sequential | parallel | conditional
	RequireManagerApproval bool              `bson:"require_manager_approval" json:"requireManagerApproval"`
	Steps                  []StepTemplate    `bson:"steps,omitempty" json:"steps,omitempty"`
	ConditionalRules       *ConditionalRules `bson:"conditional_rules,omitempty" json:"conditionalRules,omitempty"`
}

// AutoApprovalRules short-circuit the workflow entirely when they match.
type AutoApprovalRules struct {
	Enabled          bool                 `bson:"enabled" json:"enabled"`
	MaxAmount        float64              `bson:"max_amount" json:"maxAmount"`
	Categories       []string             `bson:"categories,omitempty" json:"categories,omitempty"`
	TrustedEmployees []primitive.ObjectID `bson:"trusted_employees,omitempty" json:"trustedEmployees,omitempty"`
	RecurringOnly    bool                 `bson:"recurring_only" json:"recurringOnly"`
}

type NotificationSettings struct {
	SendToApprovers        bool `bson:"send_to_approvers" json:"sendToApprovers"`
	SendToEmployee         bool `bson:"send_to_employee" json:"sendToEmployee"`
	ReminderIntervalHours  int  `bson:"reminder_interval_hours" json:"reminderIntervalHours"`
	EscalationNotification bool `bson:"escalation_notification" json:"escalationNotification"`
}

type RuleStatistics struct {
	TimesUsed           int64   `bson:"times_used" json:"timesUsed"`
	AverageApprovalTime float64 `bson:"average_approval_time" json:"averageApprovalTime"` // hours
	ApprovalRate        float64 `bson:"approval_rate" json:"approvalRate"`                // percentage
}

// ApprovalRule belongs to exactly one company. Higher priority wins among
// matching rules; ties go to the earlier-created rule. The workflow engine
// only ever reads rules.
type ApprovalRule struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Company              primitive.ObjectID   `bson:"company" json:"company"`
	Name                 string               `bson:"name" json:"name"`
	Description          string               `bson:"description,omitempty" json:"description,omitempty"`
	IsActive             bool                 `bson:"is_active" json:"isActive"`
	Priority             int                  `bson:"priority" json:"priority"`
	Conditions           RuleConditions       `bson:"conditions" json:"conditions"`
	ApprovalFlow         ApprovalFlow         `bson:"approval_flow" json:"approvalFlow"`
	AutoApproval         AutoApprovalRules    `bson:"auto_approval_rules" json:"autoApprovalRules"`
	NotificationSettings NotificationSettings `bson:"notification_settings" json:"notificationSettings"`
	Statistics           RuleStatistics       `bson:"statistics" json:"statistics"`
	CreatedAt            time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time            `bson:"updated_at" json:"updatedAt"`
}

// MaxAmountUnbounded marks an amount range with no upper limit.
const MaxAmountUnbounded = float64(1 << 53)
