package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role of a user inside a company
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func IsValidRole(r Role) bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// ExpenseStatus covers the full expense lifecycle:
// draft -> submitted -> pending -> approved/rejected, approved -> paid.
type ExpenseStatus string

const (
	ExpenseStatusDraft     ExpenseStatus = "draft"
	ExpenseStatusSubmitted ExpenseStatus = "submitted"
	ExpenseStatusPending   ExpenseStatus = "pending"
	ExpenseStatusApproved  ExpenseStatus = "approved"
	ExpenseStatusRejected  ExpenseStatus = "rejected"
	ExpenseStatusPaid      ExpenseStatus = "paid"
)

// StepStatus of a single workflow step. Terminal once it leaves pending.
type StepStatus string

const (
	StepStatusPending  StepStatus = "pending"
	StepStatusApproved StepStatus = "approved"
	StepStatusRejected StepStatus = "rejected"
	StepStatusSkipped  StepStatus = "skipped"
)

// ApproverType is the tag of the polymorphic approver variant. Single-id
// types compare against the resolved approver; group types check membership.
type ApproverType string

const (
	ApproverTypeManager        ApproverType = "manager"
	ApproverTypeSpecificUser   ApproverType = "specific_user"
	ApproverTypeRoleBased      ApproverType = "role_based"
	ApproverTypeDepartmentHead ApproverType = "department_head"
	ApproverTypeAnyFromGroup   ApproverType = "any_from_group"
)

func IsValidApproverType(t ApproverType) bool {
	switch t {
	case ApproverTypeManager, ApproverTypeSpecificUser, ApproverTypeRoleBased,
		ApproverTypeDepartmentHead, ApproverTypeAnyFromGroup:
		return true
	}
	return false
}

var ExpenseCategories = []string{
	"Travel",
	"Meals",
	"Accommodation",
	"Transportation",
	"Office Supplies",
	"Software",
	"Training",
	"Marketing",
	"Entertainment",
	"Healthcare",
	"Other",
}

func IsValidCategory(c string) bool {
	for _, cat := range ExpenseCategories {
		if cat == c {
			return true
		}
	}
	return false
}

var PaymentMethods = []string{"Cash", "Credit Card", "Debit Card", "Bank Transfer", "Other"}

func IsValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionLogin    AuditAction = "LOGIN"
	AuditActionSubmit   AuditAction = "SUBMIT"
	AuditActionApproval AuditAction = "APPROVAL"
	AuditActionCron     AuditAction = "CRON"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID primitive.ObjectID `bson:"company_id,omitempty" json:"companyId,omitempty"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`
	RecordID  string             `bson:"record_id" json:"recordId"`
	ActorID   string             `bson:"actor_id" json:"actorId"`
	ActorName string             `bson:"-" json:"actorName,omitempty"`
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Log is the record shape written by the async zap sink
type Log struct {
	AppId        string    `bson:"app_id" json:"appId"`
	Message      string    `bson:"message" json:"message"`
	CompanyID    string    `bson:"company_id,omitempty" json:"companyId,omitempty"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	LogLevelId   int       `bson:"log_level_id" json:"logLevelId"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"createdOnUtc"`
}
