package user

import (
	"time"

	common_models "go-expense/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an employee, manager or admin of one company. Manager is a
// non-owning back-reference; DirectReports is maintained on registration.
// ApprovalLimit is stored but not enforced by the workflow engine.
type User struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Email         string               `bson:"email" json:"email"`
	Password      string               `bson:"password" json:"-"`
	Role          common_models.Role   `bson:"role" json:"role"`
	Company       primitive.ObjectID   `bson:"company" json:"company"`
	Department    string               `bson:"department,omitempty" json:"department,omitempty"`
	EmployeeID    string               `bson:"employee_id,omitempty" json:"employeeId,omitempty"`
	Currency      string               `bson:"currency,omitempty" json:"currency,omitempty"`
	Manager       *primitive.ObjectID  `bson:"manager,omitempty" json:"manager,omitempty"`
	DirectReports []primitive.ObjectID `bson:"direct_reports,omitempty" json:"directReports,omitempty"`
	ApprovalLimit float64              `bson:"approval_limit" json:"approvalLimit"`
	IsActive      bool                 `bson:"is_active" json:"isActive"`
	LastLogin     *time.Time           `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt     time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updatedAt"`
}
