package expense

import (
	"fmt"
	"time"

	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Decision is an approver's verdict on the current workflow step.
type Decision struct {
	ApproverID primitive.ObjectID
	Approve    bool
	Comment    string
}

// IsDesignatedApprover reports whether userID may decide the given step.
// Single-approver types compare ids; group types check membership.
func IsDesignatedApprover(step *StepInstance, userID primitive.ObjectID) bool {
	switch step.ApproverType {
	case common_models.ApproverTypeManager,
		common_models.ApproverTypeSpecificUser,
		common_models.ApproverTypeDepartmentHead:
		return step.Approver != nil && *step.Approver == userID
	case common_models.ApproverTypeRoleBased,
		common_models.ApproverTypeAnyFromGroup:
		for _, id := range step.ApproverGroup {
			if id == userID {
				return true
			}
		}
	}
	return false
}

// ApplyDecision mutates the expense in place with one approver decision.
// An approval advances CurrentStep and, past the last step, approves the
// expense. A rejection halts the workflow immediately. The expense and the
// step each accept at most one decision; attempts after a terminal state
// fail with ErrInvalidState, attempts by a non-designated user with
// ErrNotAuthorized.
func ApplyDecision(e *Expense, d Decision, now time.Time) error {
	if e.IsTerminal() {
		return fmt.Errorf("expense is already %s: %w", e.Status, apperr.ErrInvalidState)
	}
	if e.Status != common_models.ExpenseStatusPending {
		return fmt.Errorf("expense is %s, not awaiting approval: %w", e.Status, apperr.ErrInvalidState)
	}

	step := e.CurrentStep()
	if step == nil {
		return fmt.Errorf("no pending approval step: %w", apperr.ErrNotAuthorized)
	}
	if step.Status != common_models.StepStatusPending {
		return fmt.Errorf("step %d is already %s: %w", step.StepNumber, step.Status, apperr.ErrInvalidState)
	}
	if !IsDesignatedApprover(step, d.ApproverID) {
		return fmt.Errorf("user is not an approver for step %d: %w", step.StepNumber, apperr.ErrNotAuthorized)
	}

	approver := d.ApproverID
	step.ApprovedBy = &approver
	step.ApprovedAt = &now
	step.Comments = d.Comment
	if d.Comment != "" {
		// decision comments also land in the expense comment log
		e.Comments = append(e.Comments, Comment{
			User:      d.ApproverID,
			Text:      d.Comment,
			CreatedAt: now,
		})
	}

	if !d.Approve {
		step.Status = common_models.StepStatusRejected
		e.Status = common_models.ExpenseStatusRejected
		e.RejectedAt = &now
		e.RejectionReason = d.Comment
		e.UpdatedAt = now
		return nil
	}

	step.Status = common_models.StepStatusApproved
	e.Workflow.CurrentStep++
	if e.Workflow.CurrentStep >= e.Workflow.TotalSteps {
		e.Status = common_models.ExpenseStatusApproved
		e.ApprovedAt = &now
	}
	e.UpdatedAt = now
	return nil
}

// MarkPaid moves an approved expense to paid. Only approved expenses
// qualify; payment happens outside the workflow engine.
func MarkPaid(e *Expense, now time.Time) error {
	if e.Status != common_models.ExpenseStatusApproved {
		return fmt.Errorf("only approved expenses can be paid, expense is %s: %w", e.Status, apperr.ErrInvalidState)
	}
	e.Status = common_models.ExpenseStatusPaid
	e.PaidAt = &now
	e.UpdatedAt = now
	return nil
}
