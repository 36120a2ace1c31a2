package expense

import (
	"testing"
	"time"

	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func pendingExpense(approvers ...primitive.ObjectID) *Expense {
	steps := make([]StepInstance, len(approvers))
	for i := range approvers {
		id := approvers[i]
		steps[i] = StepInstance{
			StepNumber:   i,
			ApproverType: common_models.ApproverTypeManager,
			Approver:     &id,
			Status:       common_models.StepStatusPending,
		}
	}
	return &Expense{
		ID:       primitive.NewObjectID(),
		Employee: primitive.NewObjectID(),
		Company:  primitive.NewObjectID(),
		Amount:   300,
		Status:   common_models.ExpenseStatusPending,
		Workflow: ApprovalWorkflow{
			CurrentStep: 0,
			TotalSteps:  len(steps),
			Steps:       steps,
		},
	}
}

func TestApplyDecisionSingleStepApproval(t *testing.T) {
	approver := primitive.NewObjectID()
	e := pendingExpense(approver)
	now := time.Now()

	err := ApplyDecision(e, Decision{ApproverID: approver, Approve: true, Comment: "ok"}, now)
	require.NoError(t, err)

	assert.Equal(t, common_models.ExpenseStatusApproved, e.Status)
	assert.Equal(t, 1, e.Workflow.CurrentStep)
	assert.Equal(t, common_models.StepStatusApproved, e.Workflow.Steps[0].Status)
	assert.Equal(t, "ok", e.Workflow.Steps[0].Comments)
	require.NotNil(t, e.ApprovedAt)
	require.NotNil(t, e.Workflow.Steps[0].ApprovedBy)
	assert.Equal(t, approver, *e.Workflow.Steps[0].ApprovedBy)
}

func TestApplyDecisionCommentLoggedOnExpense(t *testing.T) {
	approver := primitive.NewObjectID()
	e := pendingExpense(approver)

	err := ApplyDecision(e, Decision{ApproverID: approver, Approve: true, Comment: "looks fine"}, time.Now())
	require.NoError(t, err)

	// the comment lands in the step and in the expense comment log
	require.Len(t, e.Comments, 1)
	assert.Equal(t, approver, e.Comments[0].User)
	assert.Equal(t, "looks fine", e.Comments[0].Text)
}

func TestApplyDecisionWithoutCommentLeavesLogEmpty(t *testing.T) {
	approver := primitive.NewObjectID()
	e := pendingExpense(approver)

	require.NoError(t, ApplyDecision(e, Decision{ApproverID: approver, Approve: true}, time.Now()))
	assert.Empty(t, e.Comments)
}

func TestApplyDecisionMultiStepAdvances(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	e := pendingExpense(first, second)

	require.NoError(t, ApplyDecision(e, Decision{ApproverID: first, Approve: true}, time.Now()))
	assert.Equal(t, common_models.ExpenseStatusPending, e.Status)
	assert.Equal(t, 1, e.Workflow.CurrentStep)
	assert.Nil(t, e.ApprovedAt)

	require.NoError(t, ApplyDecision(e, Decision{ApproverID: second, Approve: true}, time.Now()))
	assert.Equal(t, common_models.ExpenseStatusApproved, e.Status)
	assert.Equal(t, 2, e.Workflow.CurrentStep)
}

func TestApplyDecisionRejectionHalts(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	e := pendingExpense(first, second)

	err := ApplyDecision(e, Decision{ApproverID: first, Approve: false, Comment: "no receipt"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, common_models.ExpenseStatusRejected, e.Status)
	assert.Equal(t, "no receipt", e.RejectionReason)
	assert.Equal(t, common_models.StepStatusRejected, e.Workflow.Steps[0].Status)
	require.Len(t, e.Comments, 1)
	assert.Equal(t, "no receipt", e.Comments[0].Text)
	// second step never became decidable
	assert.Equal(t, common_models.StepStatusPending, e.Workflow.Steps[1].Status)
	assert.Equal(t, 0, e.Workflow.CurrentStep)

	// no further decisions accepted
	err = ApplyDecision(e, Decision{ApproverID: second, Approve: true}, time.Now())
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestApplyDecisionNonDesignatedApprover(t *testing.T) {
	approver := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	e := pendingExpense(approver)

	err := ApplyDecision(e, Decision{ApproverID: stranger, Approve: true}, time.Now())
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	assert.Equal(t, common_models.ExpenseStatusPending, e.Status)
	assert.Equal(t, 0, e.Workflow.CurrentStep)
}

func TestApplyDecisionOutOfOrderApprover(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	e := pendingExpense(first, second)

	// the second approver cannot act before the first
	err := ApplyDecision(e, Decision{ApproverID: second, Approve: true}, time.Now())
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
}

func TestApplyDecisionDoubleDecision(t *testing.T) {
	approver := primitive.NewObjectID()
	e := pendingExpense(approver)

	require.NoError(t, ApplyDecision(e, Decision{ApproverID: approver, Approve: true}, time.Now()))

	err := ApplyDecision(e, Decision{ApproverID: approver, Approve: true}, time.Now())
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestApplyDecisionTerminalStates(t *testing.T) {
	approver := primitive.NewObjectID()
	for _, status := range []common_models.ExpenseStatus{
		common_models.ExpenseStatusApproved,
		common_models.ExpenseStatusRejected,
		common_models.ExpenseStatusPaid,
	} {
		e := pendingExpense(approver)
		e.Status = status
		err := ApplyDecision(e, Decision{ApproverID: approver, Approve: true}, time.Now())
		assert.ErrorIs(t, err, apperr.ErrInvalidState, string(status))
	}
}

func TestApplyDecisionGroupMembership(t *testing.T) {
	memberA := primitive.NewObjectID()
	memberB := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	e := pendingExpense(primitive.NewObjectID())
	e.Workflow.Steps[0] = StepInstance{
		StepNumber:    0,
		ApproverType:  common_models.ApproverTypeRoleBased,
		ApproverGroup: []primitive.ObjectID{memberA, memberB},
		Status:        common_models.StepStatusPending,
	}

	err := ApplyDecision(e, Decision{ApproverID: outsider, Approve: true}, time.Now())
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)

	require.NoError(t, ApplyDecision(e, Decision{ApproverID: memberB, Approve: true}, time.Now()))
	assert.Equal(t, common_models.ExpenseStatusApproved, e.Status)
}

func TestMarkPaid(t *testing.T) {
	approver := primitive.NewObjectID()
	e := pendingExpense(approver)
	now := time.Now()

	// pending expenses cannot be paid
	assert.ErrorIs(t, MarkPaid(e, now), apperr.ErrInvalidState)

	require.NoError(t, ApplyDecision(e, Decision{ApproverID: approver, Approve: true}, now))
	require.NoError(t, MarkPaid(e, now))
	assert.Equal(t, common_models.ExpenseStatusPaid, e.Status)
	require.NotNil(t, e.PaidAt)

	// paid is terminal
	assert.ErrorIs(t, MarkPaid(e, now), apperr.ErrInvalidState)
}
