package expense

import (
	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/features/rule"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAutoApproveCeiling is the fallback auto-approval limit applied
// when no rule matches and the employee has no manager.
const DefaultAutoApproveCeiling = 50.0

// CanAutoApprove evaluates a rule's auto-approval gates as a conjunction:
// every configured gate must pass, and empty gates pass by default.
func CanAutoApprove(r *rule.ApprovalRule, convertedAmount float64, category string, employeeID primitive.ObjectID, isRecurring bool) bool {
	aa := r.AutoApproval
	if !aa.Enabled {
		return false
	}
	if convertedAmount > aa.MaxAmount {
		return false
	}
	if len(aa.Categories) > 0 && !containsString(aa.Categories, category) {
		return false
	}
	if len(aa.TrustedEmployees) > 0 && !containsID(aa.TrustedEmployees, employeeID) {
		return false
	}
	if aa.RecurringOnly && !isRecurring {
		return false
	}
	return true
}

// BuildInput carries the pre-resolved org data the builder needs: the
// employee's manager (nil when unassigned) and the members of every role
// referenced by the rule's role_based steps.
type BuildInput struct {
	Rule            *rule.ApprovalRule
	EmployeeID      primitive.ObjectID
	ManagerID       *primitive.ObjectID
	RoleMembers     map[common_models.Role][]primitive.ObjectID
	ConvertedAmount float64
	Category        string
	IsRecurring     bool
}

// BuildResult is the materialized workflow. AutoApproved means the expense
// skips approval entirely and no steps were produced.
type BuildResult struct {
	AutoApproved     bool
	Steps            []StepInstance
	AppliedRule      *primitive.ObjectID
	ConditionalRules *rule.ConditionalRules
}

// BuildWorkflow materializes the approval path for a submission. A matching
// rule drives it: auto-approval gates short-circuit, otherwise its step
// templates are resolved against the org chart, with a manager step
// prepended when the rule demands one. Templates that cannot be resolved
// (no manager, no such users) are dropped. Without a rule, or when a rule
// yields no resolvable steps, the default policy applies: route to the
// manager, auto-approve small amounts, otherwise fail with
// ErrNoApprovalPath.
func BuildWorkflow(in BuildInput) (*BuildResult, error) {
	if in.Rule != nil {
		if CanAutoApprove(in.Rule, in.ConvertedAmount, in.Category, in.EmployeeID, in.IsRecurring) {
			return &BuildResult{AutoApproved: true, AppliedRule: &in.Rule.ID}, nil
		}

		steps := make([]StepInstance, 0, len(in.Rule.ApprovalFlow.Steps)+1)
		if in.Rule.ApprovalFlow.RequireManagerApproval && in.ManagerID != nil {
			steps = append(steps, StepInstance{
				Name:         "Manager approval",
				ApproverType: common_models.ApproverTypeManager,
				Approver:     in.ManagerID,
				Status:       common_models.StepStatusPending,
			})
		}
		for _, tmpl := range in.Rule.ApprovalFlow.Steps {
			if step, ok := resolveTemplate(tmpl, in); ok {
				steps = append(steps, step)
			}
		}

		if len(steps) > 0 {
			// step numbers are zero-based so steps[CurrentStep].StepNumber == CurrentStep
			for i := range steps {
				steps[i].StepNumber = i
			}
			return &BuildResult{
				Steps:            steps,
				AppliedRule:      &in.Rule.ID,
				ConditionalRules: in.Rule.ApprovalFlow.ConditionalRules,
			}, nil
		}
		// rule produced nothing usable, fall back to the default policy
	}

	if in.ManagerID != nil {
		return &BuildResult{
			Steps: []StepInstance{{
				StepNumber:   0,
				Name:         "Manager approval",
				ApproverType: common_models.ApproverTypeManager,
				Approver:     in.ManagerID,
				Status:       common_models.StepStatusPending,
			}},
		}, nil
	}
	if in.ConvertedAmount <= DefaultAutoApproveCeiling {
		return &BuildResult{AutoApproved: true}, nil
	}
	return nil, apperr.ErrNoApprovalPath
}

func resolveTemplate(tmpl rule.StepTemplate, in BuildInput) (StepInstance, bool) {
	step := StepInstance{
		Name:         tmpl.Name,
		ApproverType: tmpl.ApproverType,
		Status:       common_models.StepStatusPending,
	}

	switch tmpl.ApproverType {
	case common_models.ApproverTypeManager, common_models.ApproverTypeDepartmentHead:
		if in.ManagerID == nil {
			return StepInstance{}, false
		}
		step.Approver = in.ManagerID
	case common_models.ApproverTypeSpecificUser:
		if len(tmpl.Approvers) == 0 {
			return StepInstance{}, false
		}
		approver := tmpl.Approvers[0]
		step.Approver = &approver
	case common_models.ApproverTypeRoleBased:
		members := in.RoleMembers[tmpl.RequiredRole]
		if len(members) == 0 {
			return StepInstance{}, false
		}
		step.ApproverGroup = members
	case common_models.ApproverTypeAnyFromGroup:
		if len(tmpl.Approvers) == 0 {
			return StepInstance{}, false
		}
		step.ApproverGroup = tmpl.Approvers
	default:
		return StepInstance{}, false
	}
	return step, true
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsID(set []primitive.ObjectID, v primitive.ObjectID) bool {
	for _, id := range set {
		if id == v {
			return true
		}
	}
	return false
}
