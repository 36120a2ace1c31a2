package rule

import (
	"sort"

	common_models "go-expense/internal/common/models"
)

// Matches reports whether a single rule applies to an expense. The amount
// range is inclusive on both ends; empty category/role sets match anything.
func Matches(r *ApprovalRule, convertedAmount float64, category string, employeeRole common_models.Role) bool {
	if !r.IsActive {
		return false
	}
	if convertedAmount < r.Conditions.AmountMin || convertedAmount > r.Conditions.AmountMax {
		return false
	}
	if len(r.Conditions.Categories) > 0 && !containsString(r.Conditions.Categories, category) {
		return false
	}
	if len(r.Conditions.EmployeeRoles) > 0 && !containsRole(r.Conditions.EmployeeRoles, employeeRole) {
		return false
	}
	return true
}

// SelectApplicable picks the single winning rule from a candidate set that
// is ordered by insertion (creation) order. The winner is the matching rule
// with the numerically highest priority; among equal priorities the
// earlier-inserted rule wins. The stable sort keeps the input order within
// each priority, so repeated calls always return the same rule.
func SelectApplicable(rules []ApprovalRule, convertedAmount float64, category string, employeeRole common_models.Role) *ApprovalRule {
	if len(rules) == 0 {
		return nil
	}

	ordered := make([]ApprovalRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	for i := range ordered {
		if Matches(&ordered[i], convertedAmount, category, employeeRole) {
			return &ordered[i]
		}
	}
	return nil
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsRole(set []common_models.Role, v common_models.Role) bool {
	for _, r := range set {
		if r == v {
			return true
		}
	}
	return false
}
