package rule

import (
	"testing"

	common_models "go-expense/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeRule(name string, priority int, min, max float64) ApprovalRule {
	return ApprovalRule{
		Name:       name,
		IsActive:   true,
		Priority:   priority,
		Conditions: RuleConditions{AmountMin: min, AmountMax: max},
	}
}

func TestMatchesAmountBoundsInclusive(t *testing.T) {
	r := activeRule("range", 1, 50, 500)

	assert.True(t, Matches(&r, 50, "Travel", common_models.RoleEmployee))
	assert.True(t, Matches(&r, 500, "Travel", common_models.RoleEmployee))
	assert.False(t, Matches(&r, 49.99, "Travel", common_models.RoleEmployee))
	assert.False(t, Matches(&r, 500.01, "Travel", common_models.RoleEmployee))
}

func TestMatchesEmptySetsMatchAnything(t *testing.T) {
	r := activeRule("open", 1, 0, 1000)

	for _, cat := range common_models.ExpenseCategories {
		assert.True(t, Matches(&r, 100, cat, common_models.RoleEmployee), cat)
	}
	assert.True(t, Matches(&r, 100, "Travel", common_models.RoleAdmin))
}

func TestMatchesCategoryAndRoleSets(t *testing.T) {
	r := activeRule("travel-managers", 1, 0, 1000)
	r.Conditions.Categories = []string{"Travel", "Accommodation"}
	r.Conditions.EmployeeRoles = []common_models.Role{common_models.RoleManager}

	assert.True(t, Matches(&r, 100, "Travel", common_models.RoleManager))
	assert.False(t, Matches(&r, 100, "Meals", common_models.RoleManager))
	assert.False(t, Matches(&r, 100, "Travel", common_models.RoleEmployee))
}

func TestMatchesInactiveRule(t *testing.T) {
	r := activeRule("off", 1, 0, 1000)
	r.IsActive = false

	assert.False(t, Matches(&r, 100, "Travel", common_models.RoleEmployee))
}

func TestSelectApplicableHighestPriorityWins(t *testing.T) {
	rules := []ApprovalRule{
		activeRule("low", 5, 0, 1000),
		activeRule("high", 10, 0, 1000),
	}

	winner := SelectApplicable(rules, 100, "Travel", common_models.RoleEmployee)
	require.NotNil(t, winner)
	assert.Equal(t, "high", winner.Name)
}

func TestSelectApplicableTieBreaksOnInsertionOrder(t *testing.T) {
	rules := []ApprovalRule{
		activeRule("first", 5, 0, 1000),
		activeRule("second", 5, 0, 1000),
		activeRule("third", 5, 0, 1000),
	}

	winner := SelectApplicable(rules, 100, "Travel", common_models.RoleEmployee)
	require.NotNil(t, winner)
	assert.Equal(t, "first", winner.Name)
}

func TestSelectApplicableSkipsNonMatching(t *testing.T) {
	high := activeRule("high-but-narrow", 10, 0, 1000)
	high.Conditions.Categories = []string{"Software"}
	rules := []ApprovalRule{
		activeRule("fallback", 1, 0, 1000),
		high,
	}

	winner := SelectApplicable(rules, 100, "Travel", common_models.RoleEmployee)
	require.NotNil(t, winner)
	assert.Equal(t, "fallback", winner.Name)
}

func TestSelectApplicableNoMatch(t *testing.T) {
	rules := []ApprovalRule{
		activeRule("small-only", 1, 0, 50),
	}

	assert.Nil(t, SelectApplicable(rules, 5000, "Travel", common_models.RoleEmployee))
	assert.Nil(t, SelectApplicable(nil, 100, "Travel", common_models.RoleEmployee))
}

func TestSelectApplicableDeterministic(t *testing.T) {
	rules := []ApprovalRule{
		activeRule("a", 3, 0, 1000),
		activeRule("b", 7, 0, 1000),
		activeRule("c", 7, 0, 1000),
		activeRule("d", 1, 0, 1000),
	}

	first := SelectApplicable(rules, 250, "Meals", common_models.RoleEmployee)
	require.NotNil(t, first)
	for i := 0; i < 50; i++ {
		again := SelectApplicable(rules, 250, "Meals", common_models.RoleEmployee)
		require.NotNil(t, again)
		assert.Equal(t, first.Name, again.Name)
	}
	assert.Equal(t, "b", first.Name)

	// input slice untouched
	assert.Equal(t, "a", rules[0].Name)
	assert.Equal(t, "d", rules[3].Name)
}
