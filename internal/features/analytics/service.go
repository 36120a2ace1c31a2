package analytics

import (
	"context"
	"strings"
	"time"

	common_models "go-expense/internal/common/models"
	"go-expense/internal/features/expense"
	"go-expense/internal/features/rule"
	"go-expense/internal/features/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// categoryKeywords maps description keywords to expense categories for the
// suggestion endpoint. First match wins, scanning in listed order.
var categoryKeywords = []struct {
	Category string
	Words    []string
}{
	{"Travel", []string{"flight", "airline", "airfare", "train ticket", "visa"}},
	{"Meals", []string{"lunch", "dinner", "breakfast", "restaurant", "coffee", "food"}},
	{"Accommodation", []string{"hotel", "airbnb", "lodging", "motel", "hostel"}},
	{"Transportation", []string{"taxi", "uber", "lyft", "parking", "fuel", "gas", "toll", "metro", "bus"}},
	{"Office Supplies", []string{"stationery", "printer", "paper", "pens", "office"}},
	{"Software", []string{"license", "subscription", "saas", "software", "cloud"}},
	{"Training", []string{"course", "conference", "workshop", "certification", "training", "seminar"}},
	{"Marketing", []string{"ads", "advertising", "campaign", "promotion", "sponsorship"}},
	{"Entertainment", []string{"client dinner", "team event", "tickets", "entertainment"}},
	{"Healthcare", []string{"medical", "pharmacy", "doctor", "health"}},
}

// Suggestion is a category guess with the keyword that produced it.
type Suggestion struct {
	Category   string  `json:"category"`
	Keyword    string  `json:"keyword,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Insight is a human-readable observation about spending patterns.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AdminStats summarizes a company for the admin dashboard.
type AdminStats struct {
	TotalUsers      int64                                 `json:"totalUsers"`
	ActiveUsers     int64                                 `json:"activeUsers"`
	UsersByRole     map[common_models.Role]int64          `json:"usersByRole"`
	ExpensesByState map[common_models.ExpenseStatus]int64 `json:"expensesByState"`
	ApprovalRules   int64                                 `json:"approvalRules"`
	TopCategories   []expense.CategoryTotal               `json:"topCategories"`
}

type AnalyticsService interface {
	// SuggestCategory guesses a category from a free-text description.
	SuggestCategory(description string) Suggestion
	Insights(ctx context.Context, companyID, userID primitive.ObjectID) ([]Insight, error)
	Stats(ctx context.Context, companyID primitive.ObjectID) (*AdminStats, error)
}

type AnalyticsServiceImpl struct {
	Expenses expense.ExpenseRepository
	Users    user.UserRepository
	Rules    rule.RuleRepository
}

func NewAnalyticsService(expenses expense.ExpenseRepository, users user.UserRepository, rules rule.RuleRepository) AnalyticsService {
	return &AnalyticsServiceImpl{Expenses: expenses, Users: users, Rules: rules}
}

func (s *AnalyticsServiceImpl) SuggestCategory(description string) Suggestion {
	lower := strings.ToLower(description)
	for _, entry := range categoryKeywords {
		for _, word := range entry.Words {
			if strings.Contains(lower, word) {
				return Suggestion{Category: entry.Category, Keyword: word, Confidence: 0.8}
			}
		}
	}
	return Suggestion{Category: "Other", Confidence: 0.3}
}

func (s *AnalyticsServiceImpl) Insights(ctx context.Context, companyID, userID primitive.ObjectID) ([]Insight, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevStart := monthStart.AddDate(0, -1, 0)

	current, err := s.Expenses.SummaryByCategory(ctx, companyID, &userID, &monthStart, &now)
	if err != nil {
		return nil, err
	}
	previous, err := s.Expenses.SummaryByCategory(ctx, companyID, &userID, &prevStart, &monthStart)
	if err != nil {
		return nil, err
	}

	prevTotals := make(map[string]float64, len(previous))
	var prevSum float64
	for _, row := range previous {
		prevTotals[row.Category] = row.Total
		prevSum += row.Total
	}
	var currSum float64
	for _, row := range current {
		currSum += row.Total
	}

	insights := make([]Insight, 0)
	if len(current) > 0 {
		top := current[0]
		insights = append(insights, Insight{
			Type:    "top_category",
			Message: "Most spending this month is on " + top.Category,
		})
	}
	if prevSum > 0 && currSum > prevSum*1.5 {
		insights = append(insights, Insight{
			Type:    "spending_spike",
			Message: "Spending this month is more than 50% above last month",
		})
	}
	for _, row := range current {
		if prev, ok := prevTotals[row.Category]; ok && prev > 0 && row.Total > prev*2 {
			insights = append(insights, Insight{
				Type:    "category_increase",
				Message: row.Category + " spending more than doubled compared to last month",
			})
		}
	}
	if len(insights) == 0 {
		insights = append(insights, Insight{
			Type:    "steady",
			Message: "Spending is in line with last month",
		})
	}
	return insights, nil
}

func (s *AnalyticsServiceImpl) Stats(ctx context.Context, companyID primitive.ObjectID) (*AdminStats, error) {
	total, err := s.Users.CountByCompany(ctx, companyID, false)
	if err != nil {
		return nil, err
	}
	active, err := s.Users.CountByCompany(ctx, companyID, true)
	if err != nil {
		return nil, err
	}
	byRole, err := s.Users.CountByRole(ctx, companyID)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.Expenses.CountByStatus(ctx, companyID)
	if err != nil {
		return nil, err
	}
	ruleCount, err := s.Rules.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	topCategories, err := s.Expenses.SummaryByCategory(ctx, companyID, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(topCategories) > 5 {
		topCategories = topCategories[:5]
	}

	return &AdminStats{
		TotalUsers:      total,
		ActiveUsers:     active,
		UsersByRole:     byRole,
		ExpensesByState: byStatus,
		ApprovalRules:   ruleCount,
		TopCategories:   topCategories,
	}, nil
}
