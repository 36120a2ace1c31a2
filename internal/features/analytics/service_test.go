package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestCategory(t *testing.T) {
	s := &AnalyticsServiceImpl{}

	cases := map[string]string{
		"Flight to Berlin for the summit":  "Travel",
		"Team lunch at the italian place":  "Meals",
		"Hotel, 3 nights":                  "Accommodation",
		"Uber from the airport":            "Transportation",
		"Annual SaaS subscription renewal": "Software",
		"Conference registration fee":      "Training",
		"LinkedIn ads campaign":            "Marketing",
		"something entirely unclear":       "Other",
	}

	for description, want := range cases {
		got := s.SuggestCategory(description)
		assert.Equal(t, want, got.Category, description)
	}
}

func TestSuggestCategoryCaseInsensitive(t *testing.T) {
	s := &AnalyticsServiceImpl{}

	assert.Equal(t, "Travel", s.SuggestCategory("FLIGHT refund").Category)
	assert.Equal(t, "Meals", s.SuggestCategory("Dinner With Client").Category)
}

func TestSuggestCategoryConfidence(t *testing.T) {
	s := &AnalyticsServiceImpl{}

	matched := s.SuggestCategory("taxi downtown")
	assert.Equal(t, "taxi", matched.Keyword)
	assert.Greater(t, matched.Confidence, 0.5)

	fallback := s.SuggestCategory("miscellaneous")
	assert.Empty(t, fallback.Keyword)
	assert.Less(t, fallback.Confidence, 0.5)
}
