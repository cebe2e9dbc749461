package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	"github.com/snapexpense/snap_expense_app/internal/core/services"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func datePtr(s string) *time.Time {
	t := day(s)
	return &t
}

func fixedClock(s string) func() time.Time {
	return func() time.Time { return day(s) }
}

func TestFindCandidates_AmountToleranceIsHardFilter(t *testing.T) {
	svc := services.NewMatchingService()
	rules := domain.MatchRules{AmountTolerance: dec("0.50"), DateWindowDays: 3}

	signal := domain.ReceiptSignal{Amount: decPtr("100.00"), Date: datePtr("2025-03-10")}
	candidates := []domain.ExpenseCandidate{
		{ID: "exact", Amount: dec("100.00"), Date: day("2025-03-10")},
		{ID: "on-boundary", Amount: dec("100.50"), Date: day("2025-03-10")},
		{ID: "just-outside", Amount: dec("100.51"), Date: day("2025-03-10")},
	}

	got := svc.FindCandidates(signal, candidates, rules)

	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.ExpenseID
	}
	// The boundary is inclusive; one cent past it is excluded.
	assert.Contains(t, ids, "exact")
	assert.Contains(t, ids, "on-boundary")
	assert.NotContains(t, ids, "just-outside")
}

func TestFindCandidates_ReceiptWithoutAmountNeverFilters(t *testing.T) {
	svc := services.NewMatchingService()
	rules := domain.MatchRules{AmountTolerance: decimal.Zero, DateWindowDays: 3}

	signal := domain.ReceiptSignal{Date: datePtr("2025-03-10")}
	candidates := []domain.ExpenseCandidate{
		{ID: "a", Amount: dec("9999.99"), Date: day("2025-03-10")},
	}

	got := svc.FindCandidates(signal, candidates, rules)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ExpenseID)
}

func TestFindCandidates_ConfidenceTiers(t *testing.T) {
	svc := services.NewMatchingService()
	rules := domain.MatchRules{AmountTolerance: dec("1.00"), DateWindowDays: 3}

	signal := domain.ReceiptSignal{
		Amount:   decPtr("50.00"),
		Date:     datePtr("2025-03-10"),
		Category: "travel",
	}
	candidates := []domain.ExpenseCandidate{
		{ID: "same-day", Amount: dec("50.00"), Date: day("2025-03-10"), Category: "travel"},
		{ID: "two-days", Amount: dec("50.00"), Date: day("2025-03-12"), Category: "travel"},
		{ID: "far-away", Amount: dec("50.00"), Date: day("2025-03-25"), Category: "travel"},
	}

	got := svc.FindCandidates(signal, candidates, rules)
	require.Len(t, got, 3)

	byID := map[string]domain.MatchCandidate{}
	for _, c := range got {
		byID[c.ExpenseID] = c
	}
	assert.Equal(t, domain.ConfidenceHigh, byID["same-day"].Confidence)
	assert.Equal(t, domain.ConfidenceMedium, byID["two-days"].Confidence)
	assert.Equal(t, domain.ConfidenceLow, byID["far-away"].Confidence)
}

func TestFindCandidates_RankingPrefersCloserDates(t *testing.T) {
	svc := services.NewMatchingService()
	rules := domain.MatchRules{AmountTolerance: dec("1.00"), DateWindowDays: 3}

	signal := domain.ReceiptSignal{Amount: decPtr("50.00"), Date: datePtr("2025-03-10"), Category: "meals"}
	candidates := []domain.ExpenseCandidate{
		{ID: "five-off", Amount: dec("50.00"), Date: day("2025-03-15"), Category: "meals"},
		{ID: "same-day", Amount: dec("50.00"), Date: day("2025-03-10"), Category: "meals"},
		{ID: "one-off", Amount: dec("50.00"), Date: day("2025-03-09"), Category: "meals"},
	}

	got := svc.FindCandidates(signal, candidates, rules)
	require.Len(t, got, 3)
	assert.Equal(t, "same-day", got[0].ExpenseID)
	assert.Equal(t, "one-off", got[1].ExpenseID)
	assert.Equal(t, "five-off", got[2].ExpenseID)
}

func TestFindCandidates_CapsAtThreeSuggestions(t *testing.T) {
	svc := services.NewMatchingService()
	rules := domain.MatchRules{AmountTolerance: dec("1.00"), DateWindowDays: 3}

	signal := domain.ReceiptSignal{Amount: decPtr("10.00"), Date: datePtr("2025-03-10")}
	var candidates []domain.ExpenseCandidate
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		candidates = append(candidates, domain.ExpenseCandidate{
			ID: id, Amount: dec("10.00"), Date: day("2025-03-10"),
		})
	}

	got := svc.FindCandidates(signal, candidates, rules)
	assert.Len(t, got, 3)
}

func TestFindCandidates_Deterministic(t *testing.T) {
	svc := services.NewMatchingService()
	rules := domain.MatchRules{AmountTolerance: dec("1.00"), DateWindowDays: 3}

	signal := domain.ReceiptSignal{Amount: decPtr("20.00"), Date: datePtr("2025-06-01")}
	candidates := []domain.ExpenseCandidate{
		{ID: "x", Amount: dec("20.00"), Date: day("2025-06-01")},
		{ID: "y", Amount: dec("20.00"), Date: day("2025-06-01")},
		{ID: "z", Amount: dec("20.00"), Date: day("2025-06-02")},
	}

	first := svc.FindCandidates(signal, candidates, rules)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, svc.FindCandidates(signal, candidates, rules))
	}
	// Equal scores keep input order.
	require.Len(t, first, 3)
	assert.Equal(t, "x", first[0].ExpenseID)
	assert.Equal(t, "y", first[1].ExpenseID)
}

func TestFindCandidates_MissingReceiptDateUsesToday(t *testing.T) {
	svc := services.NewMatchingServiceWithClock(fixedClock("2025-03-10"))
	rules := domain.MatchRules{AmountTolerance: dec("1.00"), DateWindowDays: 3}

	signal := domain.ReceiptSignal{Amount: decPtr("30.00")}
	candidates := []domain.ExpenseCandidate{
		{ID: "today", Amount: dec("30.00"), Date: day("2025-03-10")},
		{ID: "last-week", Amount: dec("30.00"), Date: day("2025-03-03")},
	}

	got := svc.FindCandidates(signal, candidates, rules)
	require.Len(t, got, 2)
	assert.Equal(t, "today", got[0].ExpenseID)
	assert.Equal(t, domain.ConfidenceHigh, got[0].Confidence)
	assert.Equal(t, domain.ConfidenceLow, got[1].Confidence)
}

func TestFindCandidates_RequireCategoryMatch(t *testing.T) {
	svc := services.NewMatchingService()
	rules := domain.MatchRules{
		AmountTolerance:      dec("1.00"),
		DateWindowDays:       3,
		RequireCategoryMatch: true,
	}

	signal := domain.ReceiptSignal{Amount: decPtr("40.00"), Date: datePtr("2025-03-10"), Category: "travel"}
	candidates := []domain.ExpenseCandidate{
		{ID: "match", Amount: dec("40.00"), Date: day("2025-03-10"), Category: "travel"},
		{ID: "other", Amount: dec("40.00"), Date: day("2025-03-10"), Category: "meals"},
	}

	got := svc.FindCandidates(signal, candidates, rules)
	require.Len(t, got, 2)
	// The category mismatch drops the candidate out of the high tier and
	// behind the matching one, but does not exclude it.
	assert.Equal(t, "match", got[0].ExpenseID)
	assert.Equal(t, domain.ConfidenceHigh, got[0].Confidence)
	assert.Equal(t, "other", got[1].ExpenseID)
	assert.Equal(t, domain.ConfidenceMedium, got[1].Confidence)
}
