package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
)

// maxSuggestions caps how many candidates a suggestion call returns.
const maxSuggestions = 3

// matchingService scores receipt-to-expense pairings. It is a pure function
// of its inputs: no store access, no randomness, no process-wide state.
type matchingService struct {
	// now is injected so date-less receipts score deterministically in tests.
	now func() time.Time
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService() portssvc.MatchingSvc {
	return &matchingService{now: time.Now}
}

// NewMatchingServiceWithClock creates a MatchingService with a fixed clock.
func NewMatchingServiceWithClock(now func() time.Time) portssvc.MatchingSvc {
	return &matchingService{now: now}
}

var _ portssvc.MatchingSvc = (*matchingService)(nil)

type scoredCandidate struct {
	domain.MatchCandidate
	score int
}

// FindCandidates returns the top candidates ranked by score, best first.
func (s *matchingService) FindCandidates(signal domain.ReceiptSignal, candidates []domain.ExpenseCandidate, rules domain.MatchRules) []domain.MatchCandidate {
	mediumWindow := rules.DateWindowDays
	if mediumWindow <= 0 {
		mediumWindow = 3
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, cand := range candidates {
		// Hard filter on amount. A receipt without a recorded amount never
		// excludes a candidate.
		if signal.Amount != nil {
			diff := signal.Amount.Sub(cand.Amount).Abs()
			if diff.GreaterThan(rules.AmountTolerance) {
				continue
			}
		}

		dayDiff := s.dayDiff(signal.Date, cand.Date)
		categoryMatch := !rules.RequireCategoryMatch ||
			signal.Category == "" || cand.Category == "" ||
			signal.Category == cand.Category

		confidence := domain.ConfidenceLow
		switch {
		case dayDiff <= 1 && categoryMatch:
			confidence = domain.ConfidenceHigh
		case dayDiff <= mediumWindow:
			confidence = domain.ConfidenceMedium
		}

		score := 10 - minInt(dayDiff, 10)
		if categoryMatch {
			score += 2
		}

		scored = append(scored, scoredCandidate{
			MatchCandidate: domain.MatchCandidate{
				ExpenseID:  cand.ID,
				Confidence: confidence,
				Reason:     matchReason(dayDiff, categoryMatch),
			},
			score: score,
		})
	}

	// Stable sort keeps input order among equal scores, so the ranking is
	// fully determined by the inputs.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > maxSuggestions {
		scored = scored[:maxSuggestions]
	}
	result := make([]domain.MatchCandidate, len(scored))
	for i, sc := range scored {
		result[i] = sc.MatchCandidate
	}
	return result
}

// dayDiff is the absolute calendar-day difference between the receipt date
// and the expense date. A missing receipt date is compared as "today", so
// legitimate date-less receipts can score low for old expenses.
func (s *matchingService) dayDiff(receiptDate *time.Time, expenseDate time.Time) int {
	rd := s.now()
	if receiptDate != nil {
		rd = *receiptDate
	}
	a := time.Date(rd.Year(), rd.Month(), rd.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(expenseDate.Year(), expenseDate.Month(), expenseDate.Day(), 0, 0, 0, 0, time.UTC)
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

func matchReason(dayDiff int, categoryMatch bool) string {
	var reason string
	switch dayDiff {
	case 0:
		reason = "same day"
	case 1:
		reason = "1 day apart"
	default:
		reason = fmt.Sprintf("%d days apart", dayDiff)
	}
	if categoryMatch {
		reason += ", category match"
	}
	return reason
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
