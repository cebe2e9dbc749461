package services

import "github.com/snapexpense/snap_expense_app/internal/core/domain"

// MatchingSvc scores how well a receipt corresponds to candidate expenses.
// Pure and deterministic: same inputs, same ranking.
type MatchingSvc interface {
	// FindCandidates returns the top candidates ranked by score, best first.
	FindCandidates(signal domain.ReceiptSignal, candidates []domain.ExpenseCandidate, rules domain.MatchRules) []domain.MatchCandidate
}
