package reconcile

import (
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// GroupReceiptsByExpense groups receipts by their matched expense ID.
// This is the single grouping implementation shared by the batch checker and
// the export pipeline so the two can never diverge on how the
// receipt-to-expense relationship is read. Unlinked and soft-deleted
// receipts are skipped.
func GroupReceiptsByExpense(receipts []domain.Receipt) map[string][]domain.Receipt {
	grouped := make(map[string][]domain.Receipt)
	for _, r := range receipts {
		if r.DeletedAt != nil || r.MatchedExpenseID == nil || *r.MatchedExpenseID == "" {
			continue
		}
		grouped[*r.MatchedExpenseID] = append(grouped[*r.MatchedExpenseID], r)
	}
	return grouped
}

// AmountMismatch reports whether a receipt's recorded amount differs
// numerically from the expense amount. Receipts without a recorded amount
// never mismatch.
func AmountMismatch(expense domain.Expense, receipt domain.Receipt) bool {
	if receipt.Amount == nil {
		return false
	}
	return !receipt.Amount.Equal(expense.Amount)
}

// DuplicateHashGroups groups the given receipts by content hash and returns
// only the groups with two or more members. Receipts without a hash are
// ignored. Group membership preserves input order.
func DuplicateHashGroups(receipts []domain.Receipt) map[string][]domain.Receipt {
	byHash := make(map[string][]domain.Receipt)
	for _, r := range receipts {
		if r.Hash == nil || *r.Hash == "" {
			continue
		}
		byHash[*r.Hash] = append(byHash[*r.Hash], r)
	}
	for hash, group := range byHash {
		if len(group) < 2 {
			delete(byHash, hash)
		}
	}
	return byHash
}
