package reconcile_test

import (
	"testing"
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	"github.com/snapexpense/snap_expense_app/internal/utils/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestGroupReceiptsByExpense(t *testing.T) {
	now := time.Now()
	receipts := []domain.Receipt{
		{ReceiptID: "r1", MatchedExpenseID: strPtr("e1")},
		{ReceiptID: "r2", MatchedExpenseID: strPtr("e1")},
		{ReceiptID: "r3", MatchedExpenseID: strPtr("e2")},
		{ReceiptID: "r4"}, // unlinked
		{ReceiptID: "r5", MatchedExpenseID: strPtr("e1"), DeletedAt: &now}, // soft-deleted
		{ReceiptID: "r6", MatchedExpenseID: strPtr("")},                    // empty link
	}

	grouped := reconcile.GroupReceiptsByExpense(receipts)

	assert.Len(t, grouped, 2)
	assert.Len(t, grouped["e1"], 2)
	assert.Equal(t, "r1", grouped["e1"][0].ReceiptID)
	assert.Equal(t, "r2", grouped["e1"][1].ReceiptID)
	assert.Len(t, grouped["e2"], 1)
}

func TestAmountMismatch(t *testing.T) {
	expense := domain.Expense{ExpenseID: "e1", Amount: decimal.RequireFromString("95.00")}

	tests := []struct {
		name    string
		receipt domain.Receipt
		want    bool
	}{
		{"differing amount", domain.Receipt{Amount: decPtr("100.00")}, true},
		{"equal amount", domain.Receipt{Amount: decPtr("95.00")}, false},
		{"equal amount different scale", domain.Receipt{Amount: decPtr("95")}, false},
		{"no recorded amount", domain.Receipt{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconcile.AmountMismatch(expense, tt.receipt))
		})
	}
}

func TestDuplicateHashGroups(t *testing.T) {
	receipts := []domain.Receipt{
		{ReceiptID: "r1", Hash: strPtr("abc")},
		{ReceiptID: "r2", Hash: strPtr("abc")},
		{ReceiptID: "r3", Hash: strPtr("def")},
		{ReceiptID: "r4"}, // no hash
	}

	groups := reconcile.DuplicateHashGroups(receipts)

	assert.Len(t, groups, 1)
	assert.Len(t, groups["abc"], 2)
	assert.Equal(t, "r1", groups["abc"][0].ReceiptID)
}
