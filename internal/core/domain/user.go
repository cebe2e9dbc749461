package domain

import "github.com/shopspring/decimal"

// User represents an application user who owns projects, expenses and receipts.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	AuditFields
}

// UserSettings holds the per-user matching rules and export template flags.
// Every user has exactly one settings row; absent rows read as the defaults.
type UserSettings struct {
	UserID string `json:"userID"`

	// Matching rules
	DateWindowDays       int             `json:"dateWindowDays"`
	AmountTolerance      decimal.Decimal `json:"amountTolerance"`
	RequireCategoryMatch bool            `json:"requireCategoryMatch"`

	// Export template
	SortDescending          bool `json:"sortDescending"`
	IncludeMerchantKeywords bool `json:"includeMerchantKeywords"`
	IncludeExpenseID        bool `json:"includeExpenseID"`
	IncludeReceiptIDs       bool `json:"includeReceiptIDs"`

	AuditFields
}

// MatchRules returns the matching rules portion of the settings.
func (s UserSettings) MatchRules() MatchRules {
	return MatchRules{
		DateWindowDays:       s.DateWindowDays,
		AmountTolerance:      s.AmountTolerance,
		RequireCategoryMatch: s.RequireCategoryMatch,
	}
}

// DefaultUserSettings returns the settings applied before a user customizes anything.
func DefaultUserSettings(userID string) UserSettings {
	return UserSettings{
		UserID:          userID,
		DateWindowDays:  3,
		AmountTolerance: decimal.Zero,
	}
}
