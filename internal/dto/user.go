package dto

import (
	"time"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RegisterUserRequest defines the data needed to create a new user.
type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID    string    `json:"userID"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// UpdateSettingsRequest defines the data allowed for updating user settings.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateSettingsRequest struct {
	DateWindowDays       *int             `json:"dateWindowDays" binding:"omitempty,min=0,max=365"`
	AmountTolerance      *decimal.Decimal `json:"amountTolerance"`
	RequireCategoryMatch *bool            `json:"requireCategoryMatch"`

	SortDescending          *bool `json:"sortDescending"`
	IncludeMerchantKeywords *bool `json:"includeMerchantKeywords"`
	IncludeExpenseID        *bool `json:"includeExpenseID"`
	IncludeReceiptIDs       *bool `json:"includeReceiptIDs"`
}

// SettingsResponse defines the data returned for user settings.
type SettingsResponse struct {
	DateWindowDays          int             `json:"dateWindowDays"`
	AmountTolerance         decimal.Decimal `json:"amountTolerance"`
	RequireCategoryMatch    bool            `json:"requireCategoryMatch"`
	SortDescending          bool            `json:"sortDescending"`
	IncludeMerchantKeywords bool            `json:"includeMerchantKeywords"`
	IncludeExpenseID        bool            `json:"includeExpenseID"`
	IncludeReceiptIDs       bool            `json:"includeReceiptIDs"`
}

// ToSettingsResponse converts domain.UserSettings to SettingsResponse DTO
func ToSettingsResponse(s *domain.UserSettings) SettingsResponse {
	return SettingsResponse{
		DateWindowDays:          s.DateWindowDays,
		AmountTolerance:         s.AmountTolerance,
		RequireCategoryMatch:    s.RequireCategoryMatch,
		SortDescending:          s.SortDescending,
		IncludeMerchantKeywords: s.IncludeMerchantKeywords,
		IncludeExpenseID:        s.IncludeExpenseID,
		IncludeReceiptIDs:       s.IncludeReceiptIDs,
	}
}
