package repositories

import (
	"context"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their unique identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email address.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindSettingsByUserID retrieves the user's settings row.
	FindSettingsByUserID(ctx context.Context, userID string) (*domain.UserSettings, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// SaveSettings inserts or updates the user's settings row.
	SaveSettings(ctx context.Context, settings domain.UserSettings) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
