package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
)

type PgxUserRepository struct {
	db *pgxpool.Pool
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{db: db}
}

var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const uniqueViolation = "23505"

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (user_id, name, email, password_hash, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		user.UserID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.CreatedBy,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, name, email, password_hash, created_at, created_by, last_updated_at, last_updated_by
		FROM users
		WHERE user_id = $1;
	`
	var user domain.User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.CreatedBy,
		&user.LastUpdatedAt,
		&user.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	return &user, nil
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT user_id, name, email, password_hash, created_at, created_by, last_updated_at, last_updated_by
		FROM users
		WHERE email = $1;
	`
	var user domain.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.CreatedBy,
		&user.LastUpdatedAt,
		&user.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (r *PgxUserRepository) FindSettingsByUserID(ctx context.Context, userID string) (*domain.UserSettings, error) {
	query := `
		SELECT user_id, date_window_days, amount_tolerance, require_category_match,
		       sort_descending, include_merchant_keywords, include_expense_id, include_receipt_ids,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM user_settings
		WHERE user_id = $1;
	`
	var s domain.UserSettings
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.DateWindowDays,
		&s.AmountTolerance,
		&s.RequireCategoryMatch,
		&s.SortDescending,
		&s.IncludeMerchantKeywords,
		&s.IncludeExpenseID,
		&s.IncludeReceiptIDs,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find settings for user %s: %w", userID, err)
	}
	return &s, nil
}

func (r *PgxUserRepository) SaveSettings(ctx context.Context, settings domain.UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, date_window_days, amount_tolerance, require_category_match,
		                           sort_descending, include_merchant_keywords, include_expense_id, include_receipt_ids,
		                           created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO UPDATE SET
			date_window_days = EXCLUDED.date_window_days,
			amount_tolerance = EXCLUDED.amount_tolerance,
			require_category_match = EXCLUDED.require_category_match,
			sort_descending = EXCLUDED.sort_descending,
			include_merchant_keywords = EXCLUDED.include_merchant_keywords,
			include_expense_id = EXCLUDED.include_expense_id,
			include_receipt_ids = EXCLUDED.include_receipt_ids,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.db.Exec(ctx, query,
		settings.UserID,
		settings.DateWindowDays,
		settings.AmountTolerance,
		settings.RequireCategoryMatch,
		settings.SortDescending,
		settings.IncludeMerchantKeywords,
		settings.IncludeExpenseID,
		settings.IncludeReceiptIDs,
		settings.CreatedAt,
		settings.CreatedBy,
		settings.LastUpdatedAt,
		settings.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings for user %s: %w", settings.UserID, err)
	}
	return nil
}
