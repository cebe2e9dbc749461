package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/dto"
	"github.com/snapexpense/snap_expense_app/internal/middleware"
	"github.com/snapexpense/snap_expense_app/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// userService provides user registration, authentication and settings.
type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// RegisterUser creates a new user with a hashed password.
func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.userRepo.FindUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
	} else if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	user.CreatedBy = user.UserID
	user.LastUpdatedBy = user.UserID

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	// Seed the default settings row so later reads never miss.
	settings := domain.DefaultUserSettings(user.UserID)
	settings.AuditFields = user.AuditFields
	if err := s.userRepo.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save default settings: %w", err)
	}

	logger.Info("User registered", slog.String("user_id", user.UserID))
	return &user, nil
}

// AuthenticateUser authenticates a user with email and password.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// GetSettings retrieves the user's settings, falling back to defaults.
func (s *userService) GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error) {
	settings, err := s.userRepo.FindSettingsByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			def := domain.DefaultUserSettings(userID)
			return &def, nil
		}
		return nil, fmt.Errorf("failed to load settings for user %s: %w", userID, err)
	}
	return settings, nil
}

// UpdateSettings replaces the user's matching rules and export template.
func (s *userService) UpdateSettings(ctx context.Context, userID string, req dto.UpdateSettingsRequest) (*domain.UserSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DateWindowDays != nil {
		settings.DateWindowDays = *req.DateWindowDays
	}
	if req.AmountTolerance != nil {
		if req.AmountTolerance.IsNegative() {
			return nil, fmt.Errorf("%w: amount tolerance cannot be negative", apperrors.ErrValidation)
		}
		settings.AmountTolerance = *req.AmountTolerance
	}
	if req.RequireCategoryMatch != nil {
		settings.RequireCategoryMatch = *req.RequireCategoryMatch
	}
	if req.SortDescending != nil {
		settings.SortDescending = *req.SortDescending
	}
	if req.IncludeMerchantKeywords != nil {
		settings.IncludeMerchantKeywords = *req.IncludeMerchantKeywords
	}
	if req.IncludeExpenseID != nil {
		settings.IncludeExpenseID = *req.IncludeExpenseID
	}
	if req.IncludeReceiptIDs != nil {
		settings.IncludeReceiptIDs = *req.IncludeReceiptIDs
	}

	settings.LastUpdatedAt = time.Now()
	settings.LastUpdatedBy = userID

	if err := s.userRepo.SaveSettings(ctx, *settings); err != nil {
		return nil, fmt.Errorf("failed to save settings for user %s: %w", userID, err)
	}
	return settings, nil
}
