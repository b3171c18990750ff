package service

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/auth"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/config"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// Validate applies the account and password rules.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Account,
			validation.Required.Error("account is required"),
			validation.Length(4, 20).Error("account must be 4 to 20 characters"),
			is.Alphanumeric.Error("account may only contain letters and digits"),
		),
		validation.Field(&in.Password,
			validation.Required.Error("password is required"),
			validation.Length(4, 20).Error("password must be 4 to 20 characters"),
		),
	)
}

// ChangePasswordInput carries the current and the new password.
type ChangePasswordInput struct {
	Current string `json:"currentPassword"`
	New     string `json:"newPassword"`
}

func (in ChangePasswordInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Current, validation.Required.Error("current password is required")),
		validation.Field(&in.New,
			validation.Required.Error("new password is required"),
			validation.Length(4, 20).Error("password must be 4 to 20 characters"),
		),
	)
}

// AuthService coordinates account lifecycle around the authentication gate.
type AuthService struct {
	users      repository.UserRepository
	gate       *auth.Gate
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, gate *auth.Gate) *AuthService {
	return &AuthService{users: users, gate: gate, bcryptCost: cfg.BcryptCost}
}

// Register creates a member account. Admins are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Account = strings.TrimSpace(in.Account)
	if err := apperrors.FromValidation(in.Validate()); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Account:      in.Account,
		PasswordHash: hash,
		Role:         domain.RoleMember,
		Cart:         []domain.CartItem{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("account already exists", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Extend issues a replacement token for the caller's session.
func (s *AuthService) Extend(ctx context.Context, principal *auth.Principal) (*auth.Principal, error) {
	return s.gate.Extend(ctx, principal)
}

// Logout revokes only the token the caller presented.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	return s.gate.Logout(ctx, principal)
}

// ChangePassword swaps the password hash and revokes every session,
// including the caller's.
func (s *AuthService) ChangePassword(ctx context.Context, principal *auth.Principal, in ChangePasswordInput) error {
	if err := apperrors.FromValidation(in.Validate()); err != nil {
		return err
	}
	user := principal.User
	if err := auth.ComparePassword(user.PasswordHash, in.Current); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			// The caller is authenticated, so this is a rejected request, not a rejected session.
			return apperrors.NewBadRequest(apperrors.CodePasswordMismatch, "incorrect password")
		}
		return apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(in.New, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return mapLookupError(err, "user")
	}
	return s.gate.RevokeAll(ctx, user.ID)
}
