package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository"
)

// FailureKind tags why a credential check failed.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureAccountNotFound
	FailurePasswordMismatch
)

func (k FailureKind) String() string {
	switch k {
	case FailureAccountNotFound:
		return "account_not_found"
	case FailurePasswordMismatch:
		return "password_mismatch"
	default:
		return "unknown"
	}
}

// VerifyError is the only error type Verify returns.
type VerifyError struct {
	Kind FailureKind
	Err  error
}

func (e *VerifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verify credentials: %s: %v", e.Kind, e.Err)
	}
	return "verify credentials: " + e.Kind.String()
}

func (e *VerifyError) Unwrap() error { return e.Err }

// Verifier checks an account/password pair against stored bcrypt hashes.
type Verifier struct {
	users     repository.UserRepository
	dummyHash []byte
}

// NewVerifier prepares a verifier. The dummy hash uses the same cost as real
// accounts so a missing account costs one bcrypt comparison too.
func NewVerifier(users repository.UserRepository, bcryptCost int) (*Verifier, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &Verifier{users: users, dummyHash: dummy}, nil
}

// Verify returns the matching user or a *VerifyError. It never writes.
func (v *Verifier) Verify(ctx context.Context, account, password string) (*domain.User, error) {
	user, err := v.users.GetByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(v.dummyHash, []byte(password))
			return nil, &VerifyError{Kind: FailureAccountNotFound}
		}
		return nil, &VerifyError{Kind: FailureUnknown, Err: err}
	}

	if err := ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, &VerifyError{Kind: FailurePasswordMismatch}
		}
		return nil, &VerifyError{Kind: FailureUnknown, Err: err}
	}
	return user, nil
}
