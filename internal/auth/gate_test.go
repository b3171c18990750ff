package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/events"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

func TestLoginThenReauthenticateYieldsSameUser(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	user := f.createUser(t, "alice", "s3cret", domain.RoleMember)

	principal, err := f.gate.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.User.ID)

	again, err := f.gate.Reauthenticate(ctx, "Bearer "+principal.Token, false)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.User.ID)
	assert.Equal(t, principal.TokenID, again.TokenID)
	assert.False(t, again.Expired)
}

func TestLoginRejections(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	user := f.createUser(t, "alice", "s3cret", domain.RoleMember)

	_, err := f.gate.Login(ctx, "alice", "wrong")
	requireCode(t, err, apperrors.CodePasswordMismatch)
	assert.Equal(t, 401, apperrors.ToDomainError(err).HTTPStatus)

	_, err = f.gate.Login(ctx, "nobody", "s3cret")
	requireCode(t, err, apperrors.CodeAccountNotFound)

	_, err = f.gate.Login(ctx, "", "s3cret")
	requireCode(t, err, apperrors.CodeInvalidCredentialFormat)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)

	count, err := f.registry.Count(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReauthenticateRejectsBadHeaders(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		_, err := f.gate.Reauthenticate(ctx, header, true)
		requireCode(t, err, apperrors.CodeInvalidToken)
	}
}

func TestLogoutInvalidatesOnlyThatToken(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	f.createUser(t, "alice", "s3cret", domain.RoleMember)

	phone, err := f.gate.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	laptop, err := f.gate.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	require.NoError(t, f.gate.Logout(ctx, phone))

	_, err = f.gate.Reauthenticate(ctx, "Bearer "+phone.Token, false)
	requireCode(t, err, apperrors.CodeInvalidSession)

	_, err = f.gate.Reauthenticate(ctx, "Bearer "+laptop.Token, false)
	require.NoError(t, err)
}

func TestExpiredTokenOnlyPassesWithCapability(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	f.createUser(t, "alice", "s3cret", domain.RoleMember)

	principal, err := f.gate.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)

	_, err = f.gate.Reauthenticate(ctx, "Bearer "+principal.Token, false)
	requireCode(t, err, apperrors.CodeSessionExpired)

	expired, err := f.gate.Reauthenticate(ctx, "Bearer "+principal.Token, true)
	require.NoError(t, err)
	assert.True(t, expired.Expired)

	extended, err := f.gate.Extend(ctx, expired)
	require.NoError(t, err)
	assert.True(t, extended.ExpiresAt.After(f.clock.Now()))

	fresh, err := f.gate.Reauthenticate(ctx, "Bearer "+extended.Token, false)
	require.NoError(t, err)
	assert.False(t, fresh.Expired)

	_, err = f.gate.Reauthenticate(ctx, "Bearer "+principal.Token, true)
	requireCode(t, err, apperrors.CodeInvalidSession)
}

func TestExpiredAndRevokedTokenIsRejected(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	f.createUser(t, "alice", "s3cret", domain.RoleMember)

	principal, err := f.gate.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NoError(t, f.gate.Logout(ctx, principal))
	f.clock.Advance(2 * time.Hour)

	_, err = f.gate.Reauthenticate(ctx, "Bearer "+principal.Token, true)
	requireCode(t, err, apperrors.CodeInvalidSession)

	err = f.gate.Logout(ctx, principal)
	requireCode(t, err, apperrors.CodeInvalidSession)
}

func TestRevokeAllDropsEverySession(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	user := f.createUser(t, "alice", "s3cret", domain.RoleMember)

	a, err := f.gate.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	b, err := f.gate.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	require.NoError(t, f.gate.RevokeAll(ctx, user.ID))

	for _, p := range []*Principal{a, b} {
		_, err := f.gate.Reauthenticate(ctx, "Bearer "+p.Token, false)
		requireCode(t, err, apperrors.CodeInvalidSession)
	}
}

func TestLoginPublishesEvent(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	user := f.createUser(t, "alice", "s3cret", domain.RoleMember)

	dispatcher := events.NewInMemoryDispatcher()
	var got []events.Event
	dispatcher.Subscribe(events.EventUserLoggedIn, func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})
	f.gate.dispatcher = dispatcher

	principal, err := f.gate.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, user.ID, got[0].UserID)
	assert.Equal(t, principal.TokenID, got[0].Payload.(events.UserLoggedInPayload).TokenID)
}

type brokenUsers struct {
	repository.UserRepository
}

func (brokenUsers) GetByAccount(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection reset")
}

func TestLoginStorageFaultIsInternal(t *testing.T) {
	f := newGateFixture(t, 10)
	verifier, err := NewVerifier(brokenUsers{}, bcrypt.MinCost)
	require.NoError(t, err)
	f.gate.verifier = verifier

	_, err = f.gate.Login(context.Background(), "alice", "s3cret")
	requireCode(t, err, apperrors.CodeInternal)
	assert.Equal(t, 500, apperrors.ToDomainError(err).HTTPStatus)
	assert.Equal(t, "internal server error", apperrors.ToDomainError(err).Message)
}

func TestVerifierTagsFailures(t *testing.T) {
	f := newGateFixture(t, 10)
	ctx := context.Background()
	f.createUser(t, "alice", "s3cret", domain.RoleMember)

	_, err := f.gate.verifier.Verify(ctx, "alice", "nope")
	var verifyErr *VerifyError
	require.ErrorAs(t, err, &verifyErr)
	assert.Equal(t, FailurePasswordMismatch, verifyErr.Kind)

	_, err = f.gate.verifier.Verify(ctx, "bob", "nope")
	require.ErrorAs(t, err, &verifyErr)
	assert.Equal(t, FailureAccountNotFound, verifyErr.Kind)

	broken, err := NewVerifier(brokenUsers{}, bcrypt.MinCost)
	require.NoError(t, err)
	_, err = broken.Verify(ctx, "alice", "s3cret")
	require.ErrorAs(t, err, &verifyErr)
	assert.Equal(t, FailureUnknown, verifyErr.Kind)
	assert.Contains(t, err.Error(), "connection reset")
}
