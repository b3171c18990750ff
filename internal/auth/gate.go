package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/events"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/observability"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

const (
	protocolLogin          = "login"
	protocolReauthenticate = "reauthenticate"
)

// Principal represents the authenticated caller of one request.
type Principal struct {
	User      *domain.User
	Token     string
	TokenID   string
	ExpiresAt time.Time
	// Expired is only ever true on routes that allow expired tokens.
	Expired bool
}

// GateDependencies wires a Gate. Dispatcher, Logger and Metrics are optional.
type GateDependencies struct {
	Verifier   *Verifier
	Registry   *Registry
	Tokens     *TokenManager
	Users      repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// Gate runs the login and reauthentication protocols.
type Gate struct {
	verifier   *Verifier
	registry   *Registry
	tokens     *TokenManager
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewGate constructs a gate.
func NewGate(deps GateDependencies) *Gate {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		verifier:   deps.Verifier,
		registry:   deps.Registry,
		tokens:     deps.Tokens,
		users:      deps.Users,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

// Registry exposes the token registry for extend and logout.
func (g *Gate) Registry() *Registry {
	return g.registry
}

// Login verifies credentials and issues a registered token.
func (g *Gate) Login(ctx context.Context, account, password string) (*Principal, error) {
	if strings.TrimSpace(account) == "" || password == "" {
		return nil, g.reject(protocolLogin, apperrors.NewBadRequest(apperrors.CodeInvalidCredentialFormat, "account and password are required"))
	}

	user, err := g.verifier.Verify(ctx, account, password)
	if err != nil {
		var verifyErr *VerifyError
		if !errors.As(err, &verifyErr) {
			return nil, g.fault(protocolLogin, err)
		}
		switch verifyErr.Kind {
		case FailureAccountNotFound:
			return nil, g.reject(protocolLogin, apperrors.NewAuthRejection(apperrors.CodeAccountNotFound, "account not found"))
		case FailurePasswordMismatch:
			return nil, g.reject(protocolLogin, apperrors.NewAuthRejection(apperrors.CodePasswordMismatch, "incorrect password"))
		default:
			return nil, g.fault(protocolLogin, verifyErr)
		}
	}

	issued, err := g.registry.Issue(ctx, user)
	if err != nil {
		return nil, g.fault(protocolLogin, err)
	}

	g.metrics.RecordAuth(protocolLogin, "issued")
	g.publish(ctx, events.NewEvent(events.EventUserLoggedIn, user.ID, events.UserLoggedInPayload{
		TokenID:   issued.ID,
		ExpiresAt: issued.ExpiresAt,
	}))
	return &Principal{User: user, Token: issued.Token, TokenID: issued.ID, ExpiresAt: issued.ExpiresAt}, nil
}

// Reauthenticate resolves the bearer token in header to a principal. An
// expired token passes only when allowExpired is set; registry membership is
// required either way.
func (g *Gate) Reauthenticate(ctx context.Context, header string, allowExpired bool) (*Principal, error) {
	raw, ok := bearerToken(header)
	if !ok {
		return nil, g.reject(protocolReauthenticate, apperrors.NewAuthRejection(apperrors.CodeInvalidToken, "invalid token"))
	}

	claims, err := g.tokens.Decode(raw)
	if err != nil {
		g.logger.Debug("token decode failed", zap.Error(err))
		return nil, g.reject(protocolReauthenticate, apperrors.NewAuthRejection(apperrors.CodeInvalidToken, "invalid token"))
	}

	expired := g.tokens.Expired(claims)
	if expired && !allowExpired {
		return nil, g.reject(protocolReauthenticate, apperrors.NewAuthRejection(apperrors.CodeSessionExpired, "session expired, please log in again"))
	}

	registered, err := g.registry.IsRegistered(ctx, claims.Subject, claims.ID, raw)
	if err != nil {
		return nil, g.fault(protocolReauthenticate, err)
	}
	if !registered {
		return nil, g.reject(protocolReauthenticate, apperrors.NewAuthRejection(apperrors.CodeInvalidSession, "session is no longer valid"))
	}

	user, err := g.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, g.reject(protocolReauthenticate, apperrors.NewAuthRejection(apperrors.CodeInvalidSession, "session is no longer valid"))
		}
		return nil, g.fault(protocolReauthenticate, err)
	}

	outcome := "accepted"
	if expired {
		outcome = "accepted_expired"
	}
	g.metrics.RecordAuth(protocolReauthenticate, outcome)
	return &Principal{
		User:      user,
		Token:     raw,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		Expired:   expired,
	}, nil
}

// Logout revokes the principal's own token.
func (g *Gate) Logout(ctx context.Context, principal *Principal) error {
	if err := g.registry.Revoke(ctx, principal.User.ID, principal.TokenID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return apperrors.NewAuthRejection(apperrors.CodeInvalidSession, "session is no longer valid")
		}
		return g.fault("logout", err)
	}
	g.publish(ctx, events.NewEvent(events.EventSessionRevoked, principal.User.ID, events.SessionRevokedPayload{TokenID: principal.TokenID}))
	return nil
}

// Extend swaps the principal's token for a fresh one with a new expiry.
func (g *Gate) Extend(ctx context.Context, principal *Principal) (*Principal, error) {
	issued, err := g.registry.Extend(ctx, principal.User, principal.TokenID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, apperrors.NewAuthRejection(apperrors.CodeInvalidSession, "session is no longer valid")
		}
		return nil, g.fault("extend", err)
	}
	g.metrics.RecordAuth("extend", "issued")
	return &Principal{User: principal.User, Token: issued.Token, TokenID: issued.ID, ExpiresAt: issued.ExpiresAt}, nil
}

// RevokeAll drops every session of the user.
func (g *Gate) RevokeAll(ctx context.Context, userID string) error {
	if err := g.registry.RevokeAll(ctx, userID); err != nil {
		return g.fault("revoke_all", err)
	}
	g.publish(ctx, events.NewEvent(events.EventSessionRevoked, userID, events.SessionRevokedPayload{All: true}))
	return nil
}

func (g *Gate) reject(protocol string, err error) error {
	code := apperrors.ToDomainError(err).Code
	g.metrics.RecordAuth(protocol, code)
	g.logger.Debug("authentication rejected", zap.String("protocol", protocol), zap.String("code", code))
	return err
}

func (g *Gate) fault(protocol string, err error) error {
	g.metrics.RecordAuth(protocol, apperrors.CodeInternal)
	g.logger.Error("authentication fault", zap.String("protocol", protocol), zap.Error(err))
	return apperrors.NewInternalError(err)
}

func (g *Gate) publish(ctx context.Context, event events.Event) {
	if g.dispatcher == nil {
		return
	}
	if err := g.dispatcher.Publish(ctx, event); err != nil {
		g.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
