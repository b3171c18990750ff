package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/api/dto"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/observability"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
// The request logger wraps the error handler so it sees the final status.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= http.StatusInternalServerError {
					logger.Error("request failed",
						zap.String("method", c.Method()),
						zap.String("path", c.Path()),
						zap.String("code", domainErr.Code),
						zap.Error(domainErr.Unwrap()))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(dto.Envelope{Success: false, Message: domainErr.Message, Code: domainErr.Code, Result: detailsOrNil(domainErr)})
				err = nil
			}
		}()
		return c.Next()
	}
}

// toDomainError also covers errors raised by fiber itself, such as unknown
// routes or oversized bodies.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := apperrors.CodeValidation
		switch fiberErr.Code {
		case http.StatusNotFound:
			code = apperrors.CodeNotFound
		case http.StatusMethodNotAllowed:
			code = apperrors.CodeNotFound
		case http.StatusTooManyRequests:
			code = apperrors.CodeRateLimited
		default:
			if fiberErr.Code >= http.StatusInternalServerError {
				return apperrors.ToDomainError(apperrors.NewInternalError(err))
			}
		}
		return apperrors.NewDomainError(code, fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func detailsOrNil(err *apperrors.DomainError) any {
	if len(err.Details) == 0 {
		return nil
	}
	return err.Details
}

// loginLimiter is a token bucket per client IP. Idle buckets are pruned
// lazily on access.
type loginLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	buckets map[string]*ipBucket
	pruned  time.Time
	now     func() time.Time
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLoginLimiter(perSecond float64, burst int) *loginLimiter {
	if burst < 1 {
		burst = 1
	}
	return &loginLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idle:    5 * time.Minute,
		buckets: make(map[string]*ipBucket),
		now:     time.Now,
	}
}

func (l *loginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.pruned) > l.idle {
		for key, b := range l.buckets {
			if now.Sub(b.seen) > l.idle {
				delete(l.buckets, key)
			}
		}
		l.pruned = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// RateLimit rejects callers that exceed perSecond with a burst allowance.
// A non-positive rate disables the limiter.
func RateLimit(perSecond float64, burst int) fiber.Handler {
	if perSecond <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	limiter := newLoginLimiter(perSecond, burst)
	return func(c *fiber.Ctx) error {
		if !limiter.allow(c.IP()) {
			return apperrors.NewDomainError(apperrors.CodeRateLimited, "too many attempts, try again later", http.StatusTooManyRequests, nil)
		}
		return c.Next()
	}
}
