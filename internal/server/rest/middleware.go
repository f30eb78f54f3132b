package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/server/auth"
	"github.com/cbsr/biobank/internal/server/telemetry"
)

const claimsKey = "claims"

// requireSession admits requests carrying a valid, unrevoked session cookie.
// Requests other than GET must echo the cookie in the XSRF header.
func (h *Handler) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(common.XSRFCookieName)
		if err != nil || cookie.Value == "" {
			return errors.Wrap(common.ErrUnauthorized, "no session")
		}
		claims, err := auth.ParseToken(cookie.Value, h.secret)
		if err != nil {
			return err
		}
		if h.revoked.IsRevoked(claims) {
			return errors.Wrap(common.ErrInvalidToken, "session ended")
		}
		if c.Request().Method != http.MethodGet && c.Request().Header.Get(common.XSRFHeaderName) != cookie.Value {
			return errors.Wrap(common.ErrForbidden, "XSRF header does not match session")
		}

		trace.SpanFromContext(c.Request().Context()).SetAttributes(attribute.String("user.id", claims.UserID))
		c.Set(claimsKey, claims)
		return next(c)
	}
}

func sessionClaims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

func (h *Handler) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				args = append(args, "error", v.Error.Error())
			}
			h.logger.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}

// countRequests records every request by its route template, so paths with
// IDs share one series.
func countRequests(m *telemetry.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				c.Error(err)
			}
			m.ObserveRequest(c.Request().Method, c.Path(), c.Response().Status)
			return nil
		}
	}
}
