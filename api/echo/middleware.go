package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/darasahq/darasa/core/auth"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/core/user"
)

// policyMiddleware is the pre-render gate: a pure decision over the request
// path and cookie hints. The auth cookie only counts when its signature
// verifies, so a hand-written cookie cannot pass the gate.
func policyMiddleware(policy *auth.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var authed bool
			if cookie, err := ctx.Cookie(cookieAuthToken); err == nil && cookie.Value != "" {
				if _, err := session.VerifyClaims(cookie.Value); err == nil {
					authed = true
				}
			}
			var roleHint string
			if cookie, err := ctx.Cookie(cookieUserType); err == nil {
				roleHint = cookie.Value
			}

			decision := policy.Evaluate(ctx.Request().URL.Path, authed, roleHint)
			if decision.Allow {
				return next(ctx)
			}
			return ctx.Redirect(http.StatusFound, decision.Target)
		}
	}
}

// roleMiddleware gates an API group on the session's role.
func roleMiddleware(required user.Role) echo.MiddlewareFunc {
	guard := auth.NewGuard(required)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			usr := &user.User{ID: claims.Subject, Email: claims.Email, Role: claims.Role}
			if res := guard.Evaluate(auth.State{User: usr}); res.Status != auth.StatusAuthorized {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
