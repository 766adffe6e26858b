package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/core/user"
)

// Cookies read by the edge gate. Both are advisory for navigation UX; the
// signed claims in the auth cookie are what actually gets verified.
const (
	cookieAuthToken = "auth-token"
	cookieUserType  = "user-type"
)

var (
	contextClaimsKey  = "claims"
	contextSessionKey = "session"
	contextUserKey    = "user"
)

// setAuthCookies mirrors the session into cookies for the edge middleware's
// benefit: the auth cookie carries the signed claims, the role cookie is a
// plain routing hint.
func setAuthCookies(ctx echo.Context, s session.Session) error {
	signed, err := session.SignClaims(session.NewClaims(s))
	if err != nil {
		return errors.Wrap(err, "signing session claims")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     cookieAuthToken,
		Value:    signed,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	ctx.SetCookie(&http.Cookie{
		Name:     cookieUserType,
		Value:    string(s.Role),
		Path:     "/",
		Expires:  s.ExpiresAt,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearAuthCookies(ctx echo.Context) {
	for _, name := range []string{cookieAuthToken, cookieUserType} {
		ctx.SetCookie(&http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
}

// sessionMiddleware verifies the signed auth cookie and resolves the session
// against the authoritative store; the cookie alone is never proof.
func sessionMiddleware(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(cookieAuthToken)
			if err != nil || cookie.Value == "" {
				return errUnauthorized
			}
			claims, err := session.VerifyClaims(cookie.Value)
			if err != nil {
				return errUnauthorized
			}
			sess, err := store.Get(ctx.Request().Context(), claims.Id)
			if err != nil {
				return errUnauthorized
			}
			ctx.Set(contextClaimsKey, claims)
			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (session.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(*session.Claims); ok {
		return *claims, nil
	}
	return session.Claims{}, errUnauthorized
}

func getContextSession(ctx echo.Context) (session.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(session.Session); ok {
		return sess, nil
	}
	return session.Session{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc user.Service) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	sess, err := getContextSession(ctx)
	if err != nil {
		return user.User{}, err
	}
	usr, err := svc.GetByID(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
