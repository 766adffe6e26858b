package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/user"
)

type profileApi struct {
	users    user.Service
	profiles profile.Service
}

func registerProfileAPI(g *echo.Group, sessionMW echo.MiddlewareFunc, users user.Service, profiles profile.Service) {
	api := profileApi{
		users:    users,
		profiles: profiles,
	}

	pg := g.Group("/profiles", sessionMW)
	pg.GET("/:id", api.retrieve)

	// approval is an administrative action; teachers carry it here
	pg.PUT("/:id/approve", api.approve, roleMiddleware(user.RoleTeacher))
	pg.PUT("/:id/reject", api.reject, roleMiddleware(user.RoleTeacher))
}

// retrieve returns a profile; users see their own, teachers see anyone's.
func (api *profileApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id := ctx.Param("id")
	if id != claims.Subject && !claims.IsTeacher {
		return errHttpNotFound
	}

	prof, err := api.profiles.GetByUserID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == profile.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding profile by user ID")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *profileApi) approve(ctx echo.Context) error {
	return api.setStatus(ctx, api.profiles.Approve)
}

func (api *profileApi) reject(ctx echo.Context) error {
	return api.setStatus(ctx, api.profiles.Reject)
}

func (api *profileApi) setStatus(ctx echo.Context, action func(c context.Context, usr user.User) (profile.Profile, error)) error {
	usr, err := api.users.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}

	prof, err := action(ctx.Request().Context(), usr)
	if err != nil {
		if errors.Cause(err) == profile.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating registration status")
	}
	return ctx.JSON(http.StatusOK, prof)
}
