package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/auth"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/user"
)

type accountApi struct {
	mgr      *auth.Manager
	users    user.Service
	profiles profile.Service
}

func registerAccountAPI(g *echo.Group, sessionMW echo.MiddlewareFunc, mgr *auth.Manager, users user.Service, profiles profile.Service) {
	api := accountApi{
		mgr:      mgr,
		users:    users,
		profiles: profiles,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/signup", api.signup)
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.GET("/check-registration", api.checkRegistration)

	// authed endpoints
	ag.GET("/me", api.me, sessionMW)
}

// Handlers

func (api *accountApi) signup(ctx echo.Context) error {
	var data SignupRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignupRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res := api.mgr.Signup(ctx.Request().Context(), data.Email, data.Password, data.Role, data.DisplayLabel)
	if !res.Success {
		return core.NewValidationError(errors.New(res.Error))
	}
	if err := setAuthCookies(ctx, *res.Session); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, AuthResponse{Success: true, User: res.User})
}

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	res := api.mgr.Login(ctx.Request().Context(), data.Email, data.Password)
	if !res.Success {
		return core.NewValidationError(errors.New(res.Error))
	}
	if err := setAuthCookies(ctx, *res.Session); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, AuthResponse{Success: true, User: res.User})
}

// logout destroys the session and clears the cookie mirrors. Safe to call
// without a session; calling it twice lands in the same place.
func (api *accountApi) logout(ctx echo.Context) error {
	api.mgr.Logout(ctx.Request().Context())
	clearAuthCookies(ctx)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *accountApi) checkRegistration(ctx echo.Context) error {
	data := CheckRegistrationRequest{Email: ctx.QueryParam("email")}
	if err := data.Validate(); err != nil {
		return err
	}

	reg, err := api.mgr.CheckRegistration(ctx.Request().Context(), data.Email)
	if err != nil {
		return core.NewValidationError(err)
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *accountApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.users)
	if err != nil {
		return err
	}

	// a missing/broken profile is tolerated: the caller still gets the user
	var prof *profile.Profile
	if p, err := api.profiles.GetByUserID(ctx.Request().Context(), usr.ID); err == nil {
		prof = &p
	}
	return ctx.JSON(http.StatusOK, MeResponse{User: usr, Profile: prof})
}

type (
	SignupRequest struct {
		Email        string    `json:"email" validate:"required,email"`
		Password     string    `json:"password" validate:"required"`
		Role         user.Role `json:"role" validate:"omitempty,role"`
		DisplayLabel string    `json:"display_label"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	CheckRegistrationRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	AuthResponse struct {
		Success bool       `json:"success"`
		User    *user.User `json:"user"`
	}

	MeResponse struct {
		User    user.User        `json:"user"`
		Profile *profile.Profile `json:"profile"`
	}
)

func (sr *SignupRequest) Validate() error {
	sr.Email = core.CleanString(sr.Email, true /* lower */)
	sr.DisplayLabel = core.CleanString(sr.DisplayLabel)
	return core.Validate.Struct(sr)
}

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

func (cr *CheckRegistrationRequest) Validate() error {
	cr.Email = core.CleanString(cr.Email, true /* lower */)
	return core.Validate.Struct(cr)
}
