package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/auth"
)

// Feature pages behind the edge gate. The real pages live in the front end;
// these handlers stand in for them so the gate applies on direct navigation.
var featurePaths = []string{
	"/teacher",
	"/student",
	"/content-generator",
	"/question-paper-generator",
	"/knowledge-base",
	"/visual-aids",
	"/worksheet-generator",
	"/lesson-planner",
	"/reading-assessment",
	"/storytelling",
	"/educational-games",
	"/image-generator",
	"/game-creator",
}

func registerPages(e *echo.Echo, policy *auth.Policy) {
	gate := policyMiddleware(policy)

	e.GET(auth.PathHome, home, gate)
	e.GET(auth.PathLogin, loginPage, gate)
	e.GET(auth.PathAccessDenied, accessDenied)

	for _, path := range featurePaths {
		e.GET(path, page, gate)
		e.GET(path+"/*", page, gate)
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+"!")
}

func loginPage(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": "login"})
}

func accessDenied(ctx echo.Context) error {
	return ctx.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
}

func page(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"page": ctx.Request().URL.Path})
}
