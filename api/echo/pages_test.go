package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/darasahq/darasa/core/auth"
	"github.com/darasahq/darasa/core/user"
)

func Test_policyMiddleware(t *testing.T) {
	teacher := createUser(t, "Prof", "prof@pages.cd", "passw0rd", user.RoleTeacher)
	student := createUser(t, "Stu", "stu@pages.cd", "passw0rd", user.RoleStudent)

	teacherCookies := authCookies(t, teacher)
	studentCookies := authCookies(t, student)
	forgedCookies := []*http.Cookie{
		{Name: cookieAuthToken, Value: "hand-rolled"},
		{Name: cookieUserType, Value: "teacher"},
	}

	tests := []struct {
		name     string
		path     string
		cookies  []*http.Cookie
		wantCode int
		wantLoc  string
	}{
		{name: "home, signed out", path: "/", wantCode: http.StatusOK},
		{name: "login page, signed out", path: "/auth/login", wantCode: http.StatusOK},
		{name: "home bounces teacher to dashboard", path: "/", cookies: teacherCookies, wantCode: http.StatusFound, wantLoc: "/teacher"},
		{name: "login page bounces student to dashboard", path: "/auth/login", cookies: studentCookies, wantCode: http.StatusFound, wantLoc: "/student"},
		{name: "protected page, signed out", path: "/teacher", wantCode: http.StatusFound, wantLoc: auth.PathHome},
		{name: "protected subpage, signed out", path: "/lesson-planner/new", wantCode: http.StatusFound, wantLoc: auth.PathHome},
		{name: "forged cookies do not pass the gate", path: "/teacher", cookies: forgedCookies, wantCode: http.StatusFound, wantLoc: auth.PathHome},
		{name: "teacher page, wrong role", path: "/teacher", cookies: studentCookies, wantCode: http.StatusFound, wantLoc: auth.PathAccessDenied},
		{name: "student page, wrong role", path: "/storytelling", cookies: teacherCookies, wantCode: http.StatusFound, wantLoc: auth.PathAccessDenied},
		{name: "teacher page, right role", path: "/teacher", cookies: teacherCookies, wantCode: http.StatusOK},
		{name: "teacher subpage, right role", path: "/question-paper-generator/history", cookies: teacherCookies, wantCode: http.StatusOK},
		{name: "student page, right role", path: "/educational-games", cookies: studentCookies, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(http.MethodGet, tt.path, nil, tt.cookies...)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
		})
	}
}
