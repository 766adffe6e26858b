package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/auth"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/core/user"
	emailsvc "github.com/darasahq/darasa/services/email"
	"github.com/darasahq/darasa/storage/database/inmemdb"
	"github.com/darasahq/darasa/storage/kv"
	"github.com/darasahq/darasa/storage/sessions"
)

var (
	app       Server
	usrSvc    user.Service
	profSvc   profile.Service
	sessStore session.Store
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true

	db, err := inmemdb.Open()
	if err != nil {
		os.Exit(1)
	}
	usrSvc = user.NewService(inmemdb.NewUserRepository(db))
	profSvc = profile.NewService(inmemdb.NewProfileRepository(db), emailsvc.NewConsoleServiceMock())
	sessStore = sessions.NewInMemStore()

	mgr := auth.NewManager(auth.Options{
		Sessions: sessStore,
		Authn:    session.NewAuthenticator(usrSvc),
		Users:    usrSvc,
		Profiles: profSvc,
		KV:       kv.NewStore(),
		Logger:   nopLogger{},
	})

	app = NewServer(&Options{
		DisableReqLogs: true,
		Users:          usrSvc,
		Profiles:       profSvc,
		Sessions:       sessStore,
		Manager:        mgr,
		Logger:         nopLogger{},
	})

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

func doRequest(method, path string, body []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func createUser(t *testing.T, name, email, pwd string, role user.Role) user.User {
	t.Helper()

	usr, err := usrSvc.Create(context.Background(), user.NewUser{Name: name, Email: email, Password: pwd, Role: role})
	if err != nil {
		t.Fatalf("createUser() failed, %v", err)
	}
	return usr
}

func createProfile(t *testing.T, usr user.User) profile.Profile {
	t.Helper()

	prof, err := profSvc.Create(context.Background(), profile.NewProfile{UserID: usr.ID, Role: usr.Role})
	if err != nil {
		t.Fatalf("createProfile() failed, %v", err)
	}
	return prof
}

// authCookies opens a session for usr and returns the cookie pair a logged-in
// browser would carry.
func authCookies(t *testing.T, usr user.User) []*http.Cookie {
	t.Helper()

	sess, err := sessStore.Create(context.Background(), usr, time.Hour)
	if err != nil {
		t.Fatalf("authCookies() failed, %v", err)
	}
	signed, err := session.SignClaims(session.NewClaims(sess))
	if err != nil {
		t.Fatalf("authCookies() failed, %v", err)
	}
	return []*http.Cookie{
		{Name: cookieAuthToken, Value: signed},
		{Name: cookieUserType, Value: string(usr.Role)},
	}
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed, %v", err)
	}
	return data
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) httpErr {
	t.Helper()

	var e httpErr
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decodeErr() failed on %q, %v", rec.Body.String(), err)
	}
	return e
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
