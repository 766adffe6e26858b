package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/core/user"
)

func Test_accountApi_signup(t *testing.T) {
	createUser(t, "Taken", "taken@signup.cd", "passw0rd", user.RoleStudent)

	tests := []struct {
		name     string
		body     SignupRequest
		wantCode int
		wantErr  string
		wantRole user.Role
	}{
		{
			name:     "email required",
			body:     SignupRequest{Password: "passw0rd"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "weak password",
			body:     SignupRequest{Email: "weak@signup.cd", Password: "12345", DisplayLabel: "A|student"},
			wantCode: http.StatusBadRequest,
			wantErr:  "Password should be at least 6 characters",
		},
		{
			name:     "email in use",
			body:     SignupRequest{Email: "taken@signup.cd", Password: "passw0rd", DisplayLabel: "A|student"},
			wantCode: http.StatusBadRequest,
			wantErr:  "An account with this email already exists",
		},
		{
			name:     "ok, role from label",
			body:     SignupRequest{Email: "prof@signup.cd", Password: "passw0rd", DisplayLabel: "Prof|teacher"},
			wantCode: http.StatusCreated,
			wantRole: user.RoleTeacher,
		},
		{
			name:     "ok, explicit role wins",
			body:     SignupRequest{Email: "kid@signup.cd", Password: "passw0rd", Role: user.RoleStudent, DisplayLabel: "Kid|teacher"},
			wantCode: http.StatusCreated,
			wantRole: user.RoleStudent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(http.MethodPost, "/v1/auth/signup", marshallObj(t, tt.body))
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v, want %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" {
				if e := decodeErr(t, rec); e.Error != tt.wantErr {
					t.Errorf("error = %q, want %q", e.Error, tt.wantErr)
				}
				return
			}
			if tt.wantCode != http.StatusCreated {
				return
			}

			var resp AuthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal failed, %v", err)
			}
			if !resp.Success || resp.User == nil || resp.User.Role != tt.wantRole {
				t.Errorf("resp = %+v, want success with role %v", resp, tt.wantRole)
			}

			// the auth cookie must carry verifiable claims
			ck := findCookie(rec, cookieAuthToken)
			if ck == nil {
				t.Fatal("auth cookie not set")
			}
			claims, err := session.VerifyClaims(ck.Value)
			if err != nil {
				t.Fatalf("VerifyClaims() failed, %v", err)
			}
			if claims.Subject != resp.User.ID {
				t.Errorf("claims subject = %q, want %q", claims.Subject, resp.User.ID)
			}
			if role := findCookie(rec, cookieUserType); role == nil || role.Value != string(tt.wantRole) {
				t.Errorf("role cookie = %+v, want %v", role, tt.wantRole)
			}

			// signup leaves a pending registration behind
			prof, err := profSvc.GetByUserID(context.Background(), resp.User.ID)
			if err != nil {
				t.Fatalf("GetByUserID() failed, %v", err)
			}
			if prof.Status != profile.StatusPending {
				t.Errorf("Status = %v, want %v", prof.Status, profile.StatusPending)
			}
		})
	}
}

func Test_accountApi_login(t *testing.T) {
	usr := createUser(t, "Awe", "awe@login.cd", "passw0rd", user.RoleTeacher)

	tests := []struct {
		name     string
		body     LoginRequest
		wantCode int
		wantErr  string
	}{
		{name: "email required", body: LoginRequest{Password: "passw0rd"}, wantCode: http.StatusBadRequest},
		{name: "unknown email", body: LoginRequest{Email: "who@login.cd", Password: "passw0rd"}, wantCode: http.StatusBadRequest, wantErr: "No account found with this email"},
		{name: "wrong password", body: LoginRequest{Email: usr.Email, Password: "nope123"}, wantCode: http.StatusBadRequest, wantErr: "Incorrect password"},
		{name: "ok", body: LoginRequest{Email: usr.Email, Password: "passw0rd"}, wantCode: http.StatusOK},
		{name: "ok, email is normalized", body: LoginRequest{Email: " AWE@login.cd ", Password: "passw0rd"}, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(http.MethodPost, "/v1/auth/login", marshallObj(t, tt.body))
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v, want %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" {
				if e := decodeErr(t, rec); e.Error != tt.wantErr {
					t.Errorf("error = %q, want %q", e.Error, tt.wantErr)
				}
				return
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp AuthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal failed, %v", err)
			}
			if !resp.Success || resp.User == nil || resp.User.ID != usr.ID {
				t.Errorf("resp = %+v", resp)
			}
			if findCookie(rec, cookieAuthToken) == nil || findCookie(rec, cookieUserType) == nil {
				t.Error("auth cookies not set")
			}
		})
	}
}

func Test_accountApi_logout(t *testing.T) {
	rec := doRequest(http.MethodPost, "/v1/auth/logout", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("code = %v, want %v", rec.Code, http.StatusNoContent)
	}
	for _, name := range []string{cookieAuthToken, cookieUserType} {
		ck := findCookie(rec, name)
		if ck == nil {
			t.Fatalf("%s cookie not cleared", name)
		}
		if ck.Value != "" || ck.MaxAge != -1 {
			t.Errorf("%s cookie = %+v, want cleared", name, ck)
		}
	}

	// calling it again lands in the same place
	if rec = doRequest(http.MethodPost, "/v1/auth/logout", nil); rec.Code != http.StatusNoContent {
		t.Errorf("code = %v, want %v", rec.Code, http.StatusNoContent)
	}
}

func Test_accountApi_checkRegistration(t *testing.T) {
	usr := createUser(t, "Prof", "prof@check.cd", "passw0rd", user.RoleTeacher)

	tests := []struct {
		name     string
		email    string
		wantCode int
		want     user.Registration
	}{
		{name: "email required", wantCode: http.StatusBadRequest},
		{name: "invalid email", email: "lol", wantCode: http.StatusBadRequest},
		{name: "registered teacher", email: usr.Email, wantCode: http.StatusOK, want: user.Registration{IsRegistered: true, Role: user.RoleTeacher}},
		{name: "unused email", email: "nobody@check.cd", wantCode: http.StatusOK, want: user.Registration{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/v1/auth/check-registration"
			if tt.email != "" {
				path += "?email=" + url.QueryEscape(tt.email)
			}
			rec := doRequest(http.MethodGet, path, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v, want %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var reg user.Registration
			if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
				t.Fatalf("unmarshal failed, %v", err)
			}
			if reg != tt.want {
				t.Errorf("registration = %+v, want %+v", reg, tt.want)
			}
		})
	}
}

func Test_accountApi_me(t *testing.T) {
	usr := createUser(t, "Awe", "awe@me.cd", "passw0rd", user.RoleStudent)
	prof := createProfile(t, usr)
	bare := createUser(t, "Bare", "bare@me.cd", "passw0rd", user.RoleStudent) // no profile

	t.Run("no cookie", func(t *testing.T) {
		rec := doRequest(http.MethodGet, "/v1/auth/me", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v, want %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("forged cookie", func(t *testing.T) {
		rec := doRequest(http.MethodGet, "/v1/auth/me", nil, &http.Cookie{Name: cookieAuthToken, Value: "lol"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v, want %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("ok", func(t *testing.T) {
		rec := doRequest(http.MethodGet, "/v1/auth/me", nil, authCookies(t, usr)...)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp MeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal failed, %v", err)
		}
		if resp.User.ID != usr.ID {
			t.Errorf("user = %v, want %v", resp.User.ID, usr.ID)
		}
		if resp.Profile == nil || resp.Profile.UserID != prof.UserID {
			t.Errorf("profile = %+v, want %+v", resp.Profile, prof)
		}
	})

	t.Run("ok, missing profile is tolerated", func(t *testing.T) {
		rec := doRequest(http.MethodGet, "/v1/auth/me", nil, authCookies(t, bare)...)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp MeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal failed, %v", err)
		}
		if resp.User.ID != bare.ID || resp.Profile != nil {
			t.Errorf("resp = %+v, want bare user without profile", resp)
		}
	})

	t.Run("destroyed session is rejected", func(t *testing.T) {
		cookies := authCookies(t, usr)
		claims, err := session.VerifyClaims(cookies[0].Value)
		if err != nil {
			t.Fatalf("VerifyClaims() failed, %v", err)
		}
		if err := sessStore.Destroy(context.Background(), claims.Id); err != nil {
			t.Fatalf("Destroy() failed, %v", err)
		}
		rec := doRequest(http.MethodGet, "/v1/auth/me", nil, cookies...)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v, want %v", rec.Code, http.StatusUnauthorized)
		}
	})
}
