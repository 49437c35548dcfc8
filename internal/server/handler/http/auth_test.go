package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atinyakov/cookieauth/internal/middleware"
	"github.com/atinyakov/cookieauth/internal/models"
	"github.com/atinyakov/cookieauth/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	session   service.Session
	signUpErr error
	loginErr  error

	gotName, gotEmail, gotPassword string
	loggedOut                      []string
}

func (f *fakeAuthService) SignUp(_ context.Context, name, email, password string) (models.User, service.Session, error) {
	f.gotName, f.gotEmail, f.gotPassword = name, email, password
	if f.signUpErr != nil {
		return models.User{}, service.Session{}, f.signUpErr
	}
	return models.User{ID: "u1", Name: name, Email: email}, f.session, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (service.Session, error) {
	f.gotEmail, f.gotPassword = email, password
	if f.loginErr != nil {
		return service.Session{}, f.loginErr
	}
	return f.session, nil
}

func (f *fakeAuthService) Logout(_ context.Context, cookieValue string) {
	f.loggedOut = append(f.loggedOut, cookieValue)
}

func validSession() service.Session {
	return service.Session{Token: "signed-token", ExpiresAt: time.Now().Add(time.Hour)}
}

func findCookie(res *http.Response) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_SignUp(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
		wantCookie     bool
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "empty body",
			body:           ``,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "missing fields",
			body:           `{"name":"A"}`,
			service:        &fakeAuthService{signUpErr: service.ErrInvalidInput},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "required",
		},
		{
			name:           "user already exists",
			body:           `{"name":"A","email":"a@x.com","password":"p"}`,
			service:        &fakeAuthService{signUpErr: service.ErrUserExists},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "user already exists",
		},
		{
			name:           "store failure",
			body:           `{"name":"A","email":"a@x.com","password":"p"}`,
			service:        &fakeAuthService{signUpErr: fmt.Errorf("%w: %w", service.ErrStoreFailure, errors.New("conn reset"))},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "internal error",
		},
		{
			name:           "created",
			body:           `{"name":"A","email":"a@x.com","password":"p"}`,
			service:        &fakeAuthService{session: validSession()},
			expectedCode:   http.StatusCreated,
			expectedSubstr: "User created",
			wantCookie:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/user/create", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service}
			h.SignUp(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}

			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(res.Body); err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, buf.String())
			}

			c := findCookie(res)
			if tt.wantCookie && (c == nil || c.Value != "signed-token") {
				t.Errorf("expected session cookie, got %+v", c)
			}
			if !tt.wantCookie && c != nil {
				t.Errorf("did not expect a cookie, got %+v", c)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		body         string
		service      *fakeAuthService
		expectedCode int
		expectedJSON map[string]string
		wantCookie   bool
	}{
		{
			name:         "bad body",
			method:       "POST",
			body:         `{`,
			service:      &fakeAuthService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "wrong password",
			method:       "POST",
			body:         `{"email":"a@x.com","password":"nope"}`,
			service:      &fakeAuthService{loginErr: service.ErrInvalidCredentials},
			expectedCode: http.StatusUnauthorized,
			expectedJSON: map[string]string{"message": "Invalid credentials"},
		},
		{
			name:         "store failure",
			method:       "GET",
			body:         `{"email":"a@x.com","password":"p"}`,
			service:      &fakeAuthService{loginErr: service.ErrStoreFailure},
			expectedCode: http.StatusInternalServerError,
		},
		{
			name:         "successful login via GET",
			method:       "GET",
			body:         `{"email":"a@x.com","password":"p"}`,
			service:      &fakeAuthService{session: validSession()},
			expectedCode: http.StatusOK,
			expectedJSON: map[string]string{"message": "Logged in successfully"},
			wantCookie:   true,
		},
		{
			name:         "successful login via POST",
			method:       "POST",
			body:         `{"email":"a@x.com","password":"p"}`,
			service:      &fakeAuthService{session: validSession()},
			expectedCode: http.StatusOK,
			wantCookie:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/auth/login", bytes.NewBufferString(tt.body))

			h := &AuthHandler{AuthService: tt.service}
			h.Login(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("%s: expected status %d, got %d", tt.name, tt.expectedCode, res.StatusCode)
			}

			if tt.expectedJSON != nil {
				var payload map[string]string
				if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
					t.Fatalf("failed to decode JSON: %v", err)
				}
				for k, v := range tt.expectedJSON {
					if payload[k] != v {
						t.Errorf("expected %s=%q, got %q", k, v, payload[k])
					}
				}
			}

			if got := findCookie(res) != nil; got != tt.wantCookie {
				t.Errorf("cookie set = %v; want %v", got, tt.wantCookie)
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("without cookie", func(t *testing.T) {
		svc := &fakeAuthService{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/auth/logout", nil)

		(&AuthHandler{AuthService: svc}).Logout(rec, req)
		res := rec.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		if len(svc.loggedOut) != 0 {
			t.Errorf("service should not be called without a cookie, got %v", svc.loggedOut)
		}
		c := findCookie(res)
		if c == nil || c.MaxAge >= 0 || c.Value != "" {
			t.Errorf("expected a clearing cookie, got %+v", c)
		}
	})

	t.Run("with cookie", func(t *testing.T) {
		svc := &fakeAuthService{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "tok"})

		(&AuthHandler{AuthService: svc}).Logout(rec, req)
		res := rec.Result()
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", res.StatusCode)
		}
		if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "tok" {
			t.Errorf("expected logout of tok, got %v", svc.loggedOut)
		}
	})
}
