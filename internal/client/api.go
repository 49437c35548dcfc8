package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atinyakov/cookieauth/internal/models"
)

// SessionCookieName is the cookie the server uses for session tokens.
const SessionCookieName = "auth_token"

const (
	pathCreate = "/user/create"
	pathLogin  = "/auth/login"
	pathLogout = "/auth/logout"
	pathMe     = "/user/me"
	pathAll    = "/user/all"
)

// ErrNotLoggedIn is returned by calls that need a session when none is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to the authentication API and persists the session cookie.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Sessions *SessionStore
}

// New constructs a Client. A nil httpClient uses http.DefaultClient.
func New(baseURL string, httpClient *http.Client, sessions *SessionStore) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     httpClient,
		Sessions: sessions,
	}
}

// SignUp creates an account and stores the session the server issues for it.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (string, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.authenticate(ctx, http.MethodPost, pathCreate, body)
}

// Login stores a new session for the given credentials.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, http.MethodPost, pathLogin, body)
}

// Logout ends the stored session on the server and forgets it locally.
// It succeeds when no session is stored.
func (c *Client) Logout(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, pathLogout, nil, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	msg, err := readMessage(resp)
	if err != nil {
		return "", err
	}
	if err := c.Sessions.Clear(); err != nil {
		return "", err
	}
	return msg, nil
}

// Me returns the record of the logged-in user.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	sess, err := c.Sessions.Load()
	if err != nil {
		return models.User{}, err
	}
	if !sess.Valid(time.Now()) {
		return models.User{}, ErrNotLoggedIn
	}

	resp, err := c.do(ctx, http.MethodGet, pathMe, nil, true)
	if err != nil {
		return models.User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.User{}, apiError(resp)
	}

	var body struct {
		User []models.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.User{}, fmt.Errorf("decode response: %w", err)
	}
	if len(body.User) == 0 {
		return models.User{}, errors.New("empty user list in response")
	}
	return body.User[0], nil
}

// Users lists every registered user.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	resp, err := c.do(ctx, http.MethodGet, pathAll, nil, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var users []models.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return users, nil
}

func (c *Client) authenticate(ctx context.Context, method, path string, body any) (string, error) {
	resp, err := c.do(ctx, method, path, body, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	msg, err := readMessage(resp)
	if err != nil {
		return "", err
	}

	for _, ck := range resp.Cookies() {
		if ck.Name != SessionCookieName || ck.Value == "" {
			continue
		}
		sess := Session{Token: ck.Value}
		switch {
		case ck.MaxAge > 0:
			sess.ExpiresAt = time.Now().Add(time.Duration(ck.MaxAge) * time.Second)
		case !ck.Expires.IsZero():
			sess.ExpiresAt = ck.Expires
		}
		if err := c.Sessions.Save(sess); err != nil {
			return "", err
		}
		return msg, nil
	}
	return "", errors.New("server did not set a session cookie")
}

func (c *Client) do(ctx context.Context, method, path string, body any, withSession bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if withSession {
		sess, err := c.Sessions.Load()
		if err != nil {
			return nil, err
		}
		if sess.Token != "" {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// readMessage decodes a {"message": ...} body, turning non-2xx statuses into an *APIError.
func readMessage(resp *http.Response) (string, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apiError(resp)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return body.Message, nil
}

func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		body.Message = strings.TrimSpace(string(data))
	}
	return &APIError{Status: resp.StatusCode, Message: body.Message}
}
