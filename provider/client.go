package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the hosted auth provider's REST API (GoTrue-compatible).
// All account and password handling lives on the provider side; this client
// only exchanges credentials and tokens.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// APIError is a definitive answer from the provider (4xx). It is never
// transient.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider: %s (status %d)", e.Message, e.Status)
}

// IsTransient reports whether err gives no definitive answer about the
// session: network failures and provider 5xx responses. Callers treat these
// as "keep current state", never as a sign-out.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return true
}

// SignUp creates an auth user. The provider sends the verification email
// with a redirect back to redirectTo.
func (c *Client) SignUp(ctx context.Context, email, password, redirectTo string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	q := url.Values{}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}

	var user User
	if err := c.do(ctx, http.MethodPost, "/signup", q, "", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignInWithPassword runs the password grant and returns the issued session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	q := url.Values{"grant_type": []string{"password"}}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/token", q, "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ExchangeCode trades the one-time code from the email redirect for a session.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	body := map[string]string{"auth_code": code}
	q := url.Values{"grant_type": []string{"pkce"}}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/token", q, "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetUser validates an access token. (nil, nil) means the provider explicitly
// rejected the token: there is no session. Errors mean the check itself
// failed and nothing can be concluded.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/user", nil, accessToken, nil, &user)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// SignOut revokes the session behind accessToken with the given scope.
func (c *Client) SignOut(ctx context.Context, accessToken, scope string) error {
	q := url.Values{}
	if scope != "" {
		q.Set("scope", scope)
	}
	return c.do(ctx, http.MethodPost, "/logout", q, accessToken, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var payload struct {
		Msg         string `json:"msg"`
		Message     string `json:"message"`
		Description string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		switch {
		case payload.Msg != "":
			apiErr.Message = payload.Msg
		case payload.Message != "":
			apiErr.Message = payload.Message
		case payload.Description != "":
			apiErr.Message = payload.Description
		}
	}
	return apiErr
}
