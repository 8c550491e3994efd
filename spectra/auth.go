package spectra

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/etnz/aurora"
)

// TokenPair is the authentication response of the backend.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login authenticates with the backend and stores the returned tokens.
func (c *Client) Login(ctx context.Context, creds aurora.Credentials) (*TokenPair, error) {
	var pair TokenPair
	err := c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      c.endpoints.Login,
		Body:      creds,
		Anonymous: true,
	}, &pair)
	if err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, errors.New("login response without access token")
	}
	if err := c.setTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, err
	}
	c.log.Info("signed in", "username", creds.Username)
	return &pair, nil
}

// Logout forgets both tokens. The backend is not called.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.clearTokens(ctx); err != nil {
		return fmt.Errorf("cannot clear session: %w", err)
	}
	c.log.Info("signed out")
	return nil
}

// Me returns the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*aurora.User, error) {
	var u aurora.User
	if err := c.Get(ctx, c.endpoints.Me, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates a new user account. It does not sign in.
func (c *Client) Register(ctx context.Context, user aurora.UserCreate) (*aurora.User, error) {
	var u aurora.User
	err := c.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      c.endpoints.Register,
		Body:      user,
		Anonymous: true,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// User returns a user profile by id.
func (c *Client) User(ctx context.Context, id string) (*aurora.User, error) {
	var u aurora.User
	if err := c.Get(ctx, PathUser(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
