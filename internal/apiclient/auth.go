package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nexstore/storefront/internal/domain"
)

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. The auth endpoint takes
// an OAuth2 password form, not JSON.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req := request{
		method:      http.MethodPost,
		path:        "/auth/jwt/login",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}

	var tok Token
	if err := c.call(ctx, req, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	req, err := jsonRequest(http.MethodGet, "/users/me", token, nil)
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := c.call(ctx, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*domain.User, error) {
	req, err := jsonRequest(http.MethodPost, "/auth/register", "", in)
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := c.call(ctx, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
