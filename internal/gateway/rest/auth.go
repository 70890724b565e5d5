package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"propmanager/internal/core"
	"propmanager/internal/gateway"
)

// Login exchanges email and password for a token. The session is not
// touched here; the caller decides whether to persist the result.
func (c *Client) Login(ctx context.Context, email, password string) (gateway.AuthResponse, error) {
	if err := core.ValidateLogin(email, password); err != nil {
		return gateway.AuthResponse{}, err
	}
	email = strings.TrimSpace(email)
	var out gateway.AuthResponse
	err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      map[string]string{"email": email, "password": password},
		out:       &out,
		anonymous: true,
		fallback:  "Invalid credentials",
	})
	if err != nil {
		return gateway.AuthResponse{}, err
	}
	if out.Token == "" {
		return gateway.AuthResponse{}, errors.New("login response carried no token")
	}
	return out, nil
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, email, password, name string) (gateway.AuthResponse, error) {
	if err := core.ValidateRegistration(email, password, name); err != nil {
		return gateway.AuthResponse{}, err
	}
	email = strings.TrimSpace(email)
	var out gateway.AuthResponse
	err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/register",
		body:      map[string]string{"email": email, "password": password, "name": name},
		out:       &out,
		anonymous: true,
		fallback:  "Registration failed",
	})
	if err != nil {
		return gateway.AuthResponse{}, err
	}
	if out.Token == "" {
		return gateway.AuthResponse{}, errors.New("register response carried no token")
	}
	return out, nil
}
