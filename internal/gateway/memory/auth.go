package memory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"propmanager/internal/core"
	"propmanager/internal/gateway"
)

// ErrInvalidToken is returned by VerifyToken for any unusable token.
var ErrInvalidToken = errors.New("invalid or expired token")

type account struct {
	user core.User
	hash []byte
}

// Claims is the payload of tokens issued by the gateway.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AddUser registers an account directly, bypassing the auth endpoints.
func (g *Gateway) AddUser(email, password, name string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return core.User{}, &gateway.RequestError{
			StatusCode: http.StatusBadRequest,
			Message:    "Email, password and name are required",
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.accounts[email]; exists {
		return core.User{}, &gateway.RequestError{
			StatusCode: http.StatusConflict,
			Message:    "Email already registered",
		}
	}
	u := core.User{ID: core.ID(strconv.Itoa(len(g.accounts) + 1)), Email: email, Name: name}
	g.accounts[email] = account{user: u, hash: hash}
	return u, nil
}

func (g *Gateway) Login(_ context.Context, email, password string) (gateway.AuthResponse, error) {
	g.mu.RLock()
	acc, ok := g.accounts[strings.ToLower(strings.TrimSpace(email))]
	g.mu.RUnlock()

	invalid := &gateway.RequestError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	if !ok {
		return gateway.AuthResponse{}, invalid
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return gateway.AuthResponse{}, invalid
	}
	return g.issue(acc.user)
}

func (g *Gateway) Register(_ context.Context, email, password, name string) (gateway.AuthResponse, error) {
	u, err := g.AddUser(email, password, name)
	if err != nil {
		return gateway.AuthResponse{}, err
	}
	return g.issue(u)
}

func (g *Gateway) issue(u core.User) (gateway.AuthResponse, error) {
	now := g.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
			Issuer:    "propmock",
		},
		Email: u.Email,
		Name:  u.Name,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return gateway.AuthResponse{}, fmt.Errorf("sign token: %w", err)
	}
	return gateway.AuthResponse{Token: signed, User: u}, nil
}

// VerifyToken checks a bearer token issued by this gateway and returns its user.
func (g *Gateway) VerifyToken(token string) (core.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(g.now))
	if err != nil || !parsed.Valid {
		return core.User{}, ErrInvalidToken
	}

	g.mu.RLock()
	acc, ok := g.accounts[strings.ToLower(claims.Email)]
	g.mu.RUnlock()
	if !ok || acc.user.ID.String() != claims.Subject {
		return core.User{}, ErrInvalidToken
	}
	return acc.user, nil
}
