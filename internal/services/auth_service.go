package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"propmanager/internal/core"
	"propmanager/internal/credentials"
	"propmanager/internal/gateway"
)

// AuthService logs users in and out of a session.
type AuthService struct {
	auth    gateway.Authenticator
	session *credentials.Session
	now     func() time.Time
}

func NewAuthService(auth gateway.Authenticator, session *credentials.Session) *AuthService {
	return &AuthService{auth: auth, session: session, now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return core.User{}, err
	}
	if err := s.session.Set(ctx, resp.Token, resp.User); err != nil {
		return core.User{}, fmt.Errorf("save session: %w", err)
	}
	slog.InfoContext(ctx, "Logged in", "user_id", resp.User.ID, "email", resp.User.Email)
	return resp.User, nil
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (core.User, error) {
	resp, err := s.auth.Register(ctx, email, password, name)
	if err != nil {
		return core.User{}, err
	}
	if err := s.session.Set(ctx, resp.Token, resp.User); err != nil {
		return core.User{}, fmt.Errorf("save session: %w", err)
	}
	slog.InfoContext(ctx, "Registered", "user_id", resp.User.ID, "email", resp.User.Email)
	return resp.User, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

// IsAuthenticated reports whether a token is held and not known to be expired.
func (s *AuthService) IsAuthenticated() bool {
	return s.session.IsAuthenticated() && !s.session.Expired(s.now())
}

func (s *AuthService) CurrentUser() (core.User, bool) {
	if !s.IsAuthenticated() {
		return core.User{}, false
	}
	return s.session.User()
}
