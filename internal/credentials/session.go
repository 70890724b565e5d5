package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"propmanager/internal/core"
)

// Session is the credential context handed to the gateway. Each gateway
// gets its own Session, so independent sessions never share state.
type Session struct {
	mu    sync.RWMutex
	store Store
	token string
	user  *core.User
}

// NewSession loads any credential persisted in store.
func NewSession(ctx context.Context, store Store) (*Session, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Session{store: store}

	token, ok, err := store.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if ok {
		s.token = token
	}

	raw, ok, err := store.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if ok && raw != "" {
		var u core.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			// A corrupt profile is dropped rather than failing startup.
			slog.WarnContext(ctx, "Discarding unreadable stored user profile", "error", err)
		} else {
			s.user = &u
		}
	}
	return s, nil
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the stored profile.
func (s *Session) User() (core.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return core.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports token presence.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Set persists a new credential. Token and profile are written together;
// on failure both the store and the session keep their previous state.
func (s *Session) Set(ctx context.Context, token string, user core.User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SetAll(ctx, map[string]string{KeyToken: token, KeyUser: string(profile)}); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	s.token = token
	s.user = &user
	return nil
}

// Clear forgets the credential in memory and in the store. The in-memory
// state is dropped even if the store fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// ClearIf clears the session only while it still holds token, so a 401
// for a request sent with an old token cannot wipe a newer login. It
// reports whether the session was cleared.
func (s *Session) ClearIf(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		return false, nil
	}
	s.token = ""
	s.user = nil
	if err := s.store.Clear(ctx); err != nil {
		return true, fmt.Errorf("clear credentials: %w", err)
	}
	return true, nil
}

// ExpiresAt reads the exp claim of a JWT token without verifying it.
// ok is false when there is no token or it carries no expiry.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the token is known to have expired at now.
// Opaque tokens are never considered expired locally.
func (s *Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}
