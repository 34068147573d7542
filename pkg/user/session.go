package user

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/acadportal/eventportal/internal/utils"
	"github.com/acadportal/eventportal/pkg/storage"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

const (
	tokenKey = "auth.token"
	userKey  = "auth.user"
)

var (
	ErrNoSession    = errors.New("no active session")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ProfileFetcher loads the profile that belongs to a bearer token.
type ProfileFetcher interface {
	CurrentProfile(ctx context.Context, token string) (User, error)
}

// Session holds the auth token and the cached profile of the logged-in user.
// It is read by every request and written only by Login and Logout.
type Session struct {
	mu       sync.RWMutex
	repo     storage.Repository
	profiles ProfileFetcher
	clock    utils.Clock
	token    string
	user     *User
	onChange []func()
}

func NewSession(repo storage.Repository, profiles ProfileFetcher, clock utils.Clock) *Session {
	return &Session{repo: repo, profiles: profiles, clock: clock}
}

// OnChange registers f to run after every login and logout.
func (s *Session) OnChange(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, f)
}

func (s *Session) notify() {
	s.mu.RLock()
	listeners := append([]func(){}, s.onChange...)
	s.mu.RUnlock()
	for _, f := range listeners {
		f()
	}
}

// Restore loads a previously persisted session, if any.
func (s *Session) Restore(ctx context.Context) error {
	var token string
	if err := s.repo.Get(ctx, tokenKey, &token); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	var u User
	if err := s.repo.Get(ctx, userKey, &u); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.checkExpiry(token); err != nil {
		log.Infof("stored session discarded: %v", err)
		return s.Logout(ctx)
	}

	s.mu.Lock()
	s.token = token
	s.user = &u
	s.mu.Unlock()
	log.Infof("restored session of user %s", u.Id)
	return nil
}

func (s *Session) Login(ctx context.Context, token string) (User, error) {
	if err := s.checkExpiry(token); err != nil {
		return User{}, err
	}

	profile, err := s.profiles.CurrentProfile(ctx, token)
	if err != nil {
		return User{}, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.repo.Put(ctx, tokenKey, token); err != nil {
		return User{}, err
	}
	if err := s.repo.Put(ctx, userKey, profile); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	s.token = token
	s.user = &profile
	s.mu.Unlock()

	log.Infof("user %s logged in", profile.Id)
	s.notify()
	return profile, nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	s.notify()

	if err := s.repo.Delete(ctx, tokenKey); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userKey)
}

// Token returns the bearer token. An expired token ends the session.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return "", ErrNoSession
	}
	if err := s.checkExpiry(token); err != nil {
		if logoutErr := s.Logout(ctx); logoutErr != nil {
			log.Errorf("failed to clear expired session: %v", logoutErr)
		}
		return "", err
	}
	return token, nil
}

func (s *Session) CurrentUser() (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, ErrNoSession
	}
	return *s.user, nil
}

// checkExpiry reads the exp claim without verifying the signature; the backend verifies tokens.
func (s *Session) checkExpiry(token string) error {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if exp != nil && !exp.After(s.clock.Now()) {
		return ErrTokenExpired
	}
	return nil
}
