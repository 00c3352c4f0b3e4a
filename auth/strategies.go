package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/audiostream-go/logger"
	"github.com/user/audiostream-go/subscriptions"
)

// ErrNoMatch is returned by a credential strategy when the supplied pair does
// not resolve to an identity. It is never surfaced to callers; the service
// folds it into a uniform rejection.
var ErrNoMatch = errors.New("credentials do not match")

// Identity is the outcome of successful credential resolution.
type Identity struct {
	ID           int64
	Name         string
	Email        string
	Role         string
	Subscription *subscriptions.Summary
}

// CredentialStrategy resolves an email/password pair to an identity. The
// service tries strategies in order; the first match wins.
type CredentialStrategy interface {
	Name() string
	Resolve(ctx context.Context, email, password string) (*Identity, error)
}

type demoAccount struct {
	id       int64
	email    string
	password string
	name     string
	role     string
}

// DemoStrategy accepts a fixed in-memory allow-list of demo accounts with
// plaintext passwords. It exists for reviewer convenience and is assembled
// into the strategy list only when AUTH_DEMO_LOGINS is enabled.
type DemoStrategy struct {
	accounts []demoAccount
}

// NewDemoStrategy creates the strategy with the four fixed demo pairs.
func NewDemoStrategy() *DemoStrategy {
	return &DemoStrategy{
		accounts: []demoAccount{
			{id: 1, email: "demo@example.com", password: "demo123", name: "Demo User", role: RoleUser},
			{id: 2, email: "admin@example.com", password: "admin123", name: "Admin User", role: RoleAdmin},
			{id: 3, email: "user@audiostreampro.com", password: "user123", name: "John Doe", role: RoleUser},
			{id: 4, email: "admin@audiostreampro.com", password: "admin123", name: "Admin User", role: RoleAdmin},
		},
	}
}

func (s *DemoStrategy) Name() string { return "demo" }

// Resolve compares against every account using constant-time comparison.
// Demo identities carry no subscription.
func (s *DemoStrategy) Resolve(_ context.Context, email, password string) (*Identity, error) {
	var match *demoAccount
	for i := range s.accounts {
		acct := &s.accounts[i]
		emailOK := subtle.ConstantTimeCompare([]byte(acct.email), []byte(email)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(acct.password), []byte(password)) == 1
		if emailOK && passOK {
			match = acct
		}
	}
	if match == nil {
		return nil, ErrNoMatch
	}
	return &Identity{
		ID:    match.id,
		Name:  match.name,
		Email: match.email,
		Role:  match.role,
	}, nil
}

// DatabaseStrategy resolves credentials against persisted users: lookup by
// normalized email, then bcrypt comparison against the stored hash.
type DatabaseStrategy struct {
	users UserStore
	subs  subscriptions.Store
	log   logger.Logger
}

// NewDatabaseStrategy creates a DatabaseStrategy.
func NewDatabaseStrategy(users UserStore, subs subscriptions.Store, log logger.Logger) *DatabaseStrategy {
	return &DatabaseStrategy{users: users, subs: subs, log: log}
}

func (s *DatabaseStrategy) Name() string { return "database" }

func (s *DatabaseStrategy) Resolve(ctx context.Context, email, password string) (*Identity, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrNoMatch
		}
		// Lookup failure propagates; the service degrades it to a rejection.
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrNoMatch
	}

	summary, err := s.subs.ActiveSummary(ctx, user.ID)
	if err != nil {
		// A missing summary only degrades the claims, not the login.
		s.log.Warn("failed to load subscription summary for claims",
			logger.Int64("user_id", user.ID), logger.Error(err))
		summary = nil
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to record last login",
			logger.Int64("user_id", user.ID), logger.Error(err))
	}

	return &Identity{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		Subscription: summary,
	}, nil
}
