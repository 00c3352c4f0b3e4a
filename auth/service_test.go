package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/audiostream-go/apperror"
	"github.com/user/audiostream-go/config"
	"github.com/user/audiostream-go/logger"
)

type fakeStrategy struct {
	name     string
	identity *Identity
	err      error
	calls    int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Resolve(_ context.Context, _, _ string) (*Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func mustAppErr(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	appErr, ok := apperror.FromError(err)
	if !ok {
		t.Fatalf("error %v is not an *apperror.AppError", err)
	}
	return appErr
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
	}
}

func newTestService(strategies []CredentialStrategy, users UserStore, subs *fakeSubsStore) *Service {
	if users == nil {
		users = &fakeUserStore{}
	}
	if subs == nil {
		subs = &fakeSubsStore{}
	}
	return NewService(strategies, users, subs, testAuthConfig(), logger.NewNop())
}

func TestLogin_ValidatesBeforeStrategies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"malformed email", "not-an-email", "demo123"},
		{"empty email", "", "demo123"},
		{"empty password", "demo@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := &fakeStrategy{name: "counting"}
			service := newTestService([]CredentialStrategy{strategy}, nil, nil)

			_, err := service.Login(context.Background(), LoginRequest{Email: tt.email, Password: tt.password})

			require.Error(t, err)
			assert.Equal(t, apperror.ValidationError, mustAppErr(t, err).Type)
			assert.Equal(t, 0, strategy.calls, "strategies must not run on malformed input")
		})
	}
}

func TestLogin_ShortPasswordFailsLikeUnknownEmail(t *testing.T) {
	t.Parallel()

	users := &fakeUserStore{user: &User{
		ID:             7,
		Email:          "a@b.com",
		Role:           RoleUser,
		HashedPassword: hashPassword(t, "rightpassword"),
	}}
	strategy := NewDatabaseStrategy(users, &fakeSubsStore{}, logger.NewNop())
	service := newTestService([]CredentialStrategy{strategy}, users, nil)

	_, shortErr := service.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "wrong"})
	_, unknownErr := service.Login(context.Background(), LoginRequest{Email: "x@y.com", Password: "wrongpassword"})

	require.Error(t, shortErr)
	require.Error(t, unknownErr)

	shortAppErr := mustAppErr(t, shortErr)
	unknownAppErr := mustAppErr(t, unknownErr)
	assert.Equal(t, apperror.AuthError, shortAppErr.Type)
	assert.Equal(t, unknownAppErr.Type, shortAppErr.Type)
	assert.Equal(t, unknownAppErr.StatusCode(), shortAppErr.StatusCode())
	assert.Equal(t, unknownAppErr.Message, shortAppErr.Message)
	assert.Equal(t, 2, users.findCalls, "a password shorter than the registration minimum must still be checked")
}

func TestLogin_FirstMatchWins(t *testing.T) {
	t.Parallel()

	first := &fakeStrategy{name: "first", identity: &Identity{ID: 1, Role: RoleUser}}
	second := &fakeStrategy{name: "second", identity: &Identity{ID: 2, Role: RoleAdmin}}
	service := newTestService([]CredentialStrategy{first, second}, nil, nil)

	tokens, err := service.Login(context.Background(), LoginRequest{Email: "demo@example.com", Password: "demo123"})
	require.NoError(t, err)

	claims, err := ValidateToken(tokens.AccessToken, "test-secret", "access")
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, 0, second.calls, "later strategies must not run after a match")
}

func TestLogin_StrategyFailureFoldsIntoRejection(t *testing.T) {
	t.Parallel()

	failing := &fakeStrategy{name: "failing", err: errors.New("connection refused")}
	service := newTestService([]CredentialStrategy{failing}, nil, nil)

	_, err := service.Login(context.Background(), LoginRequest{Email: "demo@example.com", Password: "demo123"})

	require.Error(t, err)
	appErr := mustAppErr(t, err)
	assert.Equal(t, apperror.AuthError, appErr.Type)
	assert.Equal(t, "invalid credentials", appErr.Message)
	assert.NotContains(t, appErr.Error(), "connection refused")
}

func TestLogin_NoMatchAnywhere(t *testing.T) {
	t.Parallel()

	a := &fakeStrategy{name: "a", err: ErrNoMatch}
	b := &fakeStrategy{name: "b", err: ErrNoMatch}
	service := newTestService([]CredentialStrategy{a, b}, nil, nil)

	_, err := service.Login(context.Background(), LoginRequest{Email: "demo@example.com", Password: "demo123"})

	require.Error(t, err)
	appErr := mustAppErr(t, err)
	assert.Equal(t, apperror.AuthError, appErr.Type)
	assert.Equal(t, "invalid credentials", appErr.Message)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestLogin_DemoTokenRoundTrip(t *testing.T) {
	t.Parallel()

	service := newTestService([]CredentialStrategy{NewDemoStrategy()}, nil, nil)

	tokens, err := service.Login(context.Background(), LoginRequest{
		Email:    "Admin@Example.com", // normalization lowercases before matching
		Password: "admin123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Greater(t, tokens.ExpiresAt, time.Now().Unix(), "expires_at carries the absolute access token expiry")

	access, err := ValidateToken(tokens.AccessToken, "test-secret", "access")
	require.NoError(t, err)
	assert.Equal(t, int64(2), access.UserID)
	assert.Equal(t, RoleAdmin, access.Role)
	assert.Nil(t, access.Subscription)

	refresh, err := ValidateToken(tokens.RefreshToken, "test-secret", "refresh")
	require.NoError(t, err)
	assert.Equal(t, int64(2), refresh.UserID)
}

func TestLogin_DemoPairsRejectedWithoutDemoStrategy(t *testing.T) {
	t.Parallel()

	// Only the database strategy is configured, as when AUTH_DEMO_LOGINS is
	// off. The fixed demo pairs must behave like any unknown credentials.
	db := NewDatabaseStrategy(&fakeUserStore{}, &fakeSubsStore{}, logger.NewNop())
	service := newTestService([]CredentialStrategy{db}, nil, nil)

	_, err := service.Login(context.Background(), LoginRequest{Email: "demo@example.com", Password: "demo123"})
	require.Error(t, err)
	assert.Equal(t, apperror.AuthError, mustAppErr(t, err).Type)
}

func TestValidateToken_RejectsWrongType(t *testing.T) {
	t.Parallel()

	service := newTestService([]CredentialStrategy{NewDemoStrategy()}, nil, nil)
	tokens, err := service.Login(context.Background(), LoginRequest{Email: "demo@example.com", Password: "demo123"})
	require.NoError(t, err)

	_, err = ValidateToken(tokens.RefreshToken, "test-secret", "access")
	assert.Error(t, err, "a refresh token must not pass as an access token")

	_, err = ValidateToken(tokens.AccessToken, "test-secret", "refresh")
	assert.Error(t, err)
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	service := newTestService([]CredentialStrategy{NewDemoStrategy()}, nil, nil)
	tokens, err := service.Login(context.Background(), LoginRequest{Email: "demo@example.com", Password: "demo123"})
	require.NoError(t, err)

	_, err = ValidateToken(tokens.AccessToken, "another-secret", "access")
	assert.Error(t, err)
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	t.Parallel()

	cfg := testAuthConfig()
	cfg.AccessTokenDuration = -1 * time.Minute
	service := NewService([]CredentialStrategy{NewDemoStrategy()}, &fakeUserStore{}, &fakeSubsStore{}, cfg, logger.NewNop())

	tokens, err := service.Login(context.Background(), LoginRequest{Email: "demo@example.com", Password: "demo123"})
	require.NoError(t, err)

	_, err = ValidateToken(tokens.AccessToken, "test-secret", "access")
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	service := newTestService([]CredentialStrategy{NewDemoStrategy()}, nil, nil)
	tokens, err := service.Login(context.Background(), LoginRequest{Email: "demo@example.com", Password: "demo123"})
	require.NoError(t, err)

	refreshed, err := service.RefreshToken(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := ValidateToken(refreshed.AccessToken, "test-secret", "access")
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, tokens.RefreshToken, refreshed.RefreshToken, "refresh token is reused, not rotated")
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	service := newTestService([]CredentialStrategy{NewDemoStrategy()}, nil, nil)
	tokens, err := service.Login(context.Background(), LoginRequest{Email: "demo@example.com", Password: "demo123"})
	require.NoError(t, err)

	_, err = service.RefreshToken(context.Background(), tokens.AccessToken)
	require.Error(t, err)
	assert.Equal(t, apperror.AuthError, mustAppErr(t, err).Type)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{}
	subs := &fakeSubsStore{}
	service := newTestService(nil, store, subs)

	user, err := service.Register(context.Background(), RegisterRequest{
		Name:     "New User",
		Email:    "New@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, StatusActive, user.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("secret123")))
	assert.Equal(t, 1, subs.startCalls, "registration opens a free subscription")
}

func TestRegister_SubscriptionFailureTolerated(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{}
	subs := &fakeSubsStore{startErr: errors.New("plans table empty")}
	service := newTestService(nil, store, subs)

	_, err := service.Register(context.Background(), RegisterRequest{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "secret123",
	})
	assert.NoError(t, err, "registration survives a StartFree failure")
}

func TestRegister_InvalidFields(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{}
	service := newTestService(nil, store, nil)

	_, err := service.Register(context.Background(), RegisterRequest{
		Name:     "New User",
		Email:    "not-an-email",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.ValidationError, mustAppErr(t, err).Type)
	assert.Nil(t, store.created)
}

func TestRegister_DuplicateEmailPassesThrough(t *testing.T) {
	t.Parallel()

	conflict := apperror.NewConflictError("email already exists", nil)
	store := &fakeUserStore{createErr: conflict}
	service := newTestService(nil, store, nil)

	_, err := service.Register(context.Background(), RegisterRequest{
		Name:     "New User",
		Email:    "taken@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.ConflictError, mustAppErr(t, err).Type)
}
