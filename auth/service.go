package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/audiostream-go/apperror"
	"github.com/user/audiostream-go/config"
	"github.com/user/audiostream-go/logger"
	"github.com/user/audiostream-go/subscriptions"
)

// Token types embedded in claims.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// bcryptCost matches the cost the original user records were hashed with.
const bcryptCost = 12

// tokenIssuer identifies tokens minted by this service.
const tokenIssuer = "audiostream"

// Claims is the JWT payload. Role and subscription are snapshots taken at
// mint time; changes to the backing identity are not reflected until re-mint.
type Claims struct {
	UserID       int64                  `json:"user_id"`
	Role         string                 `json:"role"`
	Subscription *subscriptions.Summary `json:"subscription,omitempty"`
	TokenType    string                 `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// Service provides registration, login, and token issuance.
type Service struct {
	strategies []CredentialStrategy
	users      UserStore
	subs       subscriptions.Store
	cfg        config.AuthConfig
	log        logger.Logger
}

// NewService creates an auth Service. Strategies are tried in order on login;
// the first match wins.
func NewService(strategies []CredentialStrategy, users UserStore, subs subscriptions.Store, cfg config.AuthConfig, log logger.Logger) *Service {
	return &Service{
		strategies: strategies,
		users:      users,
		subs:       subs,
		cfg:        cfg,
		log:        log,
	}
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with role "user" and a free subscription.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("invalid fields", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		HashedPassword: string(hashedPassword),
		Role:           RoleUser,
		Status:         StatusActive,
	}

	createdUser, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.subs.StartFree(ctx, createdUser.ID); err != nil {
		// Registration already succeeded; the user simply starts without a
		// subscription row until one is created elsewhere.
		s.log.Warn("failed to start free subscription",
			logger.Int64("user_id", createdUser.ID), logger.Error(err))
	}

	return createdUser, nil
}

// Login resolves credentials through the strategy list and mints tokens.
// Unknown email, wrong password, and lookup failure all produce the same
// rejection; lookup failures are logged server-side first.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("invalid fields", err)
	}

	for _, strategy := range s.strategies {
		identity, err := strategy.Resolve(ctx, req.Email, req.Password)
		if err != nil {
			if !errors.Is(err, ErrNoMatch) {
				s.log.Error("credential strategy failed",
					logger.String("strategy", strategy.Name()), logger.Error(err))
			}
			continue
		}
		s.log.Info("user authenticated",
			logger.String("strategy", strategy.Name()), logger.Int64("user_id", identity.ID))
		return s.generateTokens(identity)
	}

	return nil, apperror.NewAuthError("invalid credentials", nil)
}

// RefreshToken validates a refresh token and mints a new access token carrying
// the same claims. The refresh token is returned unchanged.
func (s *Service) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenResponse, error) {
	claims, err := ValidateToken(refreshTokenString, s.cfg.JWTSecret, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError("invalid refresh token", err)
	}

	identity := &Identity{
		ID:           claims.UserID,
		Role:         claims.Role,
		Subscription: claims.Subscription,
	}

	accessToken, accessExpiresAt, err := s.mintToken(identity, tokenTypeAccess, s.cfg.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new access token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		TokenType:    "Bearer",
		ExpiresAt:    accessExpiresAt.Unix(),
	}, nil
}

func (s *Service) generateTokens(identity *Identity) (*TokenResponse, error) {
	accessToken, accessExpiresAt, err := s.mintToken(identity, tokenTypeAccess, s.cfg.AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, _, err := s.mintToken(identity, tokenTypeRefresh, s.cfg.RefreshTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    accessExpiresAt.Unix(),
	}, nil
}

func (s *Service) mintToken(identity *Identity, tokenType string, duration time.Duration) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(duration)
	claims := &Claims{
		UserID:       identity.ID,
		Role:         identity.Role,
		Subscription: identity.Subscription,
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", identity.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expirationTime, nil
}

// ValidateToken parses a JWT string and checks its signature, expiry, and
// token type. It is shared by the middleware and the refresh flow.
func ValidateToken(tokenString, secret, expectedTokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedTokenType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedTokenType, claims.TokenType)
	}
	return claims, nil
}
