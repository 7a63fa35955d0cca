package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/logger"
	"quizhive/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrInvalidJWTToken    = errors.New("invalid jwt token")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	CreateJWT(ctx context.Context, user *domain.User) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authServiceImpl struct {
	userRepo  domain.UserRepository
	secretKey []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new instance of AuthService. The signing key is
// passed in explicitly at construction so no ambient process-wide secret
// exists.
func NewAuthService(userRepo domain.UserRepository, secretKey string, tokenTTL time.Duration) (AuthService, error) {
	if secretKey == "" {
		return nil, errors.New("jwt secret key for auth service is not configured")
	}
	if tokenTTL <= 0 {
		tokenTTL = 3 * time.Hour
	}
	return &authServiceImpl{
		userRepo:  userRepo,
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}, nil
}

// Register creates a new account. The password is stored exactly as given:
// the missing hashing is a documented product gap that is preserved, not
// silently fixed.
func (s *authServiceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, domain.NewInvalidInputError("username and password are required")
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("failed to check username availability", err)
	}
	if existing != nil {
		return nil, domain.NewInvalidInputError("username is already taken")
	}

	user := &domain.User{
		ID:       util.NewULID(),
		Username: username,
		Password: password,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, domain.NewInternalError("failed to create user", err)
	}

	logger.Get().Info("User registered", zap.String("userID", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login verifies the credential pair and issues a bearer token.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.NewInvalidInputError("username and password are required")
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", domain.NewInternalError("failed to look up user", err)
	}
	if user == nil || user.Password != password {
		return "", domain.NewUnauthorizedError(ErrInvalidCredentials.Error())
	}

	token, err := s.CreateJWT(ctx, user)
	if err != nil {
		return "", domain.NewInternalError("failed to create token", err)
	}

	logger.Get().Info("User logged in", zap.String("userID", user.ID))
	return token, nil
}

// CreateJWT signs an HS256 token carrying the user id and username.
func (s *authServiceImpl) CreateJWT(ctx context.Context, user *domain.User) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ValidateJWT parses and verifies a bearer token.
func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Warn("JWT token expired",
				zap.String("token_snippet", tokenString[:min(len(tokenString), 20)]+"..."))
		} else {
			logger.Get().Warn("JWT validation failed",
				zap.Error(err),
				zap.String("token_snippet", tokenString[:min(len(tokenString), 20)]+"..."))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}
