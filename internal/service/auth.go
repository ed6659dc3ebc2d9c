package service

import (
	"achievify/internal/models"
	"achievify/internal/repository"
	"achievify/pkg/apperror"
	"achievify/pkg/logger"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

type AuthService struct {
	users    UserStore
	validate *validator.Validate
	log      *logger.Loggers
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService builds the auth service. An empty secret disables tokens.
func NewAuthService(users UserStore, v *validator.Validate, log *logger.Loggers, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		validate: v,
		log:      log,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) error {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return invalid(err, "Missing required fields")
	}

	taken, err := s.users.UsernameExists(ctx, req.Username)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if taken {
		s.log.Security.Warn("Duplicate username", zap.String("username", req.Username))
		return apperror.Conflict("Username already taken")
	}
	taken, err = s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if taken {
		s.log.Security.Warn("Duplicate email", zap.String("username", req.Username))
		return apperror.Conflict("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, &models.User{
		FullName:     req.FullName,
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
	})
	if err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			s.log.Security.Warn("Duplicate registration", zap.String("field", dup.Field))
			if dup.Field == "email" {
				return apperror.Conflict("Email already registered")
			}
			return apperror.Conflict("Username already taken")
		}
		return fmt.Errorf("register: %w", err)
	}

	s.log.Audit.Info("User registered", zap.Int64("user_id", user.ID))
	return nil
}

// Login matches the identifier exactly against username or email.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, invalid(err, "Missing credentials")
	}

	user, err := s.users.FindUserByLogin(ctx, req.UserOrEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Security.Warn("Login for unknown user")
			return nil, apperror.NotFound("User not found")
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Security.Warn("Invalid password", zap.Int64("user_id", user.ID))
		return nil, apperror.InvalidCredentials("Invalid password")
	}

	result := &models.LoginResult{User: user.Public()}
	if s.TokensEnabled() {
		token, err := s.issueToken(user.ID)
		if err != nil {
			return nil, err
		}
		result.Token = token
	}

	s.log.Audit.Info("Login success", zap.Int64("user_id", user.ID))
	return result, nil
}

func (s *AuthService) TokensEnabled() bool {
	return len(s.secret) > 0
}

func (s *AuthService) issueToken(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     s.now().Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken returns the user a bearer token was issued to.
func (s *AuthService) VerifyToken(raw string) (int64, error) {
	if !s.TokensEnabled() {
		return 0, apperror.Unauthorized("Tokens are not enabled")
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, apperror.Unauthorized("Invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, apperror.Unauthorized("Invalid token claims")
	}
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < s.now().Unix() {
		return 0, apperror.Unauthorized("Token expired")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, apperror.Unauthorized("Invalid user ID in token")
	}
	return int64(userID), nil
}
