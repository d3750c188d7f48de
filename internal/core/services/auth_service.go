package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/logger"
)

var emailPattern = regexp.MustCompile(`^[\w\-\.]+@([\w\-]+\.)+[\w\-]{2,4}$`)

const minPasswordLength = 8

type authService struct {
	users      ports.UserRepository
	logger     *logger.Logger
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type AuthServiceConfig struct {
	Users      ports.UserRepository
	Logger     *logger.Logger
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewAuthService(cfg AuthServiceConfig) ports.AuthService {
	accessTTL := cfg.AccessTTL
	if accessTTL == 0 {
		accessTTL = time.Hour
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &authService{
		users:      cfg.Users,
		logger:     cfg.Logger,
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.logger.Warnw("auth_register_email_exists", "email", email)
		return nil, domain.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Errorw("auth_register_failed", "email", email, "error", err)
		return nil, err
	}

	s.logger.Infow("auth_register_ok", "user_id", user.ID, "email", email)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (ports.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return ports.TokenPair{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warnw("auth_login_bad_password", "email", email)
		return ports.TokenPair{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return ports.TokenPair{}, domain.ErrUserDisabled
	}

	access, err := s.issueToken(user.ID, "access", s.accessTTL)
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := s.issueToken(user.ID, "refresh", s.refreshTTL)
	if err != nil {
		return ports.TokenPair{}, err
	}

	s.logger.Infow("auth_login_ok", "user_id", user.ID)
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) issueToken(userID uint, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", userID),
		"type": kind,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) VerifyAccess(token string) (uint, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return 0, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, domain.ErrInvalidToken
	}
	if kind, _ := claims["type"].(string); kind != "access" {
		return 0, domain.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, domain.ErrInvalidToken
	}
	var userID uint
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil {
		return 0, domain.ErrInvalidToken
	}
	return userID, nil
}
