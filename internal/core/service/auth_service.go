package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type RegisterRequest struct {
	Username        string `json:"username" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
}

// AuthService produces the process-wide session. Every other view reads it.
type AuthService struct {
	users  port.UserRepository
	logger *zap.Logger

	mu      sync.RWMutex
	session domain.Session
}

func NewAuthService(users port.UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if username == "" || password == "" {
		return domain.Session{}, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return domain.Session{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil || user.PasswordHash == "" ||
		subtle.ConstantTimeCompare([]byte(user.PasswordHash), []byte(password)) != 1 {
		return domain.Session{}, ErrInvalidCredentials
	}

	session := domain.NewSession(*user)
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	s.logger.Info("logged in", zap.String("username", session.Username), zap.String("role", string(session.Role)))
	return session, nil
}

func (s *AuthService) Logout() {
	s.mu.Lock()
	username := s.session.Username
	s.session = domain.Session{}
	s.mu.Unlock()

	if username != "" {
		s.logger.Info("logged out", zap.String("username", username))
	}
}

// Session returns the current session and whether someone is logged in.
func (s *AuthService) Session() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.session.LoggedIn()
}

func (s *AuthService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, fmt.Errorf("%w: username is required", ErrValidation)
	}
	users, err := s.users.SearchUsers(ctx, username)
	if err != nil {
		return false, fmt.Errorf("search users: %w", err)
	}
	for _, u := range users {
		if u.Username == username {
			return false, nil
		}
	}
	return true, nil
}

// Register creates a customer account and its backend cart. A failure to
// create the cart is logged and does not fail the registration.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := domain.CheckPasswordStrength(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	available, err := s.UsernameAvailable(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrUsernameTaken
	}

	user, err := s.users.CreateUser(ctx, domain.User{
		Username:     req.Username,
		PasswordHash: req.Password,
		Email:        req.Email,
		Role:         domain.RoleCustomer,
	})
	if err != nil {
		return nil, err
	}

	if err := s.users.CreateCart(ctx, user.ID, user.Username); err != nil {
		s.logger.Warn("create cart for new user failed", zap.String("username", user.Username), zap.Error(err))
	}

	s.logger.Info("registered", zap.String("username", user.Username))
	return user, nil
}

func (s *AuthService) Profile(ctx context.Context, session domain.Session) (*domain.User, error) {
	if !session.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	user, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
