package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/flicky/homeclick-store/internal/dto"
	"github.com/flicky/homeclick-store/internal/identity"
	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/repository"
	"github.com/flicky/homeclick-store/internal/session"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// WelcomeRequester must not fail registration.
type WelcomeRequester interface {
	RequestWelcome(ctx context.Context, email, name string)
}

type AuthService struct {
	store     repository.TxStore
	userRepo  repository.UserRepository
	sessions  session.Store
	welcome   WelcomeRequester
	jwtSecret []byte
	jwtExpiry time.Duration
}

func NewAuthService(store repository.TxStore, userRepo repository.UserRepository, sessions session.Store, welcome WelcomeRequester, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{store: store, userRepo: userRepo, sessions: sessions, welcome: welcome, jwtSecret: []byte(jwtSecret), jwtExpiry: jwtExpiry}
}

// Register creates a user together with its customer profile.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Email: email, Password: string(hashed)}
	customer := &model.Customer{Name: strings.TrimSpace(req.Name), Email: email}
	err = s.store.InTx(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Users.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if existing != nil {
			return ErrUserAlreadyExists
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrUserAlreadyExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		customer.UserID = user.ID
		if err := repos.Customers.Create(ctx, customer); err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.welcome.RequestWelcome(ctx, customer.Email, customer.Name)
	return s.issue(user, customer)
}

// EnsureAdmin creates a user without a customer profile unless the email is taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	if existing != nil {
		return false, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.Create(ctx, &model.User{Email: email, Password: string(hashed)}); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user, nil)
}

// Logout forgets the discount and checkout summary of the caller's session.
// The token itself stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, id identity.Identity) error {
	if id.Kind == identity.Anonymous || id.SessionID == "" {
		return ErrUnauthenticated
	}
	if err := s.sessions.Clear(ctx, id.SessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// issue signs a token for a fresh session; sid keys the session-scoped state.
func (s *AuthService) issue(user *model.User, customer *model.Customer) (*dto.AuthResponse, error) {
	sessionID := uuid.NewString()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"sid": sessionID,
		"exp": now.Add(s.jwtExpiry).Unix(),
		"iat": now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	resp := &dto.AuthResponse{Token: token, User: dto.UserResponse{ID: user.ID, Email: user.Email}}
	if customer != nil {
		resp.User.Name = customer.Name
	}
	return resp, nil
}
