package service

import (
	"context"
	"errors"
	"strings"

	"minijudge/internal/common"
	"minijudge/internal/common/security"
	"minijudge/internal/domain/model"
	"minijudge/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	LoginField string `json:"login_field"` // username or email
	Password   string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.Errorf("username, email and password are required: %w", common.ErrValidation)
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, common.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		Role:           model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Carries common.ErrConflict when the username or email is taken.
		return nil, common.Errorf("failed to create user: %w", err)
	}
	return s.issueToken(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.LoginField == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.lookup(ctx, req.LoginField)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Same response as a bad password; account existence is not
			// disclosed.
			return nil, common.ErrUnauthorized
		}
		return nil, common.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}
	return s.issueToken(user)
}

// lookup resolves the login field as an email first, then as a username.
func (s *AuthService) lookup(ctx context.Context, field string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, field)
	if errors.Is(err, common.ErrNotFound) {
		return s.userRepo.FindByUsername(ctx, field)
	}
	return user, err
}

func (s *AuthService) issueToken(user *model.User) (*AuthResponse, error) {
	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, common.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // never leaves the service
	return &AuthResponse{User: user, Token: token}, nil
}
