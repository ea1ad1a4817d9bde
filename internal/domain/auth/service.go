package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/domain/user"
	"github.com/faildaily/faildaily-api/internal/pkg/jwt"
	"github.com/faildaily/faildaily-api/internal/pkg/logger"
	"github.com/faildaily/faildaily-api/internal/pkg/password"
)

// Service handles authentication business logic
type Service struct {
	userRepo   user.Repository
	jwtService *jwt.Service
}

// NewService creates auth service
func NewService(userRepo user.Repository, jwtService *jwt.Service) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register creates a new account with the default role
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.DisplayName = normalizeDisplayName(req.DisplayName)

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return s.generateTokens(u)
}

// Login authenticates user
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(u)
}

// GetCurrentUser returns current user by ID
func (s *Service) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	resp := NewUserResponse(u)
	return &resp, nil
}

// SetRole changes a user's role. Callers must already be admins; an admin
// cannot demote themselves.
func (s *Service) SetRole(ctx context.Context, actorID, userID uuid.UUID, role string) (*UserResponse, error) {
	if !user.IsValidRole(role) {
		return nil, user.ErrInvalidRole
	}
	if actorID == userID && user.Role(role) != user.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	if err := s.userRepo.UpdateRole(ctx, userID, user.Role(role)); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("target_user_id", userID.String()).
		Str("role", role).
		Msg("User role changed")

	return s.GetCurrentUser(ctx, userID)
}

func (s *Service) generateTokens(u *user.User) (*AuthResponse, error) {
	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User: NewUserResponse(u),
		Tokens: TokensResponse{
			AccessToken: accessToken,
			ExpiresIn:   int(time.Until(expiresAt).Seconds()),
			TokenType:   "Bearer",
		},
	}, nil
}
