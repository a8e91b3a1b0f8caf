package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountInactive    = shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	ErrTokenExpired       = shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	ErrTokenInvalid       = shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	ErrTokenMaxRefresh    = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if blacklist == nil {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login authenticates a user by email and password and returns tokens.
// Unknown emails and wrong passwords give the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email", zap.String("ip", input.IP))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt",
			zap.String("user_id", user.ID.String()),
			zap.String("ip", input.IP))
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("Login attempt for inactive account", zap.String("user_id", user.ID.String()))
		return nil, ErrAccountInactive
	}

	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.Bool("staff", user.IsStaff))
	return toTokenResult(pair, user), nil
}

// Refresh exchanges a refresh token for a new pair after reloading the user
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if revoked, err := s.isRevoked(ctx, claims); err != nil {
		return nil, err
	} else if revoked {
		return nil, ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	pair, err := s.jwtService.RefreshTokenPair(refreshToken, user)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	// the used refresh token cannot be replayed
	if err := s.blacklist.RevokeToken(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	return toTokenResult(pair, user), nil
}

// Logout revokes the current access token, or every token of the user
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI != "" {
		if err := s.blacklist.RevokeToken(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			return err
		}
	}
	if input.AllTokens {
		if err := s.blacklist.RevokeUser(ctx, input.UserID.String(),
			s.jwtService.GetRefreshTokenExpiration()); err != nil {
			return err
		}
	}
	s.logger.Info("User logged out",
		zap.String("user_id", input.UserID.String()),
		zap.Bool("all_sessions", input.AllTokens))
	return nil
}

// Authenticate validates an access token and loads its active user
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*identity.User, *auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, nil, mapTokenError(err)
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, nil, ErrTokenInvalid
	}
	if revoked, err := s.isRevoked(ctx, claims); err != nil {
		return nil, nil, err
	} else if revoked {
		return nil, nil, ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, ErrTokenInvalid
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrAccountInactive
	}
	return user, claims, nil
}

// Me returns the profile of a user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// CreateUser registers an account with a password
func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) (*identity.User, error) {
	user, err := identity.NewUser(input.Email, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(ctx, user.Email); err == nil {
		return nil, shared.ErrAlreadyExists.Withf("A user with email %s already exists", user.Email)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}
	user.IsStaff = input.IsStaff

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.Bool("staff", user.IsStaff))
	return user, nil
}

func (s *AuthService) isRevoked(ctx context.Context, claims *auth.Claims) (bool, error) {
	return s.blacklist.IsRevoked(ctx, claims.ID, claims.UserID, claims.GetIssuedAtTime())
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	default:
		return ErrTokenInvalid
	}
}

func toTokenResult(pair *auth.TokenPair, user *identity.User) *TokenResult {
	return &TokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserInfo(user),
	}
}
