// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/metrics"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
)

type UserInfo struct {
	ID           string
	TenantID     string
	RoleID       string
	RoleSlug     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	TokenVersion int
	CreatedAt    time.Time
}

// NewUser is a self-service registration. The provider picks the role.
type NewUser struct {
	TenantID  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// UserProvider is implemented by the user service. Every lookup is
// confined to one tenant.
type UserProvider interface {
	GetByEmail(ctx context.Context, tenantID, email string) (*UserInfo, error)
	GetByID(ctx context.Context, tenantID, id string) (*UserInfo, error)
	Create(ctx context.Context, in NewUser) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, tenantID, userID string) error
	UpdatePassword(ctx context.Context, tenantID, userID, passwordHash string) error
	TouchLastLogin(ctx context.Context, tenantID, userID string) error
}

// Session identifies the access token a request was made with.
type Session struct {
	TenantID  string
	UserID    string
	JTI       string
	ExpiresAt time.Time
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
	blacklist    *Blacklist
	metrics      *metrics.Metrics
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	userProvider UserProvider,
	blacklist *Blacklist,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:         repo,
		jwt:          jwt,
		userProvider: userProvider,
		blacklist:    blacklist,
		metrics:      m,
	}
}

type clientInfo struct {
	userAgent string
	ipAddress string
}

// Login answers unknown email and wrong password identically. The
// inactive-account error is only revealed after the password checks out.
func (s *Service) Login(
	ctx context.Context,
	tenantID string,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	resp, err := s.login(ctx, tenantID, req, clientInfo{userAgent, ipAddress})
	s.metrics.AuthAttempt("login", err == nil)
	return resp, err
}

func (s *Service) login(
	ctx context.Context,
	tenantID string,
	req LoginRequest,
	client clientInfo,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, tenantID, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(req.Password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, core.InactiveAccountError()
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.userProvider.UpdatePassword(ctx, tenantID, user.ID, newHash)
	}

	if err := s.userProvider.TouchLastLogin(ctx, tenantID, user.ID); err != nil {
		slog.WarnContext(ctx, "failed to record last login", "error", err)
	}

	return s.createAuthResponse(ctx, user, client, "", uuid.New().String())
}

func (s *Service) Register(
	ctx context.Context,
	tenantID string,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	user, err := s.userProvider.Create(ctx, NewUser{
		TenantID:  tenantID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.createAuthResponse(ctx, user, clientInfo{userAgent, ipAddress}, "", uuid.New().String())
}

// Refresh rotates a refresh token. Presenting an already rotated token
// revokes its whole family.
func (s *Service) Refresh(
	ctx context.Context,
	tenantID, refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	storedToken, err := s.repo.FindByHash(ctx, tenantID, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if storedToken.IsUsed {
		return nil, s.reuseDetected(ctx, storedToken)
	}

	if err := storedToken.Check(time.Now()); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	user, err := s.userProvider.GetByID(ctx, tenantID, storedToken.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		return nil, core.InactiveAccountError()
	}

	// Claiming the old token first means two concurrent refreshes cannot
	// both rotate it; the loser is treated as reuse.
	newTokenID := uuid.New().String()
	if err := s.repo.MarkAsUsed(ctx, tenantID, storedToken.ID, newTokenID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, s.reuseDetected(ctx, storedToken)
		}
		return nil, fmt.Errorf("mark token used: %w", err)
	}

	resp, err := s.createAuthResponse(
		ctx,
		user,
		clientInfo{userAgent, ipAddress},
		storedToken.FamilyID,
		newTokenID,
	)
	s.metrics.AuthAttempt("refresh", err == nil)
	return resp, err
}

func (s *Service) reuseDetected(ctx context.Context, token *RefreshToken) error {
	slog.WarnContext(ctx, "refresh token reuse detected",
		"tenant_id", token.TenantID,
		"user_id", token.UserID,
		"family_id", token.FamilyID,
	)
	if err := s.repo.RevokeByFamilyID(ctx, token.TenantID, token.FamilyID); err != nil {
		slog.ErrorContext(ctx, "failed to revoke token family", "error", err)
	}
	s.metrics.AuthAttempt("refresh", false)
	return ErrTokenReuse
}

// Logout blacklists the current access token and, when given, revokes
// the caller's refresh token.
func (s *Service) Logout(ctx context.Context, sess Session, refreshToken string) error {
	if refreshToken != "" {
		storedToken, err := s.repo.FindByHash(ctx, sess.TenantID, core.HashToken(refreshToken))
		switch {
		case errors.Is(err, core.ErrNotFound):
		case err != nil:
			return fmt.Errorf("find token: %w", err)
		case storedToken.UserID != sess.UserID:
			return core.ForbiddenError("cannot revoke another user's token")
		default:
			if err := s.repo.RevokeByID(ctx, sess.TenantID, storedToken.ID); err != nil &&
				!errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("revoke token: %w", err)
			}
		}
	}

	return s.revokeAccess(ctx, sess)
}

// LogoutAll kills every session of the user: refresh tokens are revoked
// and the token version bump invalidates all access tokens already issued.
func (s *Service) LogoutAll(ctx context.Context, sess Session) error {
	if err := s.repo.RevokeAllForUser(ctx, sess.TenantID, sess.UserID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.userProvider.IncrementTokenVersion(ctx, sess.TenantID, sess.UserID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return s.revokeAccess(ctx, sess)
}

func (s *Service) revokeAccess(ctx context.Context, sess Session) error {
	if s.blacklist == nil {
		return nil
	}
	return s.blacklist.Revoke(ctx, sess.JTI, sess.ExpiresAt)
}

func (s *Service) ChangePassword(
	ctx context.Context,
	sess Session,
	currentPassword, newPassword string,
) error {
	user, err := s.userProvider.GetByID(ctx, sess.TenantID, sess.UserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, sess.TenantID, sess.UserID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, sess); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) GetCurrentUser(ctx context.Context, tenantID, userID string) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	user *UserInfo,
	client clientInfo,
	familyID, tokenID string,
) (*AuthResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessClaims{
		UserID:       user.ID,
		TenantID:     user.TenantID,
		RoleID:       user.RoleID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.jwt.CreateRefreshToken(familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	refreshTokenEntity := &RefreshToken{
		ID:        tokenID,
		TenantID:  user.TenantID,
		UserID:    user.ID,
		TokenHash: refreshData.Hash,
		FamilyID:  refreshData.FamilyID,
		ExpiresAt: refreshData.ExpiresAt,
		UserAgent: client.userAgent,
		IPAddress: client.ipAddress,
	}

	if err := s.repo.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken:  access.Token,
			RefreshToken: refreshData.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(s.jwt.AccessTokenTTL().Seconds()),
			ExpiresAt:    access.ExpiresAt,
		},
	}, nil
}
