// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/auth"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/middleware"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/role"
)

type Service struct {
	repo  Repository
	roles role.Repository
}

func NewService(repo Repository, roles role.Repository) *Service {
	return &Service{repo: repo, roles: roles}
}

// NewMember builds an active user with a hashed password. Callers persist
// it with a repository bound to whatever transaction they hold.
func NewMember(tenantID, roleID string, req CreateUserRequest) (*User, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &User{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		RoleID:       roleID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Phone:        req.Phone,
		IsActive:     true,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// resolveRole returns the role a new or reassigned user gets. An id that
// is not a role of this tenant is a role mismatch, never a lookup into
// another tenant.
func (s *Service) resolveRole(ctx context.Context, tenantID, roleID string) (*role.Role, error) {
	var (
		r   *role.Role
		err error
	)
	if roleID == "" {
		r, err = s.roles.GetBySlug(ctx, tenantID, authz.RoleCustomer)
	} else {
		r, err = s.roles.GetByID(ctx, tenantID, roleID)
	}
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("resolve role: %w", core.ErrRoleMismatch)
		}
		return nil, err
	}

	if !r.IsActive {
		return nil, core.ValidationFailed("role is inactive", map[string]string{"field": "role_id"})
	}

	return r, nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) GetByEmail(ctx context.Context, tenantID, email string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, tenantID, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// Create registers a self-service account with the tenant's customer role.
func (s *Service) Create(ctx context.Context, in auth.NewUser) (*auth.UserInfo, error) {
	u, err := s.create(ctx, in.TenantID, CreateUserRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
		Phone:     in.Phone,
	})
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, tenantID, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, tenantID, userID)
}

func (s *Service) UpdatePassword(ctx context.Context, tenantID, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, tenantID, userID, passwordHash)
}

func (s *Service) TouchLastLogin(ctx context.Context, tenantID, userID string) error {
	return s.repo.TouchLastLogin(ctx, tenantID, userID)
}

// LoadPrincipal reads the user together with its live role. A disabled
// role keeps the user signed in but grants nothing.
func (s *Service) LoadPrincipal(
	ctx context.Context,
	tenantID, userID string,
) (*middleware.Principal, error) {
	row, err := s.repo.LoadPrincipal(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	perms := authz.NewSet()
	if row.RoleActive {
		perms = authz.FromStrings(row.Permissions)
	}

	return &middleware.Principal{
		UserID:       row.UserID,
		TenantID:     row.TenantID,
		RoleID:       row.RoleID,
		RoleSlug:     row.RoleSlug,
		Email:        row.Email,
		TokenVersion: row.TokenVersion,
		IsActive:     row.IsActive,
		Permissions:  perms,
	}, nil
}

func (s *Service) GetProfile(ctx context.Context, tenantID, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get profile: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, tenantID, userID)
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	tenantID, userID string,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update profile: %w", core.ErrUnauthorized)
	}
	return s.UpdateUser(ctx, tenantID, userID, userID, UpdateUserRequest{UpdateProfileRequest: req})
}

func (s *Service) ListUsers(
	ctx context.Context,
	tenantID string,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, tenantID, params)
}

func (s *Service) GetUser(ctx context.Context, tenantID, id string) (*User, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) CreateUser(
	ctx context.Context,
	tenantID string,
	req CreateUserRequest,
) (*User, error) {
	return s.create(ctx, tenantID, req)
}

func (s *Service) create(ctx context.Context, tenantID string, req CreateUserRequest) (*User, error) {
	r, err := s.resolveRole(ctx, tenantID, req.RoleID)
	if err != nil {
		return nil, err
	}

	u, err := NewMember(tenantID, r.ID, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	u.RoleSlug = r.Slug

	return u, nil
}

// UpdateUser applies the set fields. Clearing is_active follows the same
// rules as DeactivateUser: never on the actor's own account, and every
// outstanding token is revoked.
func (s *Service) UpdateUser(
	ctx context.Context,
	tenantID, actorID, id string,
	req UpdateUserRequest,
) (*User, error) {
	u, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	deactivating := req.IsActive != nil && !*req.IsActive && u.IsActive
	if deactivating && actorID == id {
		return nil, core.ForbiddenError("cannot deactivate your own account")
	}

	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.ProfileImage != nil {
		u.ProfileImage = *req.ProfileImage
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	if deactivating {
		if err := s.repo.IncrementTokenVersion(ctx, tenantID, id); err != nil {
			return nil, err
		}
		u.TokenVersion++
	}

	return u, nil
}

// DeactivateUser is the DELETE of the users resource. Accounts are never
// removed while the tenant exists.
func (s *Service) DeactivateUser(ctx context.Context, tenantID, actorID, id string) error {
	if actorID == id {
		return core.ForbiddenError("cannot deactivate your own account")
	}
	return s.repo.Deactivate(ctx, tenantID, id)
}

func (s *Service) AssignRole(
	ctx context.Context,
	tenantID, id, roleID string,
) (*User, error) {
	r, err := s.resolveRole(ctx, tenantID, roleID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRole(ctx, tenantID, id, r.ID); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, tenantID, id)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		TenantID:     u.TenantID,
		RoleID:       u.RoleID,
		RoleSlug:     u.RoleSlug,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		TokenVersion: u.TokenVersion,
		CreatedAt:    u.CreatedAt,
	}
}

var (
	_ auth.UserProvider          = (*Service)(nil)
	_ middleware.PrincipalLoader = (*Service)(nil)
)
