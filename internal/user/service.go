package user

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/core/capability"
	userDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/user"
)

// RepositoryAPI returns nil, nil for missing rows.
type RepositoryAPI interface {
	List(ctx context.Context, limit, offset int) ([]*userDatamodel.User, int64, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	GetRoleByName(ctx context.Context, name string) (*userDatamodel.Role, error)
	ListRoles(ctx context.Context) ([]*userDatamodel.Role, error)
	CreateRole(ctx context.Context, role *userDatamodel.Role) error
	AddRole(ctx context.Context, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int64, error) {
	rows, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, internal.NewInternalError("failed to list users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, total, nil
}

// SetActive toggles the account flag. An admin cannot deactivate their own account.
func (s *Service) SetActive(ctx context.Context, actorID, userID int64, active bool) (*User, error) {
	if !active && actorID == userID {
		return nil, internal.NewValidationError("You cannot deactivate your own account", internal.ErrCodeInvalidRequest)
	}

	if _, err := s.mustGetUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.logger.InfoContext(ctx, "user activation changed", "actor_id", actorID, "user_id", userID, "active", active)
	return s.reload(ctx, userID)
}

// AssignRole is idempotent. The new role reaches the user's token only after the next login.
func (s *Service) AssignRole(ctx context.Context, actorID, userID int64, roleName string) (*User, error) {
	if _, err := s.mustGetUser(ctx, userID); err != nil {
		return nil, err
	}
	role, err := s.mustGetRole(ctx, roleName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddRole(ctx, userID, role.ID); err != nil {
		return nil, internal.NewInternalError("failed to assign role", err)
	}

	s.logger.InfoContext(ctx, "role assigned", "actor_id", actorID, "user_id", userID, "role", role.Name)
	return s.reload(ctx, userID)
}

func (s *Service) RevokeRole(ctx context.Context, actorID, userID int64, roleName string) (*User, error) {
	if _, err := s.mustGetUser(ctx, userID); err != nil {
		return nil, err
	}
	role, err := s.mustGetRole(ctx, roleName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveRole(ctx, userID, role.ID); err != nil {
		return nil, internal.NewInternalError("failed to revoke role", err)
	}

	s.logger.InfoContext(ctx, "role revoked", "actor_id", actorID, "user_id", userID, "role", role.Name)
	return s.reload(ctx, userID)
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}
	roles := make([]*Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, RoleFromDataModel(row))
	}
	return roles, nil
}

// CreateRole validates the capability object against the closed set before persisting.
func (s *Service) CreateRole(ctx context.Context, name, description string, permissions json.RawMessage) (*Role, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return nil, internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}

	caps, err := capability.Parse(permissions)
	if err != nil {
		return nil, internal.NewValidationFieldError("permissions", err.Error(), internal.ErrCodeInvalidPermissions)
	}

	existing, err := s.repo.GetRoleByName(ctx, name)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up role", err)
	}
	if existing != nil {
		return nil, internal.ErrRoleExists
	}

	row := &userDatamodel.Role{Name: name, Description: description, Permissions: caps}
	if err := s.repo.CreateRole(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.logger.InfoContext(ctx, "role created", "role", name)
	return RoleFromDataModel(row), nil
}

func (s *Service) mustGetUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) mustGetRole(ctx context.Context, name string) (*userDatamodel.Role, error) {
	role, err := s.repo.GetRoleByName(ctx, strings.ToLower(name))
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if role == nil {
		return nil, internal.ErrRoleNotFound
	}
	return role, nil
}

func (s *Service) reload(ctx context.Context, id int64) (*User, error) {
	u, err := s.mustGetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(u), nil
}
