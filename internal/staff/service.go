package staff

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/qrserve/qrserve/internal/auth"
	"github.com/qrserve/qrserve/internal/rbac"
	"github.com/qrserve/qrserve/internal/shared"
)

// Service handles staff account management.
type Service struct {
	repo  RepositoryPort
	rbac  *rbac.Service
	audit *shared.AuditLogger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, rbacSvc *rbac.Service, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, rbac: rbacSvc, audit: audit}
}

// List returns staff members of the scoped restaurant.
func (s *Service) List(ctx context.Context, scope rbac.TenantScope) ([]Member, error) {
	return s.repo.List(ctx, scope)
}

// Get returns one staff member within the tenant scope.
func (s *Service) Get(ctx context.Context, scope rbac.TenantScope, id int64) (*Member, error) {
	return s.repo.Get(ctx, scope, id)
}

// CreateInput is the data needed to onboard a staff member.
type CreateInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleIDs   []int64
}

// Create onboards a staff account and assigns its initial roles. Each role
// must either belong to the scoped restaurant or be a platform template;
// anything else resolves as not found so cross-tenant role IDs leak nothing.
func (s *Service) Create(ctx context.Context, scope rbac.TenantScope, actorID int64, in CreateInput) (*Member, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || len(in.Password) < 8 {
		return nil, shared.ErrValidation
	}

	for _, roleID := range in.RoleIDs {
		if err := s.checkRoleScope(ctx, scope, roleID); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, scope, auth.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	})
	if err != nil {
		return nil, err
	}

	for _, roleID := range in.RoleIDs {
		if err := s.rbac.AssignRole(ctx, created.ID, roleID); err != nil {
			return nil, err
		}
	}

	restaurantID := scope.RestaurantID()
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:      actorID,
		RestaurantID: &restaurantID,
		Action:       "create",
		Entity:       "staff",
		EntityID:     strconv.FormatInt(created.ID, 10),
	})

	return s.repo.Get(ctx, scope, created.ID)
}

// AssignRole adds a role to a staff member.
func (s *Service) AssignRole(ctx context.Context, scope rbac.TenantScope, staffID, roleID int64) error {
	if _, err := s.repo.Get(ctx, scope, staffID); err != nil {
		return err
	}
	if err := s.checkRoleScope(ctx, scope, roleID); err != nil {
		return err
	}
	return s.rbac.AssignRole(ctx, staffID, roleID)
}

// RemoveRole removes a role from a staff member.
func (s *Service) RemoveRole(ctx context.Context, scope rbac.TenantScope, staffID, roleID int64) error {
	if _, err := s.repo.Get(ctx, scope, staffID); err != nil {
		return err
	}
	return s.rbac.RemoveRole(ctx, staffID, roleID)
}

// SetActive enables or disables a staff account and records the action.
func (s *Service) SetActive(ctx context.Context, scope rbac.TenantScope, actorID, staffID int64, active bool) error {
	if err := s.repo.SetActive(ctx, scope, staffID, active); err != nil {
		return err
	}
	action := "deactivate"
	if active {
		action = "activate"
	}
	restaurantID := scope.RestaurantID()
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:      actorID,
		RestaurantID: &restaurantID,
		Action:       action,
		Entity:       "staff",
		EntityID:     strconv.FormatInt(staffID, 10),
	})
	return nil
}

func (s *Service) checkRoleScope(ctx context.Context, scope rbac.TenantScope, roleID int64) error {
	role, err := s.rbac.GetRole(ctx, roleID)
	if err != nil {
		return err
	}
	if role.RestaurantID != nil && *role.RestaurantID != scope.RestaurantID() {
		return shared.ErrNotFound
	}
	return nil
}
