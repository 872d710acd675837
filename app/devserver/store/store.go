// Package store is the in-memory data set of the development backend.
package store

import (
	"adminctl/app/dto"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/rofleksey/meg"
	"github.com/rofleksey/rbac"
	"github.com/samber/oops"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Bio          string
	DateOfBirth  string
	UserType     dto.UserType
	Status       dto.UserStatus
	AvatarURL    string
	Address      string
	City         string
	Country      string
	PostalCode   string
	Gender       string
	Timezone     string
	Language     string
	IsVerified   bool
	Roles        []string
	Permissions  []string
	PasswordHash string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role struct {
	ID          int64
	Name        string
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Store struct {
	mu sync.RWMutex

	permissions []dto.Permission
	users       []User
	roles       []Role
	activities  []dto.ActivityLog
	logins      []dto.LoginHistory

	revoked      map[string]time.Time
	resetTokens  map[string]string
	verifyTokens map[string]string

	nextUserID     int64
	nextRoleID     int64
	nextActivityID int64
	nextLoginID    int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		revoked:      make(map[string]time.Time),
		resetTokens:  make(map[string]string),
		verifyTokens: make(map[string]string),
		now:          time.Now,
	}
}

var moduleNames = map[string]string{
	"users":         "Users",
	"roles":         "Roles",
	"permissions":   "Permissions",
	"activity_logs": "Activity Logs",
	"login_history": "Login History",
}

// Seed fills the permission catalogue, the Super Admin and Viewer roles and
// one account for each of them.
func (s *Store) Seed(password string) error {
	hash, err := meg.HashPassword(password)
	if err != nil {
		return oops.Errorf("HashPassword: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.permissions = make([]dto.Permission, 0, len(dto.AllPermissions))
	for i, name := range dto.AllPermissions {
		module, action, _ := strings.Cut(name, ".")
		s.permissions = append(s.permissions, dto.Permission{
			ID:          int64(i + 1),
			Name:        name,
			DisplayName: strings.ToUpper(action[:1]) + action[1:] + " " + moduleNames[module],
			Module:      module,
			Slug:        strings.ReplaceAll(name, ".", "-"),
		})
	}

	now := s.now()

	s.roles = nil
	s.nextRoleID = 0
	s.insertRoleLocked(Role{Name: dto.RoleSuperAdmin, Permissions: slices.Clone(dto.AllPermissions)}, now)
	s.insertRoleLocked(Role{Name: "Viewer", Permissions: []string{dto.PermUsersView, dto.PermRolesView}}, now)

	s.users = nil
	s.nextUserID = 0
	s.insertUserLocked(User{
		Name:         "Admin",
		Email:        "admin@example.com",
		Phone:        "0123456789",
		UserType:     dto.UserTypeAdmin,
		Status:       dto.UserStatusActive,
		IsVerified:   true,
		Roles:        []string{dto.RoleSuperAdmin},
		PasswordHash: hash,
	}, now)
	s.insertUserLocked(User{
		Name:         "Viewer",
		Email:        "viewer@example.com",
		Phone:        "0123456780",
		UserType:     dto.UserTypeUser,
		Status:       dto.UserStatusActive,
		IsVerified:   true,
		Roles:        []string{"Viewer"},
		PasswordHash: hash,
	}, now)

	return nil
}

func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.now()
}

func (s *Store) Permissions() []dto.Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.permissions)
}

// Granted flattens the role grants of u together with its direct
// permissions through an rbac policy built from the current roles, so role
// edits apply on the next call.
func (s *Store) Granted(u User) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	builder := rbac.NewPolicyBuilder()

	for _, permission := range s.permissions {
		if err := builder.RegisterPermission(permission.Name); err != nil {
			return nil, oops.Errorf("failed to register permission %s: %w", permission.Name, err)
		}
	}

	for _, role := range s.roles {
		if err := builder.RegisterRole(role.Name); err != nil {
			return nil, oops.Errorf("failed to register role %s: %w", role.Name, err)
		}

		for _, permission := range role.Permissions {
			if err := builder.Grant(role.Name, permission); err != nil {
				return nil, oops.Errorf("failed to grant permission %s for role %s: %w", permission, role.Name, err)
			}
		}
	}

	policy := builder.Build()

	roles := pie.Filter(u.Roles, policy.RoleExists)
	granted := pie.Unique(slices.Concat(policy.GetPermissions(roles...), u.Permissions))
	sort.Strings(granted)

	return granted, nil
}

func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pie.Map(s.users, cloneUser)
}

func (s *Store) User(id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}

	return User{}, notFound("User")
}

func (s *Store) UserByEmail(email string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), true
		}
	}

	return User{}, false
}

// SaveUser inserts u when its ID is zero and replaces the stored record
// otherwise. Emails are unique.
func (s *Store) SaveUser(u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.ID != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return User{}, conflict("email", "The email has already been taken.")
		}
	}
	for _, role := range u.Roles {
		if !s.roleExistsLocked(role) {
			return User{}, conflict("roles", "Role '"+role+"' does not exist.")
		}
	}

	now := s.now()

	if u.ID == 0 {
		return cloneUser(s.insertUserLocked(u, now)), nil
	}

	for i, existing := range s.users {
		if existing.ID != u.ID {
			continue
		}

		u.CreatedAt = existing.CreatedAt
		u.UpdatedAt = now
		if u.PasswordHash == "" {
			u.PasswordHash = existing.PasswordHash
		}
		s.users[i] = cloneUser(u)

		return cloneUser(u), nil
	}

	return User{}, notFound("User")
}

func (s *Store) TouchLogin(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].LastLoginAt = &now
		}
	}
}

// DeleteUsers removes the given users and returns how many existed.
func (s *Store) DeleteUsers(ids []int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.users)
	s.users = slices.DeleteFunc(s.users, func(u User) bool {
		return slices.Contains(ids, u.ID)
	})

	return before - len(s.users)
}

func (s *Store) Roles() []Role {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pie.Map(s.roles, cloneRole)
}

func (s *Store) Role(id int64) (Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.roles {
		if r.ID == id {
			return cloneRole(r), nil
		}
	}

	return Role{}, notFound("Role")
}

// SaveRole inserts or replaces a role. Names are unique and every
// permission must exist.
func (s *Store) SaveRole(r Role) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.roles {
		if existing.ID != r.ID && strings.EqualFold(existing.Name, r.Name) {
			return Role{}, conflict("name", "The name has already been taken.")
		}
	}
	if err := s.checkPermissionsLocked(r.Permissions); err != nil {
		return Role{}, err
	}

	now := s.now()

	if r.ID == 0 {
		return cloneRole(s.insertRoleLocked(r, now)), nil
	}

	for i, existing := range s.roles {
		if existing.ID != r.ID {
			continue
		}

		if existing.Name == dto.RoleSuperAdmin && r.Name != dto.RoleSuperAdmin {
			return Role{}, forbidden("The Super Admin role cannot be renamed")
		}

		r.CreatedAt = existing.CreatedAt
		r.UpdatedAt = now
		s.roles[i] = cloneRole(r)
		s.renameRoleLocked(existing.Name, r.Name)

		return cloneRole(r), nil
	}

	return Role{}, notFound("Role")
}

func (s *Store) SetRolePermissions(id int64, names []string) (Role, error) {
	role, err := s.Role(id)
	if err != nil {
		return Role{}, err
	}

	role.Permissions = pie.Unique(names)

	return s.SaveRole(role)
}

// DeleteRoles removes roles and detaches them from users. The Super Admin
// role is kept.
func (s *Store) DeleteRoles(ids []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for _, r := range s.roles {
		if !slices.Contains(ids, r.ID) {
			continue
		}
		if r.Name == dto.RoleSuperAdmin {
			return 0, forbidden("The Super Admin role cannot be deleted")
		}
		removed = append(removed, r.Name)
	}

	s.roles = slices.DeleteFunc(s.roles, func(r Role) bool {
		return slices.Contains(ids, r.ID)
	})

	for i := range s.users {
		s.users[i].Roles = slices.DeleteFunc(s.users[i].Roles, func(name string) bool {
			return slices.Contains(removed, name)
		})
	}

	return len(removed), nil
}

func (s *Store) insertUserLocked(u User, now time.Time) User {
	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users = append(s.users, cloneUser(u))

	return u
}

func (s *Store) insertRoleLocked(r Role, now time.Time) Role {
	s.nextRoleID++
	r.ID = s.nextRoleID
	r.CreatedAt = now
	r.UpdatedAt = now
	s.roles = append(s.roles, cloneRole(r))

	return r
}

func (s *Store) renameRoleLocked(from, to string) {
	if from == to {
		return
	}

	for i := range s.users {
		for j, name := range s.users[i].Roles {
			if name == from {
				s.users[i].Roles[j] = to
			}
		}
	}
}

func (s *Store) roleExistsLocked(name string) bool {
	for _, r := range s.roles {
		if r.Name == name {
			return true
		}
	}

	return false
}

func (s *Store) checkPermissionsLocked(names []string) error {
	for _, name := range names {
		known := false
		for _, permission := range s.permissions {
			if permission.Name == name {
				known = true
				break
			}
		}

		if !known {
			return conflict("permissions", "Permission '"+name+"' does not exist.")
		}
	}

	return nil
}

func cloneUser(u User) User {
	u.Roles = slices.Clone(u.Roles)
	u.Permissions = slices.Clone(u.Permissions)

	return u
}

func cloneRole(r Role) Role {
	r.Permissions = slices.Clone(r.Permissions)

	return r
}

func notFound(what string) error {
	return oops.
		With("status_code", http.StatusNotFound).
		Public(what + " not found").
		Errorf("%s not found", strings.ToLower(what))
}

func forbidden(msg string) error {
	return oops.
		With("status_code", http.StatusForbidden).
		Public(msg).
		Errorf("%s", msg)
}

func conflict(field, msg string) error {
	return oops.
		With("status_code", http.StatusUnprocessableEntity).
		With("fields", map[string][]string{field: {msg}}).
		Public(msg).
		Errorf("%s", msg)
}
