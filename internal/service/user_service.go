package service

import (
	"errors"
	"strings"

	"github.com/inkwell/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already taken")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserHasPosts       = errors.New("user is referenced by posts")
)

// Role 是后台账号的封闭角色枚举
type Role string

// Capability 表示一类后台操作权限
type Capability string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"

	CapManagePosts    Capability = "manage-posts"
	CapManageUsers    Capability = "manage-users"
	CapManageTaxonomy Capability = "manage-taxonomy"
)

// ParseRole validates a raw role string against the closed enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEditor:
		return RoleEditor, nil
	case RoleUser, "":
		return RoleUser, nil
	default:
		return "", ErrInvalidRole
	}
}

// Can 是唯一的权限判定入口，避免角色字符串比较散落在各调用点。
func (r Role) Can(capability Capability) bool {
	switch capability {
	case CapManagePosts:
		return r == RoleAdmin || r == RoleEditor
	case CapManageUsers, CapManageTaxonomy:
		return r == RoleAdmin
	default:
		return false
	}
}

// UserService wraps account management and authentication.
type UserService struct {
	db *gorm.DB
}

// UserInput represents fields accepted when creating or updating a user.
type UserInput struct {
	Username string
	Password string
	Role     string
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// List returns all users ordered by username.
func (s *UserService) List() ([]db.User, error) {
	var users []db.User
	if err := s.db.Order("username asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a user with a bcrypt hashed password.
func (s *UserService) Create(input UserInput) (*db.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, ErrPasswordRequired
	}

	role, err := ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	var existing db.User
	if err := s.db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{Username: username, Password: string(hashed), Role: string(role)}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update changes role and/or password of an existing user.
func (s *UserService) Update(id uint, input UserInput) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if strings.TrimSpace(input.Role) != "" {
		role, err := ParseRole(input.Role)
		if err != nil {
			return nil, err
		}
		user.Role = string(role)
	}

	if strings.TrimSpace(input.Password) != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user account unless posts still reference it.
func (s *UserService) Delete(id uint) error {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	var count int64
	if err := s.db.Model(&db.Post{}).Where("user_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserHasPosts
	}

	return s.db.Unscoped().Delete(&user).Error
}

// Authenticate checks the credentials and returns the matching user.
func (s *UserService) Authenticate(username, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}
