package auth

import (
	"context"
	"errors"
	"strings"

	"butce-backend/internal/apperror"
	"butce-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Identity is what a verified login yields and what the token carries.
type Identity struct {
	ID          uint            `json:"id"`
	Username    string          `json:"username"`
	DisplayName string          `json:"name"`
	Role        models.UserRole `json:"role"`
}

// CredentialVerifier checks a username/password pair. It returns
// (nil, nil) when the pair does not match an active user.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*Identity, error)
}

// UserStore verifies credentials against the users table.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Verify(ctx context.Context, username, password string) (*Identity, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" || password == "" {
		return nil, nil
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ? AND is_active = ?", username, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("Kullanıcı sorgulanamadı", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}

	role, ok := ParseRole(string(user.Role))
	if !ok {
		return nil, nil
	}
	return &Identity{ID: user.ID, Username: user.Username, DisplayName: user.DisplayName, Role: role}, nil
}

// EnsureUser creates the user when the username is free. Existing users are
// left untouched so a restart never resets a changed password.
func (s *UserStore) EnsureUser(ctx context.Context, username, displayName, password string, role models.UserRole) (bool, error) {
	username = strings.TrimSpace(strings.ToLower(username))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	user := models.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return false, err
	}
	return true, nil
}
