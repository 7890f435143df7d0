package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/cracker/models"
)

// CreateUser inserts a user together with default challenge settings.
func (s *Store) CreateUser(ctx context.Context, name, email string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return models.User{}, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	var user models.User
	err := s.do(ctx, "create_user", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			var n int64
			if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrConflict
			}
			user = models.User{Name: name, Email: email}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			settings := models.DefaultChallengeSettings(user.ID, time.Now().UTC())
			return tx.Create(&settings).Error
		})
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FindUserByEmail looks a user up by email, case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return models.User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	var user models.User
	err := s.do(ctx, "find_user_by_email", func(tx *gorm.DB) error {
		return tx.Where("email = ?", email).First(&user).Error
	})
	return user, err
}

// FindUserByID looks a user up by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	if strings.TrimSpace(id) == "" {
		return models.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	var user models.User
	err := s.do(ctx, "find_user_by_id", func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).First(&user).Error
	})
	return user, err
}

// ListUsers returns every user, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := s.do(ctx, "list_users", func(tx *gorm.DB) error {
		return tx.Order("created_at asc").Order("id asc").Find(&users).Error
	})
	return users, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
