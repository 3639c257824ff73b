package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"animehub/internal/apperr"
	"animehub/pkg/models"
)

// Repo is the credential store.
type Repo struct {
	DB *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Create(u).Error
	return apperr.FromDB(err, "create user", "A user with that username already exists")
}

// GetByUsername returns nil, nil when no user matches.
func (r *Repo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDB(err, "get user by username", "")
	}
	return &u, nil
}

// GetByID returns nil, nil when no user matches.
func (r *Repo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.FromDB(err, "get user by id", "")
	}
	return &u, nil
}
