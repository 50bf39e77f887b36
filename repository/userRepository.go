package repository

import (
	"context"
	"errors"
	"fmt"

	"trxflow/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUserID(ctx context.Context, userID string) (*models.User, error)
	ExistsByEmailOrName(ctx context.Context, email, name string) (bool, error)
	UserIDsWithPrefix(ctx context.Context, prefix string) ([]string, error)
	RecordLogin(ctx context.Context, entry *models.LoginTracking) error
	LoginsFor(ctx context.Context, userID string, limit int) ([]models.LoginTracking, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *GormUserRepository) FindByUserID(ctx context.Context, userID string) (*models.User, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *GormUserRepository) ExistsByEmailOrName(ctx context.Context, email, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ? OR name = ?", email, name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return count > 0, nil
}

// UserIDsWithPrefix returns every assigned user id starting with prefix,
// including soft-deleted users so ids are never handed out twice.
func (r *GormUserRepository) UserIDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.User{}).
		Where("user_id LIKE ?", prefix+"%").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	return ids, nil
}

func (r *GormUserRepository) RecordLogin(ctx context.Context, entry *models.LoginTracking) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

// LoginsFor returns the most recent logins of a user, newest first.
func (r *GormUserRepository) LoginsFor(ctx context.Context, userID string, limit int) ([]models.LoginTracking, error) {
	logins := []models.LoginTracking{}
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logins).Error; err != nil {
		return nil, fmt.Errorf("list logins: %w", err)
	}
	return logins, nil
}

func (r *GormUserRepository) findOne(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
