package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trxflow/models"

	"gorm.io/gorm"
)

// ListOptions narrows a transaction listing. A zero Limit means no limit.
type ListOptions struct {
	Skip      int
	Limit     int
	CreatedBy string
}

type TransactionRepository interface {
	Create(ctx context.Context, trx *models.Transaction) error
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	UpdateStatus(ctx context.Context, id string, from, to models.TransactionStatus, approvedBy *string, at time.Time) (bool, error)
	List(ctx context.Context, opts ListOptions) ([]models.Transaction, error)
	LatestByReferencePrefix(ctx context.Context, prefix string) (*models.Transaction, error)
	CountByReferencePrefix(ctx context.Context, prefix string) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type GormTransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create inserts trx inside its own database transaction so a failed insert
// leaves nothing behind. A reference collision returns ErrDuplicateKey.
func (r *GormTransactionRepository) Create(ctx context.Context, trx *models.Transaction) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(trx).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *GormTransactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	var trx models.Transaction
	err := r.db.WithContext(ctx).Where("transaction_id = ?", id).First(&trx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("find transaction %s: %w", id, err)
	}
	return &trx, nil
}

// UpdateStatus moves the record from -> to in a single statement. It reports
// false when the record was no longer in the from state.
func (r *GormTransactionRepository) UpdateStatus(ctx context.Context, id string, from, to models.TransactionStatus, approvedBy *string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	if approvedBy != nil {
		updates["approved_by"] = *approvedBy
	}

	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("transaction_id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("update transaction %s: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *GormTransactionRepository) List(ctx context.Context, opts ListOptions) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if opts.CreatedBy != "" {
		query = query.Where("created_by = ?", opts.CreatedBy)
	}
	if opts.Skip > 0 {
		query = query.Offset(opts.Skip)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	transactions := []models.Transaction{}
	if err := query.Order("created_at ASC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return transactions, nil
}

// LatestByReferencePrefix returns the most recently created transaction whose
// reference starts with prefix, or nil when there is none.
func (r *GormTransactionRepository) LatestByReferencePrefix(ctx context.Context, prefix string) (*models.Transaction, error) {
	var trx models.Transaction
	err := r.db.WithContext(ctx).
		Where("reference LIKE ?", prefix+"%").
		Order("created_at DESC").
		Order("reference DESC").
		First(&trx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest reference: %w", err)
	}
	return &trx, nil
}

func (r *GormTransactionRepository) CountByReferencePrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("reference LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count references: %w", err)
	}
	return count, nil
}

// Delete hard-deletes a transaction. It is meant for cleanup only.
func (r *GormTransactionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("transaction_id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return false, fmt.Errorf("delete transaction %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
