package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a transaction
type TransactionStatus string

const (
	StatusDraft           TransactionStatus = "DRAFT"
	StatusPendingApproval TransactionStatus = "PENDING_APPROVAL"
	StatusApproved        TransactionStatus = "APPROVED"
	StatusRejected        TransactionStatus = "REJECTED"
	StatusExecuted        TransactionStatus = "EXECUTED"
)

// Transaction is a financial transaction moving through the operator/approver workflow
type Transaction struct {
	TransactionID string            `gorm:"primaryKey;type:varchar(36)" json:"transaction_id"`
	Reference     string            `gorm:"uniqueIndex;not null;type:varchar(100)" json:"reference"`
	Amount        decimal.Decimal   `gorm:"type:numeric(18,2);not null" json:"amount"`
	Currency      string            `gorm:"type:varchar(3);not null" json:"currency"`
	Status        TransactionStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	CreatedBy     string            `gorm:"not null;index;type:varchar(255)" json:"created_by"`
	ApprovedBy    *string           `gorm:"type:varchar(255)" json:"approved_by"`
	CreatedAt     time.Time         `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
