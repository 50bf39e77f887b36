package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginTracking records one successful token issue
type LoginTracking struct {
	gorm.Model
	UserID    string    `gorm:"index;type:varchar(20)" json:"user_id"`
	IPAddress string    `gorm:"type:varchar(64)" json:"ip_address"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

func (LoginTracking) TableName() string {
	return "login_trackings"
}
