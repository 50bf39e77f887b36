package models

import (
	"strings"

	"gorm.io/gorm"
)

// UserRole is the single role a user acts with
type UserRole string

const (
	RoleOperador  UserRole = "OPERADOR"
	RoleAprobador UserRole = "APROBADOR"
)

// ParseRole matches a role name case-insensitively
func ParseRole(value string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(value)))
	switch role {
	case RoleOperador, RoleAprobador:
		return role, true
	}
	return "", false
}

func (r UserRole) Valid() bool {
	return r == RoleOperador || r == RoleAprobador
}

type User struct {
	gorm.Model
	UserID   string   `gorm:"uniqueIndex;not null;type:varchar(20)" json:"user_id"` // op-001, ap-001
	Name     string   `gorm:"uniqueIndex;not null" json:"name"`
	Email    string   `gorm:"uniqueIndex;not null" json:"email"`
	Password string   `gorm:"not null" json:"-"`
	Role     UserRole `gorm:"type:varchar(20)" json:"role"`
}

func (User) TableName() string {
	return "users"
}
