package Models

import (
	"gorm.io/gorm"
)

// Permission levels checked by middleware.Verify. Higher levels include the
// lower ones.
const (
	PermissionOperator = 1
	PermissionManager  = 2
	PermissionAdmin    = 3
)

type User struct {
	gorm.Model
	Username   string `json:"username" gorm:"size:50;not null;uniqueIndex"`
	Password   []byte `json:"-" gorm:"not null"`
	FullName   string `json:"full_name" gorm:"size:100"`
	Permission int    `json:"permission" gorm:"not null;default:1"`
	BranchID   *uint  `json:"branch_id" gorm:"index"`
	IsApproved bool   `json:"is_approved" gorm:"default:true"`

	Branch *Branch `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
}
