package Models

import (
	"gorm.io/gorm"
)

// Branch is a physical distribution location.
type Branch struct {
	gorm.Model
	Name    string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Type    string `json:"type" gorm:"size:20;default:retail"` // main, retail, warehouse, distribution
	Address string `json:"address" gorm:"size:200"`
	City    string `json:"city" gorm:"size:50"`
	State   string `json:"state" gorm:"size:50"`
	Phone   string `json:"phone" gorm:"size:20"`
	Status  string `json:"status" gorm:"size:20;default:active"`
}
