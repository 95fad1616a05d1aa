package models

import (
	"strings"
	"time"
)

// Salesperson: varsayılan işlem sahibi (satış modu)
type Salesperson struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	Code              *string   `gorm:"size:32" json:"code"`
	IsActive          bool      `gorm:"not null" json:"is_active"`
	TargetInvestCount *int      `json:"target_invest_count"` // boşsa raporlarda varsayılan hedef kullanılır
	CreatedByUserID   *uint     `json:"created_by_user_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Salesperson) TableName() string { return "salespersons" }

// Usable reports whether new customers and transactions may reference it.
func (s Salesperson) Usable() bool {
	return s.IsActive && s.Code != nil && strings.TrimSpace(*s.Code) != ""
}
