package models

import "time"

// Customer: customer_code her zaman 6 haneli ve id'den türetilmiş olmalı
type Customer struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	CustomerCode    string       `gorm:"size:6;uniqueIndex;not null" json:"customer_code"`
	Name            string       `gorm:"size:150;not null" json:"name"`
	Phone           *string      `gorm:"size:50" json:"phone"`
	Email           *string      `gorm:"size:150" json:"email"`
	SalespersonID   *uint        `gorm:"index" json:"salesperson_id"`
	Salesperson     *Salesperson `json:"-"`
	IsActive        bool         `gorm:"not null" json:"is_active"`
	CreatedByUserID *uint        `json:"created_by_user_id"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
