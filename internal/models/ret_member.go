package models

import "time"

// RetMember: RET (retention) ekibi üyesi
type RetMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"size:150;not null" json:"full_name"`
	Email     *string   `gorm:"size:150" json:"email"`
	Phone     *string   `gorm:"size:50" json:"phone"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RetAssignment: müşteri başına en fazla bir atama (customer_id UNIQUE)
type RetAssignment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	CustomerID       uint       `gorm:"uniqueIndex;not null" json:"customer_id"`
	Customer         *Customer  `json:"-"`
	RetMemberID      uint       `gorm:"index;not null" json:"ret_member_id"`
	RetMember        *RetMember `json:"-"`
	AssignedByUserID uint       `gorm:"not null" json:"assigned_by_user_id"`
	Note             *string    `gorm:"size:1000" json:"note"`
	CreatedAt        time.Time  `json:"created_at"`
}
