package models

import "time"

type UserRole string

const (
	RoleOperationsManager UserRole = "OPERASYON_MUDURU"
	RoleGeneralManager    UserRole = "GENEL_MUDUR"
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Username     string   `gorm:"size:100;uniqueIndex;not null"`
	DisplayName  string   `gorm:"size:100;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:32;not null"`
	IsActive     bool     `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
