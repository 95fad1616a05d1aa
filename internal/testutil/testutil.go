// Package testutil provides helpers shared by the service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"butce-backend/internal/database"
	"butce-backend/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database. A single connection is
// used because every :memory: connection gets its own database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        database.NowUTC,
		Logger:         logger.Discard,
	})
	require.NoError(t, err, "Failed to open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func Ctx() context.Context { return context.Background() }

func Salesperson(t *testing.T, db *gorm.DB, name, code string, active bool) models.Salesperson {
	t.Helper()
	sp := models.Salesperson{Name: name, IsActive: active}
	if code != "" {
		sp.Code = &code
	}
	require.NoError(t, db.Create(&sp).Error)
	return sp
}

func RetMember(t *testing.T, db *gorm.DB, name string, active bool) models.RetMember {
	t.Helper()
	m := models.RetMember{FullName: name, Active: active}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// Customer inserts a customer directly, bypassing the code allocator.
func Customer(t *testing.T, db *gorm.DB, name string, salespersonID *uint) models.Customer {
	t.Helper()
	c := models.Customer{Name: name, SalespersonID: salespersonID, IsActive: true}
	var max int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&max).Error)
	c.CustomerCode = fmt.Sprintf("T%05d", max+1)
	require.NoError(t, db.Create(&c).Error)
	return c
}

func User(t *testing.T, db *gorm.DB, username, password string, role models.UserRole) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{
		Username:     username,
		DisplayName:  username + " kullanıcı",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}
