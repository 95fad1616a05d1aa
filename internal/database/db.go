package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"butce-backend/internal/config"
	"butce-backend/internal/logger"
	"butce-backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

const slowQueryThreshold = 500 * time.Millisecond

// Init opens the Postgres pool, runs migrations and stores the handle in DB.
func Init(cfg *config.Config, log *zap.Logger) error {
	level := gormlogger.Warn
	if !cfg.IsProduction() && strings.EqualFold(cfg.LogLevel, "debug") {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
		NowFunc:        NowUTC,
		Logger:         logger.NewGormLogger(log, level, slowQueryThreshold),
	})
	if err != nil {
		return fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("bağlantı havuzu alınamadı: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return err
	}

	DB = db
	log.Info("Veritabanı hazır",
		zap.Int("max_open_conns", cfg.DBMaxOpenConns),
		zap.Duration("acquire_timeout", cfg.DBAcquireTimeout),
	)
	return nil
}

// NowUTC keeps every timestamp in UTC so day filters behave the same on
// Postgres and SQLite.
func NowUTC() time.Time { return time.Now().UTC() }

// Migrate creates the tables and the assignable-customers view.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Salesperson{},
		&models.Customer{},
		&models.RetMember{},
		&models.Transaction{},
		&models.RetAssignment{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	// Atanabilir müşteriler: en az bir işlemi olan ve henüz atanmamış olanlar
	createView := "CREATE OR REPLACE VIEW"
	if db.Dialector.Name() == "sqlite" {
		createView = "CREATE VIEW IF NOT EXISTS"
	}
	viewSQL := createView + ` gm_assignable_customers AS
		SELECT
			c.id,
			c.customer_code,
			c.name,
			c.phone,
			c.email,
			sp.name AS salesperson_name,
			sp.code AS salesperson_code,
			c.created_at
		FROM customers c
		LEFT JOIN salespersons sp ON sp.id = c.salesperson_id
		WHERE EXISTS (SELECT 1 FROM transactions t WHERE t.customer_id = c.id)
		  AND NOT EXISTS (SELECT 1 FROM ret_assignments a WHERE a.customer_id = c.id)`
	if err := db.Exec(viewSQL).Error; err != nil {
		return fmt.Errorf("gm_assignable_customers view oluşturulamadı: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err comes from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Ping runs a trivial query under ctx; used by the health endpoint.
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("veritabanı başlatılmadı")
	}
	return db.WithContext(ctx).Exec("SELECT 1").Error
}
