package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/httputil"
	"butce-backend/internal/models"
	"butce-backend/internal/salesperson"

	"gorm.io/gorm"
)

// Input ekleme ve güncellemede kullanılır. Güncellemede gönderilmeyen veya
// boş alanlar mevcut değerini korur.
type Input struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	SalespersonID any     `json:"salesperson_id"`
	IsActive      *bool   `json:"is_active"`
}

type View struct {
	ID              uint      `json:"id"`
	CustomerCode    string    `json:"customer_code"`
	Name            string    `json:"name"`
	Phone           *string   `json:"phone"`
	Email           *string   `json:"email"`
	SalespersonID   *uint     `json:"salesperson_id"`
	SalespersonName *string   `json:"salesperson_name"`
	IsActive        bool      `json:"is_active"`
	CreatedByUserID *uint     `json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Filter struct {
	Search        string
	SalespersonID uint
	Active        *bool
	Limit         int
	Offset        int
}

type Service struct {
	db        *gorm.DB
	allocator *Allocator
}

func NewService(db *gorm.DB, allocator *Allocator) *Service {
	return &Service{db: db, allocator: allocator}
}

func (s *Service) List(ctx context.Context, f Filter) ([]View, error) {
	dbq := s.query(ctx)
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + search + "%"
		dbq = dbq.Where("(c.name LIKE ? OR c.customer_code LIKE ? OR c.phone LIKE ? OR c.email LIKE ?)", like, like, like, like)
	}
	if f.SalespersonID > 0 {
		dbq = dbq.Where("c.salesperson_id = ?", f.SalespersonID)
	}
	if f.Active != nil {
		dbq = dbq.Where("c.is_active = ?", *f.Active)
	}

	out := []View{}
	if err := dbq.Order("c.id DESC").Limit(f.Limit).Offset(f.Offset).Scan(&out).Error; err != nil {
		return nil, apperror.Internal("Müşteriler listelenemedi", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*View, error) {
	var out []View
	if err := s.query(ctx).Where("c.id = ?", id).Limit(1).Scan(&out).Error; err != nil {
		return nil, apperror.Internal("Müşteri alınamadı", err)
	}
	if len(out) == 0 {
		return nil, apperror.NotFound("Müşteri bulunamadı")
	}
	return &out[0], nil
}

// Create satışçıyı kontrol eder ve müşteri kodunu tek transaction içinde
// atar.
func (s *Service) Create(ctx context.Context, actor audit.Actor, in Input) (*View, error) {
	name := httputil.TrimmedPtr(in.Name)
	if name == nil {
		return nil, apperror.Validation("name zorunlu")
	}
	spID, state := httputil.ParseIDValue(in.SalespersonID)
	if state != httputil.IDPositive {
		return nil, apperror.Validation("salesperson_id geçersiz")
	}

	c := models.Customer{
		Name:            *name,
		Phone:           httputil.TrimmedPtr(in.Phone),
		Email:           httputil.TrimmedPtr(in.Email),
		SalespersonID:   &spID,
		IsActive:        true,
		CreatedByUserID: &actor.ID,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := salesperson.RequireUsable(tx, spID); err != nil {
			return err
		}
		if err := s.allocator.Insert(tx, &c); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "customer",
			EntityID:    c.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Müşteri eklendi: %s (%s)", c.Name, c.CustomerCode),
			After:       c,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, c.ID)
}

func (s *Service) Update(ctx context.Context, actor audit.Actor, id uint, in Input) (*View, error) {
	updates := map[string]any{}
	if v := httputil.TrimmedPtr(in.Name); v != nil {
		updates["name"] = *v
	}
	if v := httputil.TrimmedPtr(in.Phone); v != nil {
		updates["phone"] = *v
	}
	if v := httputil.TrimmedPtr(in.Email); v != nil {
		updates["email"] = *v
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	spID, state := httputil.ParseIDValue(in.SalespersonID)
	if state == httputil.IDInvalid {
		return nil, apperror.Validation("salesperson_id geçersiz")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Müşteri bulunamadı")
			}
			return apperror.Internal("Müşteri alınamadı", err)
		}
		before := c

		if state == httputil.IDPositive {
			if _, err := salesperson.RequireUsable(tx, spID); err != nil {
				return err
			}
			updates["salesperson_id"] = spID
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&c).Updates(updates).Error; err != nil {
			return apperror.Internal("Müşteri güncellenemedi", err)
		}
		if err := tx.First(&c, id).Error; err != nil {
			return apperror.Internal("Müşteri alınamadı", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "customer",
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Müşteri güncellendi: %s (%s)", c.Name, c.CustomerCode),
			Before:      before,
			After:       c,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Deactivate müşteri silme işlemidir; satır hiç silinmez.
func (s *Service) Deactivate(ctx context.Context, actor audit.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Müşteri bulunamadı")
			}
			return apperror.Internal("Müşteri alınamadı", err)
		}
		before := c
		if err := tx.Model(&c).Update("is_active", false).Error; err != nil {
			return apperror.Internal("Müşteri pasif yapılamadı", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "customer",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Müşteri pasif yapıldı: %s (%s)", c.Name, c.CustomerCode),
			Before:      before,
			After:       c,
		})
	})
}

func (s *Service) query(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("customers AS c").
		Select(`c.id, c.customer_code, c.name, c.phone, c.email, c.salesperson_id,
			sp.name AS salesperson_name, c.is_active, c.created_by_user_id, c.created_at, c.updated_at`).
		Joins("LEFT JOIN salespersons sp ON sp.id = c.salesperson_id")
}
