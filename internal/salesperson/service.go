package salesperson

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/models"

	"gorm.io/gorm"
)

// RequireUsable loads the salesperson with db and checks it may own new
// customers and transactions.
func RequireUsable(db *gorm.DB, id uint) (*models.Salesperson, error) {
	var sp models.Salesperson
	err := db.First(&sp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Validation("Satışçı bulunamadı")
	}
	if err != nil {
		return nil, apperror.Internal("Satışçı sorgulanamadı", err)
	}
	if !sp.IsActive {
		return nil, apperror.Validation("Satışçı pasif")
	}
	if sp.Code == nil || strings.TrimSpace(*sp.Code) == "" {
		return nil, apperror.Validation("Satışçı code boş olamaz")
	}
	return &sp, nil
}

type Input struct {
	Name              *string `json:"name"`
	Code              *string `json:"code"`
	IsActive          *bool   `json:"is_active"`
	TargetInvestCount *int    `json:"target_invest_count"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context, active *bool) ([]models.Salesperson, error) {
	dbq := s.db.WithContext(ctx).Model(&models.Salesperson{})
	if active != nil {
		dbq = dbq.Where("is_active = ?", *active)
	}
	var out []models.Salesperson
	if err := dbq.Order("id DESC").Find(&out).Error; err != nil {
		return nil, apperror.Internal("Satışçı listesi alınamadı", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Salesperson, error) {
	var sp models.Salesperson
	err := s.db.WithContext(ctx).First(&sp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Satışçı bulunamadı")
	}
	if err != nil {
		return nil, apperror.Internal("Satışçı alınamadı", err)
	}
	return &sp, nil
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in Input) (*models.Salesperson, error) {
	sp := models.Salesperson{IsActive: true, CreatedByUserID: &actor.ID}
	if err := apply(&sp, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&sp).Error; err != nil {
			return apperror.Internal("Satışçı eklenemedi", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "salesperson",
			EntityID:    sp.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Satışçı eklendi: %s", sp.Name),
			After:       sp,
		})
	})
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// Update replaces name and code; is_active and target change only when sent.
func (s *Service) Update(ctx context.Context, actor audit.Actor, id uint, in Input) (*models.Salesperson, error) {
	var out models.Salesperson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sp models.Salesperson
		if err := tx.First(&sp, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Satışçı bulunamadı")
			}
			return apperror.Internal("Satışçı alınamadı", err)
		}
		before := sp

		if err := apply(&sp, in); err != nil {
			return err
		}
		if err := tx.Model(&sp).Select("name", "code", "is_active", "target_invest_count").Updates(&sp).Error; err != nil {
			return apperror.Internal("Satışçı güncellenemedi", err)
		}
		out = sp
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "salesperson",
			EntityID:    sp.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Satışçı güncellendi: %s", sp.Name),
			Before:      before,
			After:       sp,
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Deactivate is the soft delete; the row stays for historical reports.
func (s *Service) Deactivate(ctx context.Context, actor audit.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Salesperson{}).Where("id = ?", id).Update("is_active", false)
		if res.Error != nil {
			return apperror.Internal("Satışçı pasif edilemedi", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("Satışçı bulunamadı")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "salesperson",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Satışçı pasif edildi",
		})
	})
}

func apply(sp *models.Salesperson, in Input) error {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return apperror.Validation("Ad gerekli")
	}
	sp.Name = strings.TrimSpace(*in.Name)

	sp.Code = nil
	if in.Code != nil {
		if code := strings.TrimSpace(*in.Code); code != "" {
			sp.Code = &code
		}
	}
	if in.IsActive != nil {
		sp.IsActive = *in.IsActive
	}
	if in.TargetInvestCount != nil {
		if *in.TargetInvestCount <= 0 {
			return apperror.Validation("target_invest_count pozitif olmalı")
		}
		target := *in.TargetInvestCount
		sp.TargetInvestCount = &target
	}
	return nil
}
