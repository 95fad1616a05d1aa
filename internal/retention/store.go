package retention

import (
	"context"
	"errors"
	"fmt"
	"time"

	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/database"
	"butce-backend/internal/models"

	"gorm.io/gorm"
)

// ErrAlreadyAssigned: müşterinin zaten ataması var. Eşzamanlı başka bir
// isteğin yarışı kazandığını gösterir.
var ErrAlreadyAssigned = errors.New("customer already assigned")

// Assignment: istemciye gösterilen isimlerle birleştirilmiş atama
type Assignment struct {
	ID               uint      `json:"id"`
	CustomerID       uint      `json:"customer_id"`
	CustomerCode     *string   `json:"customer_code"`
	CustomerName     *string   `json:"customer_name"`
	RetMemberID      uint      `json:"ret_member_id"`
	RetMemberName    *string   `json:"ret_member_name"`
	AssignedByUserID uint      `json:"assigned_by_user_id"`
	AssignedByName   *string   `json:"assigned_by_name"`
	Note             *string   `json:"note"`
	CreatedAt        time.Time `json:"created_at"`
}

// Store: Coordinator'ın kullandığı kalıcı katman
type Store interface {
	ActiveMember(ctx context.Context, id uint) error
	IsAssignable(ctx context.Context, customerID uint) (bool, error)
	// FindByCustomer atama yoksa nil, nil döner.
	FindByCustomer(ctx context.Context, customerID uint) (*Assignment, error)
	Insert(ctx context.Context, actor audit.Actor, a *models.RetAssignment) error
	Delete(ctx context.Context, actor audit.Actor, id uint) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ActiveMember(ctx context.Context, id uint) error {
	_, err := RequireActiveMember(s.db.WithContext(ctx), id)
	return err
}

func (s *GormStore) IsAssignable(ctx context.Context, customerID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Table("gm_assignable_customers").Where("id = ?", customerID).Count(&n).Error
	if err != nil {
		return false, apperror.Internal("Atama uygunluğu kontrol edilemedi", err)
	}
	return n > 0, nil
}

func (s *GormStore) FindByCustomer(ctx context.Context, customerID uint) (*Assignment, error) {
	return s.findOne(ctx, "a.customer_id = ?", customerID)
}

func (s *GormStore) findOne(ctx context.Context, cond string, arg uint) (*Assignment, error) {
	var out []Assignment
	if err := assignmentQuery(s.db.WithContext(ctx)).Where(cond, arg).Limit(1).Scan(&out).Error; err != nil {
		return nil, apperror.Internal("Atama alınamadı", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// Insert atamayı ve audit kaydını tek transaction içinde oluşturur.
func (s *GormStore) Insert(ctx context.Context, actor audit.Actor, a *models.RetAssignment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrAlreadyAssigned
			}
			return apperror.Internal("Atama kaydedilemedi", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "ret_assignment",
			EntityID:    a.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Müşteri #%d RET üyesi #%d'e atandı", a.CustomerID, a.RetMemberID),
			After:       a,
		})
	})
}

func (s *GormStore) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.RetAssignment
		if err := tx.First(&a, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Kayıt bulunamadı")
			}
			return apperror.Internal("Atama alınamadı", err)
		}
		res := tx.Delete(&models.RetAssignment{}, id)
		if res.Error != nil {
			return apperror.Internal("Atama silinemedi", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("Kayıt bulunamadı")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "ret_assignment",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Müşteri #%d ataması kaldırıldı", a.CustomerID),
			Before:      a,
		})
	})
}

func assignmentQuery(db *gorm.DB) *gorm.DB {
	return db.Table("ret_assignments AS a").
		Select(`a.id, a.customer_id, c.customer_code, c.name AS customer_name,
			a.ret_member_id, rm.full_name AS ret_member_name,
			a.assigned_by_user_id, u.display_name AS assigned_by_name,
			a.note, a.created_at`).
		Joins("LEFT JOIN customers c ON c.id = a.customer_id").
		Joins("LEFT JOIN ret_members rm ON rm.id = a.ret_member_id").
		Joins("LEFT JOIN users u ON u.id = a.assigned_by_user_id")
}
