package retention

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/httputil"
	"butce-backend/internal/models"

	"gorm.io/gorm"
)

// RequireActiveMember üyeyi db ile yükler ve aktif olduğunu kontrol eder.
func RequireActiveMember(db *gorm.DB, id uint) (*models.RetMember, error) {
	var m models.RetMember
	err := db.Where("id = ? AND active = ?", id, true).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Validation("Geçersiz veya pasif RET üyesi.")
	}
	if err != nil {
		return nil, apperror.Internal("RET üyesi sorgulanamadı", err)
	}
	return &m, nil
}

type MemberFilter struct {
	Search string
	Active *bool
	Limit  int
	Offset int
}

type MemberInput struct {
	FullName httputil.OptionalString `json:"full_name"`
	Email    httputil.OptionalString `json:"email"`
	Phone    httputil.OptionalString `json:"phone"`
	Active   *bool                   `json:"active"`
}

type MemberService struct {
	db *gorm.DB
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

func (s *MemberService) List(ctx context.Context, f MemberFilter) ([]models.RetMember, error) {
	dbq := s.db.WithContext(ctx).Model(&models.RetMember{})
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + search + "%"
		dbq = dbq.Where("(full_name LIKE ? OR email LIKE ? OR phone LIKE ?)", like, like, like)
	}
	if f.Active != nil {
		dbq = dbq.Where("active = ?", *f.Active)
	}

	var out []models.RetMember
	if err := dbq.Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, apperror.Internal("RET üyeleri listelenemedi", err)
	}
	return out, nil
}

func (s *MemberService) Get(ctx context.Context, id uint) (*models.RetMember, error) {
	var m models.RetMember
	err := s.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Kayıt bulunamadı")
	}
	if err != nil {
		return nil, apperror.Internal("RET üyesi alınamadı", err)
	}
	return &m, nil
}

func (s *MemberService) Create(ctx context.Context, actor audit.Actor, in MemberInput) (*models.RetMember, error) {
	name := in.FullName.Trimmed()
	if name == nil {
		return nil, apperror.Validation("full_name zorunlu")
	}
	m := models.RetMember{
		FullName: *name,
		Email:    in.Email.Trimmed(),
		Phone:    in.Phone.Trimmed(),
		Active:   in.Active == nil || *in.Active,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return apperror.Internal("RET üyesi eklenemedi", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "ret_member",
			EntityID:    m.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("RET üyesi eklendi: %s", m.FullName),
			After:       m,
		})
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Update yalnızca gövdede gelen alanları değiştirir.
func (s *MemberService) Update(ctx context.Context, actor audit.Actor, id uint, in MemberInput) (*models.RetMember, error) {
	updates := map[string]any{}
	if in.FullName.Set {
		name := in.FullName.Trimmed()
		if name == nil {
			return nil, apperror.Validation("full_name boş olamaz")
		}
		updates["full_name"] = *name
	}
	if in.Email.Set {
		updates["email"] = in.Email.Trimmed()
	}
	if in.Phone.Set {
		updates["phone"] = in.Phone.Trimmed()
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if len(updates) == 0 {
		return nil, apperror.Validation("Güncellenecek alan yok")
	}

	var out models.RetMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.RetMember
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Kayıt bulunamadı")
			}
			return apperror.Internal("RET üyesi alınamadı", err)
		}
		before := m

		if err := tx.Model(&m).Updates(updates).Error; err != nil {
			return apperror.Internal("RET üyesi güncellenemedi", err)
		}
		if err := tx.First(&out, id).Error; err != nil {
			return apperror.Internal("RET üyesi alınamadı", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "ret_member",
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("RET üyesi güncellendi: %s", out.FullName),
			Before:      before,
			After:       out,
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete üyeyi siler. Atama veya işlemde geçen üye silinmez, pasif edilmeli.
func (s *MemberService) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.RetMember
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Kayıt bulunamadı")
			}
			return apperror.Internal("RET üyesi alınamadı", err)
		}

		var refs int64
		if err := tx.Model(&models.RetAssignment{}).Where("ret_member_id = ?", id).Count(&refs).Error; err != nil {
			return apperror.Internal("RET üyesi silinemedi", err)
		}
		if refs == 0 {
			if err := tx.Model(&models.Transaction{}).Where("ret_member_id = ?", id).Count(&refs).Error; err != nil {
				return apperror.Internal("RET üyesi silinemedi", err)
			}
		}
		if refs > 0 {
			return apperror.Validation("RET üyesine bağlı atama veya işlem var, silmek yerine pasif yapın")
		}

		if err := tx.Delete(&models.RetMember{}, id).Error; err != nil {
			return apperror.Internal("RET üyesi silinemedi", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "ret_member",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("RET üyesi silindi: %s", m.FullName),
			Before:      m,
		})
	})
}
