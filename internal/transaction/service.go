package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/fold"
	"butce-backend/internal/models"
	"butce-backend/internal/period"
	"butce-backend/internal/retention"
	"butce-backend/internal/salesperson"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invalidator her başarılı yazmadan sonra çağrılır; önbellekteki raporlar
// eskir.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Response struct {
	ID              uint                   `json:"id"`
	Type            models.TransactionType `json:"type"`
	OriginalAmount  decimal.Decimal        `json:"original_amount"`
	Currency        string                 `json:"currency"`
	ManualRateToUSD decimal.NullDecimal    `json:"manual_rate_to_usd"`
	AmountUSD       decimal.Decimal        `json:"amount_usd"`
	Mode            Mode                   `json:"mode"`
	CustomerID      uint                   `json:"customer_id"`
	CustomerName    *string                `json:"customer_name"`
	SalespersonID   *uint                  `json:"salesperson_id"`
	SalespersonName *string                `json:"salesperson_name"`
	RetMemberID     *uint                  `json:"ret_member_id"`
	RetMemberName   *string                `json:"ret_member_name"`
	Note            *string                `json:"note"`
	CreatedByUserID *uint                  `json:"created_by_user_id"`
	CreatedAt       string                 `json:"created_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

type Filter struct {
	Range         period.Range
	Type          string
	CustomerID    uint
	SalespersonID uint
	RetMemberID   uint
	Limit         int
	Offset        int
}

type Service struct {
	db          *gorm.DB
	normalizer  *Normalizer
	invalidator Invalidator
}

func NewService(db *gorm.DB, normalizer *Normalizer, invalidator Invalidator) *Service {
	return &Service{db: db, normalizer: normalizer, invalidator: invalidator}
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in *Input) (*Response, error) {
	rec, err := s.normalizer.Normalize(in)
	if err != nil {
		return nil, err
	}

	t := models.Transaction{CreatedByUserID: &actor.ID}
	rec.applyTo(&t)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, rec); err != nil {
			return err
		}
		if err := tx.Create(&t).Error; err != nil {
			return apperror.Internal("İşlem kaydedilemedi", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "transaction",
			EntityID:    t.ID,
			Action:      models.AuditActionCreate,
			Description: describe("İşlem eklendi", &t),
			After:       t,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.Get(ctx, t.ID)
}

// Update tüm doğrulamayı yeniden çalıştırır; kısmi güncelleme yok.
func (s *Service) Update(ctx context.Context, actor audit.Actor, id uint, in *Input) (*Response, error) {
	rec, err := s.normalizer.Normalize(in)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("İşlem bulunamadı")
			}
			return apperror.Internal("İşlem alınamadı", err)
		}
		before := t

		if err := checkReferences(tx, rec); err != nil {
			return err
		}
		rec.applyTo(&t)

		err := tx.Model(&t).Updates(map[string]any{
			"type":               t.Type,
			"original_amount":    t.OriginalAmount,
			"currency":           t.Currency,
			"manual_rate_to_usd": t.ManualRateToUSD,
			"amount_usd":         t.AmountUSD,
			"customer_id":        t.CustomerID,
			"salesperson_id":     t.SalespersonID,
			"ret_member_id":      t.RetMemberID,
			"note":               t.Note,
		}).Error
		if err != nil {
			return apperror.Internal("İşlem güncellenemedi", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "transaction",
			EntityID:    t.ID,
			Action:      models.AuditActionUpdate,
			Description: describe("İşlem güncellendi", &t),
			Before:      before,
			After:       t,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete kaydı kalıcı olarak siler.
func (s *Service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("İşlem bulunamadı")
			}
			return apperror.Internal("İşlem alınamadı", err)
		}
		if err := tx.Delete(&models.Transaction{}, id).Error; err != nil {
			return apperror.Internal("İşlem silinemedi", err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "transaction",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: describe("İşlem silindi", &t),
			Before:      t,
		})
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *Service) Get(ctx context.Context, id uint) (*Response, error) {
	var r row
	err := s.baseQuery(ctx).Where("t.id = ?", id).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("İşlem bulunamadı")
	}
	if err != nil {
		return nil, apperror.Internal("İşlem alınamadı", err)
	}
	resp := r.toResponse()
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Response, error) {
	dbq := f.Range.Apply(s.baseQuery(ctx), "t.created_at")

	if f.Type != "" {
		txType, ok := ParseType(f.Type)
		if !ok {
			return nil, apperror.Validation("type YATIRIM veya ÇEKİM olmalı")
		}
		if txType == models.TransactionTypeWithdrawal {
			dbq = dbq.Where("t.type IN ?", models.WithdrawalTypes)
		} else {
			dbq = dbq.Where("t.type = ?", txType)
		}
	}
	if f.CustomerID > 0 {
		dbq = dbq.Where("t.customer_id = ?", f.CustomerID)
	}
	if f.SalespersonID > 0 {
		dbq = dbq.Where("t.salesperson_id = ?", f.SalespersonID)
	}
	if f.RetMemberID > 0 {
		dbq = dbq.Where("t.ret_member_id = ?", f.RetMemberID)
	}
	if f.Limit > 0 {
		dbq = dbq.Limit(f.Limit).Offset(f.Offset)
	}

	var rows []row
	if err := dbq.Order("t.created_at DESC, t.id DESC").Scan(&rows).Error; err != nil {
		return nil, apperror.Internal("İşlemler listelenemedi", err)
	}

	out := make([]Response, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toResponse())
	}
	return out, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(context.WithoutCancel(ctx))
	}
}

func (s *Service) baseQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("transactions AS t").
		Select(`t.id, t.type, t.original_amount, t.currency, t.manual_rate_to_usd, t.amount_usd,
			t.customer_id, c.name AS customer_name,
			t.salesperson_id, sp.name AS salesperson_name,
			t.ret_member_id, rm.full_name AS ret_member_name,
			t.note, t.created_by_user_id, t.created_at, t.updated_at`).
		Joins("LEFT JOIN customers c ON c.id = t.customer_id").
		Joins("LEFT JOIN salespersons sp ON sp.id = t.salesperson_id").
		Joins("LEFT JOIN ret_members rm ON rm.id = t.ret_member_id")
}

// checkReferences kaydın işaret ettiği satırları tx içinde kontrol eder.
func checkReferences(tx *gorm.DB, rec *Record) error {
	var count int64
	if err := tx.Model(&models.Customer{}).Where("id = ?", rec.CustomerID).Count(&count).Error; err != nil {
		return apperror.Internal("Müşteri sorgulanamadı", err)
	}
	if count == 0 {
		return apperror.Validation("Müşteri bulunamadı")
	}

	switch rec.Attribution.Mode {
	case ModeRetention:
		_, err := retention.RequireActiveMember(tx, *rec.Attribution.RetMemberID)
		return err
	default:
		_, err := salesperson.RequireUsable(tx, *rec.Attribution.SalespersonID)
		return err
	}
}

func (r *Record) applyTo(t *models.Transaction) {
	t.Type = r.Type
	t.OriginalAmount = r.OriginalAmount
	t.Currency = r.Currency
	t.ManualRateToUSD = r.ManualRate
	t.AmountUSD = r.AmountUSD
	t.CustomerID = r.CustomerID
	t.SalespersonID = r.Attribution.SalespersonID
	t.RetMemberID = r.Attribution.RetMemberID
	t.Note = r.Note
}

func describe(prefix string, t *models.Transaction) string {
	return fmt.Sprintf("%s: %s %s %s (%s USD)", prefix, t.Type, t.OriginalAmount.String(), t.Currency, t.AmountUSD.StringFixed(2))
}

type row struct {
	ID              uint
	Type            models.TransactionType
	OriginalAmount  decimal.Decimal
	Currency        string
	ManualRateToUSD decimal.NullDecimal `gorm:"column:manual_rate_to_usd"`
	AmountUSD       decimal.Decimal     `gorm:"column:amount_usd"`
	CustomerID      uint
	CustomerName    *string
	SalespersonID   *uint
	SalespersonName *string
	RetMemberID     *uint
	RetMemberName   *string
	Note            *string
	CreatedByUserID *uint
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r row) toResponse() Response {
	mode := ModeSalesperson
	if r.RetMemberID != nil {
		mode = ModeRetention
	}
	txType := r.Type
	if fold.Key(string(txType)) == "CEKIM" {
		txType = models.TransactionTypeWithdrawal
	}
	return Response{
		ID:              r.ID,
		Type:            txType,
		OriginalAmount:  r.OriginalAmount,
		Currency:        r.Currency,
		ManualRateToUSD: r.ManualRateToUSD,
		AmountUSD:       r.AmountUSD,
		Mode:            mode,
		CustomerID:      r.CustomerID,
		CustomerName:    r.CustomerName,
		SalespersonID:   r.SalespersonID,
		SalespersonName: r.SalespersonName,
		RetMemberID:     r.RetMemberID,
		RetMemberName:   r.RetMemberName,
		Note:            r.Note,
		CreatedByUserID: r.CreatedByUserID,
		CreatedAt:       r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:       r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
