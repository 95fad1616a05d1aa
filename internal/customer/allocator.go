package customer

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"butce-backend/internal/apperror"
	"butce-backend/internal/database"
	"butce-backend/internal/models"

	"gorm.io/gorm"
)

const (
	codeAttempts = 3
	maxCodeID    = 999999
)

// CodeGenerator geçici 6 haneli müşteri kodu üretir.
type CodeGenerator func() string

func RandomCode() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}

// CanonicalCode: müşterinin kalıcı kodu, id'nin 6 haneye tamamlanmış hali
func CanonicalCode(id uint) (string, error) {
	if id == 0 || id > maxCodeID {
		return "", fmt.Errorf("customer id %d does not fit in six digits", id)
	}
	return fmt.Sprintf("%06d", id), nil
}

// Allocator müşteriyi NOT NULL + UNIQUE customer_code kolonuyla ekler. id
// insert'ten önce bilinmediği için önce rastgele geçici kod yazılır, sonra
// kalıcı kodla değiştirilir.
type Allocator struct {
	generate CodeGenerator
}

func NewAllocator(gen CodeGenerator) *Allocator {
	if gen == nil {
		gen = RandomCode
	}
	return &Allocator{generate: gen}
}

// Insert tx'in transaction'ı içinde çalışmalı; geçici kod dışarıdan görünmez.
func (a *Allocator) Insert(tx *gorm.DB, c *models.Customer) error {
	inserted := false
	for attempt := 0; attempt < codeAttempts && !inserted; attempt++ {
		c.ID = 0
		c.CustomerCode = a.generate()

		// Her deneme ayrı savepoint: Postgres'te başarısız INSERT aksi halde
		// tüm transaction'ı bozar.
		err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(c).Error
		})
		switch {
		case err == nil:
			inserted = true
		case database.IsUniqueViolation(err):
			continue
		default:
			return apperror.Internal("Müşteri eklenemedi", err)
		}
	}
	if !inserted {
		return apperror.Conflict("Geçici customer_code üretilemedi.")
	}

	code, err := CanonicalCode(c.ID)
	if err != nil {
		return apperror.Internal("customer_code üretilemedi", err)
	}
	if err := tx.Model(c).Update("customer_code", code).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.Conflict("customer_code çakıştı, tekrar deneyin.")
		}
		return apperror.Internal("customer_code güncellenemedi", err)
	}
	c.CustomerCode = code
	return nil
}
