// Package httputil handler'ların ortak kullandığı query ve path ayrıştırma.
package httputil

import (
	"strconv"
	"strings"

	"butce-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// IDParam ":id" path parametresini pozitif tam sayı olarak okur.
func IDParam(c *fiber.Ctx) (uint, error) {
	id, ok := ParseUint(c.Params("id"))
	if !ok {
		return 0, apperror.Validation("Geçersiz id")
	}
	return id, nil
}

// ParseUint yalnızca pozitif tam sayı kabul eder.
func ParseUint(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// QueryUint key'deki pozitif tam sayı; yoksa veya geçersizse 0.
func QueryUint(c *fiber.Ctx, key string) uint {
	n, _ := ParseUint(c.Query(key))
	return n
}

// QueryBool 1/0, true/false, yes/no, on/off anlar. Diğerleri nil.
func QueryBool(c *fiber.Ctx, key string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "1", "true", "yes", "on":
		v = true
	case "0", "false", "no", "off":
		v = false
	default:
		return nil
	}
	return &v
}

// Paging limit/offset okur. limit yoksa def, [1, max] aralığına sıkıştırılır.
func Paging(c *fiber.Ctx, def, max int) (limit, offset int) {
	limit = def
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > max {
		limit = max
	}

	if n, err := strconv.Atoi(strings.TrimSpace(c.Query("offset"))); err == nil && n > 0 {
		offset = n
	}
	return limit, offset
}
