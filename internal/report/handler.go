package report

import (
	"butce-backend/internal/apperror"
	"butce-backend/internal/httputil"
	"butce-backend/internal/period"

	"github.com/gofiber/fiber/v2"
)

// GET /api/reports/summary?from=YYYY-MM-DD&to=YYYY-MM-DD
func SummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rng, err := period.Parse(c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		out, err := svc.Summary(c.UserContext(), rng)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}

// GET /api/reports/by-salesperson?from=&to=
func BySalespersonHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rng, err := period.Parse(c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		rows, err := svc.BySalesperson(c.UserContext(), rng)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"rows": rows})
	}
}

// GET /api/reports/salesperson-stats?salesperson_id=&from=&to=
// Boş aralık: bu ay / geçen ay
func SalespersonStatsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var spID uint
		if raw := c.Query("salesperson_id"); raw != "" {
			id, ok := httputil.ParseUint(raw)
			if !ok {
				return apperror.Validation("salesperson_id geçersiz")
			}
			spID = id
		}
		rng, err := period.Parse(c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		out, err := svc.SalespersonStats(c.UserContext(), spID, rng)
		if err != nil {
			return err
		}
		return c.JSON(out)
	}
}
