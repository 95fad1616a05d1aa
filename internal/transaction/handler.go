package transaction

import (
	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/httputil"
	"butce-backend/internal/period"

	"github.com/gofiber/fiber/v2"
)

// GET /api/transactions?from=2026-10-01&to=2026-10-31&type=YATIRIM&salesperson_id=1&customer_id=2
func ListTransactionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rng, err := period.Parse(c.Query("from"), c.Query("to"))
		if err != nil {
			return err
		}
		limit, offset := httputil.Paging(c, 500, 1000)

		rows, err := svc.List(c.UserContext(), Filter{
			Range:         rng,
			Type:          c.Query("type"),
			CustomerID:    httputil.QueryUint(c, "customer_id"),
			SalespersonID: httputil.QueryUint(c, "salesperson_id"),
			RetMemberID:   httputil.QueryUint(c, "ret_member_id"),
			Limit:         limit,
			Offset:        offset,
		})
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// GET /api/transactions/:id
func GetTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httputil.IDParam(c)
		if err != nil {
			return err
		}
		resp, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// POST /api/transactions
func CreateTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := audit.ActorFrom(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		in, err := DecodeInput(c.Body())
		if err != nil {
			return err
		}
		resp, err := svc.Create(c.UserContext(), actor, in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// PUT /api/transactions/:id
func UpdateTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := audit.ActorFrom(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		id, err := httputil.IDParam(c)
		if err != nil {
			return err
		}
		in, err := DecodeInput(c.Body())
		if err != nil {
			return err
		}
		resp, err := svc.Update(c.UserContext(), actor, id, in)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}

// DELETE /api/transactions/:id
func DeleteTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := audit.ActorFrom(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		id, err := httputil.IDParam(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), actor, id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}
