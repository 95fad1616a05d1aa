package salesperson

import (
	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/httputil"

	"github.com/gofiber/fiber/v2"
)

// GET /api/salespersons?active=1
func ListSalespersonsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.List(c.UserContext(), httputil.QueryBool(c, "active"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": rows})
	}
}

// GET /api/salespersons/:id
func GetSalespersonHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httputil.IDParam(c)
		if err != nil {
			return err
		}
		sp, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(sp)
	}
}

// POST /api/salespersons
func CreateSalespersonHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := audit.ActorFrom(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Geçersiz istek gövdesi")
		}
		sp, err := svc.Create(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(sp)
	}
}

// PUT /api/salespersons/:id
func UpdateSalespersonHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := audit.ActorFrom(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		id, err := httputil.IDParam(c)
		if err != nil {
			return err
		}
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Geçersiz istek gövdesi")
		}
		sp, err := svc.Update(c.UserContext(), actor, id, body)
		if err != nil {
			return err
		}
		return c.JSON(sp)
	}
}

// DELETE /api/salespersons/:id (pasif et)
func DeleteSalespersonHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := audit.ActorFrom(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		id, err := httputil.IDParam(c)
		if err != nil {
			return err
		}
		if err := svc.Deactivate(c.UserContext(), actor, id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id, "is_active": false})
	}
}
