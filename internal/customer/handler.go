package customer

import (
	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/httputil"

	"github.com/gofiber/fiber/v2"
)

// GET /api/customers?search=&salesperson_id=&active=1&limit=&offset=
func ListCustomersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := httputil.Paging(c, 200, 1000)
		rows, err := svc.List(c.UserContext(), Filter{
			Search:        c.Query("search"),
			SalespersonID: httputil.QueryUint(c, "salesperson_id"),
			Active:        httputil.QueryBool(c, "active"),
			Limit:         limit,
			Offset:        offset,
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": rows})
	}
}

// GET /api/customers/:id
func GetCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httputil.IDParam(c)
		if err != nil {
			return err
		}
		v, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(v)
	}
}

// POST /api/customers
func CreateCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := audit.ActorFrom(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Geçersiz istek gövdesi")
		}
		v, err := svc.Create(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler(svc *Service) fiber.Handler {
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
		v, err := svc.Update(c.UserContext(), actor, id, body)
		if err != nil {
			return err
		}
		return c.JSON(v)
	}
}

// DELETE /api/customers/:id (pasif et)
func DeleteCustomerHandler(svc *Service) fiber.Handler {
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
