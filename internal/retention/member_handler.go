package retention

import (
	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/httputil"

	"github.com/gofiber/fiber/v2"
)

// GET /api/ret-members?search=&active=1&limit=100&offset=0
func ListMembersHandler(svc *MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := httputil.Paging(c, 100, 200)
		rows, err := svc.List(c.UserContext(), MemberFilter{
			Search: c.Query("search"),
			Active: httputil.QueryBool(c, "active"),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// GET /api/ret-members/:id
func GetMemberHandler(svc *MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httputil.IDParam(c)
		if err != nil {
			return err
		}
		m, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(m)
	}
}

// POST /api/ret-members
func CreateMemberHandler(svc *MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := audit.ActorFrom(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		var body MemberInput
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Geçersiz istek gövdesi")
		}
		m, err := svc.Create(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

// PUT /api/ret-members/:id
func UpdateMemberHandler(svc *MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := audit.ActorFrom(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		id, err := httputil.IDParam(c)
		if err != nil {
			return err
		}
		var body MemberInput
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Geçersiz istek gövdesi")
		}
		m, err := svc.Update(c.UserContext(), actor, id, body)
		if err != nil {
			return err
		}
		return c.JSON(m)
	}
}

// DELETE /api/ret-members/:id
func DeleteMemberHandler(svc *MemberService) fiber.Handler {
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
		return c.JSON(fiber.Map{"success": true})
	}
}
