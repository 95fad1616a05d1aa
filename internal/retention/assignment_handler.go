package retention

import (
	"butce-backend/internal/apperror"
	"butce-backend/internal/audit"
	"butce-backend/internal/httputil"

	"github.com/gofiber/fiber/v2"
)

// POST /api/ret-assignments
func AssignHandler(co *Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AssignRequest
		if err := c.BodyParser(&body); err != nil {
			return apperror.Validation("Geçersiz istek gövdesi")
		}
		actor, _ := audit.ActorFrom(c)

		res, err := co.Assign(c.UserContext(), actor, body)
		if err != nil {
			return err
		}
		status := fiber.StatusCreated
		if res.Idempotent {
			status = fiber.StatusOK
		}
		return c.Status(status).JSON(res)
	}
}

// DELETE /api/ret-assignments/:id
func UnassignHandler(co *Coordinator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := audit.ActorFrom(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		id, err := httputil.IDParam(c)
		if err != nil {
			return err
		}
		if err := co.Unassign(c.UserContext(), actor, id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// GET /api/ret-assignments?search=&member_id=&limit=100&offset=0
func ListAssignmentsHandler(l *Listings) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := httputil.Paging(c, 100, 200)
		rows, err := l.Assignments(c.UserContext(), AssignmentFilter{
			Search:   c.Query("search"),
			MemberID: httputil.QueryUint(c, "member_id"),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": rows})
	}
}

// GET /api/ret-assignments/candidates?unassigned=1&search=
func CandidatesHandler(l *Listings) fiber.Handler {
	return func(c *fiber.Ctx) error {
		unassigned := true
		if v := httputil.QueryBool(c, "unassigned"); v != nil {
			unassigned = *v
		}
		limit, offset := httputil.Paging(c, 100, 200)
		rows, err := l.Candidates(c.UserContext(), CandidateFilter{
			Search:         c.Query("search"),
			UnassignedOnly: unassigned,
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": rows})
	}
}

// GET /api/ret-assignments/ret-members
func MemberPickerHandler(l *Listings) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := l.ActiveMembers(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": rows})
	}
}

// GET /api/ret-assignments/summary
func SummaryHandler(l *Listings) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := l.Summary(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": rows})
	}
}

// GET /api/gm/assignable?limit=200&offset=0
func AssignableHandler(l *Listings) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := httputil.Paging(c, 200, 1000)
		rows, err := l.Assignable(c.UserContext(), limit, offset)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": rows})
	}
}
