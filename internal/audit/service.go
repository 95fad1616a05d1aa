package audit

import (
	"context"
	"encoding/json"

	"butce-backend/internal/apperror"
	"butce-backend/internal/auth"
	"butce-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actor is the user a mutation is attributed to.
type Actor struct {
	ID   uint
	Name string
}

// ActorFrom builds the actor from the authenticated request.
func ActorFrom(c *fiber.Ctx) (Actor, bool) {
	id, ok := auth.CurrentUser(c)
	if !ok {
		return Actor{}, false
	}
	name := id.DisplayName
	if name == "" {
		name = id.Username
	}
	return Actor{ID: id.ID, Name: name}, true
}

type LogOptions struct {
	Actor       Actor
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog stores one audit row using tx, so it commits or rolls back
// together with the mutation it describes.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	log := models.AuditLog{
		UserID:      opts.Actor.ID,
		UserName:    opts.Actor.Name,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: truncate(opts.Description, maxDescription),
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}

	if err := tx.Create(&log).Error; err != nil {
		return apperror.Internal("Audit log kaydedilemedi", err)
	}
	return nil
}

// snapshot encodes v, storing JSON null when v is nil or cannot be encoded.
func snapshot(v any) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

const maxDescription = 255

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type Filter struct {
	EntityType string
	EntityID   uint
	UserID     uint
	Limit      int
	Offset     int
}

func List(ctx context.Context, db *gorm.DB, f Filter) ([]models.AuditLog, error) {
	dbq := db.WithContext(ctx).Model(&models.AuditLog{})
	if f.EntityType != "" {
		dbq = dbq.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID > 0 {
		dbq = dbq.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID > 0 {
		dbq = dbq.Where("user_id = ?", f.UserID)
	}

	var logs []models.AuditLog
	err := dbq.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&logs).Error
	return logs, err
}
