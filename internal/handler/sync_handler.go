package handler

import (
	"go-catalog-mirror/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SyncHandler struct {
	sync service.SyncService
}

func NewSyncHandler(s service.SyncService) *SyncHandler {
	return &SyncHandler{sync: s}
}

// TriggerSync runs one reconciliation cycle on demand. The scheduled job is
// unaffected; cycles are idempotent, so an extra run is always safe.
func (h *SyncHandler) TriggerSync(c *fiber.Ctx) error {
	if err := h.sync.RunCycle(c.Context()); err != nil {
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Sync cycle completed"})
}
