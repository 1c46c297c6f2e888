package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary      List journal entries
// @Description  Audit trail of state changes, newest first
// @Tags         journal
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(20)
// @Param        module query string false "Filter by module"
// @Param        record_id query string false "Filter by record"
// @Param        actor_id query string false "Filter by actor"
// @Success      200  {array} models.AuditLog
// @Failure      403  {string} string "insufficient permission"
// @Router       /api/journal [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filters := make(map[string]interface{})
	for _, key := range []string{"module", "record_id", "actor_id", "action"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	logs, err := ctrl.Service.ListLogs(c.UserContext(), filters, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(logs)
}
