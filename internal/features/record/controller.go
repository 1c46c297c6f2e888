package record

import (
	"errors"

	"go-cmms/internal/middleware"
	"go-cmms/pkg/permissions"

	"github.com/gofiber/fiber/v2"
)

type RecordController struct {
	Service RecordService
}

func NewRecordController(service RecordService) *RecordController {
	return &RecordController{Service: service}
}

var reservedQuery = map[string]bool{"page": true, "limit": true, "sort_by": true, "sort_order": true}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidModule):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func actor(c *fiber.Ctx) string {
	if claims, ok := middleware.ClaimsFrom(c); ok {
		return claims.UserID
	}
	return ""
}

// CreateRecord godoc
// @Summary      Create a record in a module
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        module path string true "Module"
// @Success      201  {object} models.Record
// @Failure      403  {string} string "insufficient permission"
// @Router       /api/modules/{module}/records [post]
func (ctrl *RecordController) CreateRecord(c *fiber.Ctx) error {
	var data map[string]interface{}
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	record, err := ctrl.Service.CreateRecord(c.UserContext(), permissions.Module(c.Params("module")), data, actor(c))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

// GetRecord godoc
// @Summary      Get a record
// @Tags         records
// @Produce      json
// @Param        module path string true "Module"
// @Param        id path string true "Record ID"
// @Success      200  {object} models.Record
// @Failure      404  {string} string "Record not found"
// @Router       /api/modules/{module}/records/{id} [get]
func (ctrl *RecordController) GetRecord(c *fiber.Ctx) error {
	record, err := ctrl.Service.GetRecord(c.UserContext(), permissions.Module(c.Params("module")), c.Params("id"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(record)
}

// ListRecords godoc
// @Summary      List records of a module
// @Description  Query parameters other than page, limit, sort_by and sort_order filter on data fields
// @Tags         records
// @Produce      json
// @Param        module path string true "Module"
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Success      200  {object} map[string]interface{}
// @Router       /api/modules/{module}/records [get]
func (ctrl *RecordController) ListRecords(c *fiber.Ctx) error {
	page := ParseInt64(c.Query("page", "1"), 1)
	limit := ParseInt64(c.Query("limit", "10"), 10)
	sortBy := c.Query("sort_by", "created_at")
	sortOrder := SortOrder(c.Query("sort_order", "desc"))

	filters := make(map[string]interface{})
	for k, v := range c.Queries() {
		if !reservedQuery[k] {
			filters[k] = v
		}
	}

	records, total, err := ctrl.Service.ListRecords(c.UserContext(), permissions.Module(c.Params("module")), filters, page, limit, sortBy, sortOrder)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data":  records,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// UpdateRecord godoc
// @Summary      Update record fields
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        module path string true "Module"
// @Param        id path string true "Record ID"
// @Success      200  {object} map[string]string
// @Router       /api/modules/{module}/records/{id} [put]
func (ctrl *RecordController) UpdateRecord(c *fiber.Ctx) error {
	var data map[string]interface{}
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.UpdateRecord(c.UserContext(), permissions.Module(c.Params("module")), c.Params("id"), data, actor(c)); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Record updated successfully",
	})
}

// DeleteRecord godoc
// @Summary      Delete a record
// @Tags         records
// @Produce      json
// @Param        module path string true "Module"
// @Param        id path string true "Record ID"
// @Success      200  {object} map[string]string
// @Router       /api/modules/{module}/records/{id} [delete]
func (ctrl *RecordController) DeleteRecord(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteRecord(c.UserContext(), permissions.Module(c.Params("module")), c.Params("id"), actor(c)); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Record deleted successfully",
	})
}
