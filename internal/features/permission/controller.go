package permission

import (
	"errors"
	"fmt"

	"go-cmms/internal/features/user"
	"go-cmms/internal/middleware"
	"go-cmms/pkg/permissions"

	"github.com/gofiber/fiber/v2"
)

type PermissionController struct {
	Service PermissionService
}

func NewPermissionController(service PermissionService) *PermissionController {
	return &PermissionController{Service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrUnknownModule), errors.Is(err, ErrInvalidSheet), errors.Is(err, user.ErrInvalidRole):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// GetMyPermissions godoc
// @Summary      Caller's effective permissions
// @Tags         permissions
// @Produce      json
// @Success      200  {object} UserPermissions
// @Failure      401  {string} string "Unauthorized"
// @Router       /api/me/permissions [get]
func (ctrl *PermissionController) GetMyPermissions(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	perms, err := ctrl.Service.GetUserPermissions(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load permissions",
		})
	}
	if !perms.Active {
		// Deactivated accounts have no matrix at all
		perms.Effective = nil
	}

	return c.JSON(perms)
}

// ListRoleDefaults godoc
// @Summary      Default matrix of every role
// @Tags         permissions
// @Produce      json
// @Success      200  {object} map[string]permissions.Matrix
// @Router       /api/permissions/roles [get]
func (ctrl *PermissionController) ListRoleDefaults(c *fiber.Ctx) error {
	return c.JSON(ctrl.Service.AllRoleDefaults())
}

// GetRoleDefaults godoc
// @Summary      Default matrix of one role
// @Description  Unknown roles resolve to the all-false matrix
// @Tags         permissions
// @Produce      json
// @Param        role path string true "Role name"
// @Success      200  {object} permissions.Matrix
// @Router       /api/permissions/roles/{role} [get]
func (ctrl *PermissionController) GetRoleDefaults(c *fiber.Ctx) error {
	return c.JSON(ctrl.Service.RoleDefaults(c.Params("role")))
}

// GetUserPermissions godoc
// @Summary      Stored and effective permissions of a user
// @Tags         permissions
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200  {object} UserPermissions
// @Failure      404  {string} string "User not found"
// @Router       /api/permissions/users/{id} [get]
func (ctrl *PermissionController) GetUserPermissions(c *fiber.Ctx) error {
	perms, err := ctrl.Service.GetUserPermissions(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(perms)
}

// ReplacePermissions godoc
// @Summary      Replace a user's stored permissions
// @Description  Modules left out fall back to the role defaults
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        input body ReplacePermissionsRequest true "Stored entries"
// @Success      200  {object} UserPermissions
// @Failure      400  {string} string "Unknown module"
// @Router       /api/permissions/users/{id} [put]
func (ctrl *PermissionController) ReplacePermissions(c *fiber.Ctx) error {
	var req ReplacePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	id := c.Params("id")
	if err := ctrl.Service.ReplacePermissions(c.UserContext(), id, req.Permissions); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return ctrl.GetUserPermissions(c)
}

// SetModulePermission godoc
// @Summary      Override one module for a user
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        module path string true "Module"
// @Param        input body SetModuleRequest true "Triple"
// @Success      200  {object} UserPermissions
// @Router       /api/permissions/users/{id}/modules/{module} [put]
func (ctrl *PermissionController) SetModulePermission(c *fiber.Ctx) error {
	var req SetModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	triple := permissions.Triple{View: req.View, Edit: req.Edit, Delete: req.Delete}
	if err := ctrl.Service.SetModulePermission(c.UserContext(), c.Params("id"), c.Params("module"), triple); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return ctrl.GetUserPermissions(c)
}

// ResetPermissions godoc
// @Summary      Reset a user's permissions to the role defaults
// @Tags         permissions
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200  {object} UserPermissions
// @Router       /api/permissions/users/{id}/reset [post]
func (ctrl *PermissionController) ResetPermissions(c *fiber.Ctx) error {
	if err := ctrl.Service.ResetToRoleDefaults(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return ctrl.GetUserPermissions(c)
}

// ChangeRole godoc
// @Summary      Change a user's role
// @Description  The stored matrix is replaced by the new role's defaults
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        input body ChangeRoleRequest true "Role"
// @Success      200  {object} UserPermissions
// @Failure      400  {string} string "Invalid role"
// @Router       /api/permissions/users/{id}/role [put]
func (ctrl *PermissionController) ChangeRole(c *fiber.Ctx) error {
	var req ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.ChangeRole(c.UserContext(), c.Params("id"), req.Role); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return ctrl.GetUserPermissions(c)
}

// Backfill godoc
// @Summary      Add missing module entries to every user
// @Description  Additive migration: existing entries are never overwritten
// @Tags         permissions
// @Produce      json
// @Success      200  {object} BackfillReport
// @Router       /api/permissions/backfill [post]
func (ctrl *PermissionController) Backfill(c *fiber.Ctx) error {
	report, err := ctrl.Service.BackfillAll(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  "Backfill aborted: " + err.Error(),
			"report": report,
		})
	}
	return c.JSON(report)
}

// ExportRoleDefaults godoc
// @Summary      Export role defaults as XLSX
// @Tags         permissions
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file} file
// @Router       /api/permissions/roles/export [get]
func (ctrl *PermissionController) ExportRoleDefaults(c *fiber.Ctx) error {
	buf, err := ExportRoleDefaults(ctrl.Service.AllRoleDefaults())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build export",
		})
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=role_permissions.xlsx")
	return c.Send(buf.Bytes())
}

// ExportUserPermissions godoc
// @Summary      Export a user's effective permissions as XLSX
// @Tags         permissions
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id path string true "User ID"
// @Success      200  {file} file
// @Router       /api/permissions/users/{id}/export [get]
func (ctrl *PermissionController) ExportUserPermissions(c *fiber.Ctx) error {
	perms, err := ctrl.Service.GetUserPermissions(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	buf, err := ExportUserPermissions(perms)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build export",
		})
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=permissions_%s.xlsx", perms.UserID))
	return c.Send(buf.Bytes())
}

// ImportUserPermissions godoc
// @Summary      Replace a user's stored permissions from an XLSX sheet
// @Description  Accepts the layout produced by the user export
// @Tags         permissions
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "User ID"
// @Param        file formData file true "Permissions sheet"
// @Success      200  {object} UserPermissions
// @Failure      400  {string} string "Invalid sheet"
// @Router       /api/permissions/users/{id}/import [post]
func (ctrl *PermissionController) ImportUserPermissions(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to open file",
		})
	}
	defer file.Close()

	entries, err := ParseUserPermissions(file)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := ctrl.Service.ReplacePermissions(c.UserContext(), c.Params("id"), entries); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return ctrl.GetUserPermissions(c)
}
