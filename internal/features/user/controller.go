package user

import (
	"errors"
	"strconv"

	"go-cmms/internal/common/models"
	"go-cmms/pkg/permissions"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	UserService UserService
}

func NewUserController(userService UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

type UpdateUserRequest struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Status    string `json:"status,omitempty"`
}

type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Status    string `json:"status,omitempty"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrInvalidStatus):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// ListUsers godoc
// @Summary      List all users
// @Description  Get a paginated list of users
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Param        status query string false "Filter by status"
// @Param        role query string false "Filter by role"
// @Success      200  {object} map[string]interface{}
// @Failure      500  {string} string "Failed to fetch users"
// @Router       /api/users [get]
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)

	filter := make(map[string]interface{})
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if role, ok := permissions.ParseRole(c.Query("role")); ok {
		filter["role"] = role
	}

	users, total, err := ctrl.UserService.ListUsers(c.UserContext(), filter, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUser godoc
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200  {object} models.User
// @Failure      404  {string} string "User not found"
// @Router       /api/users/{id} [get]
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	user, err := ctrl.UserService.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(user)
}

// CreateUser godoc
// @Summary      Create user
// @Description  Create a new user; its permissions start as the role defaults
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        input body CreateUserRequest true "Create User Input"
// @Success      201  {object} map[string]string
// @Failure      400  {string} string "Invalid request body"
// @Failure      500  {string} string "Failed to create user"
// @Router       /api/users [post]
func (ctrl *UserController) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Username == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username, email, password and role are required",
		})
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Role:      permissions.Role(req.Role),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Status:    req.Status,
	}

	if err := ctrl.UserService.CreateUser(c.UserContext(), user); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": "Failed to create user: " + err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"id":      user.ID.Hex(),
	})
}

// UpdateUser godoc
// @Summary      Update user
// @Description  Update profile fields. Role and permissions are changed through /api/permissions.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        input body UpdateUserRequest true "Update User Input"
// @Success      200  {object} map[string]string
// @Failure      400  {string} string "Invalid request body"
// @Router       /api/users/{id} [put]
func (ctrl *UserController) UpdateUser(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := make(map[string]interface{})
	for field, v := range map[string]string{
		"username":   req.Username,
		"email":      req.Email,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"phone":      req.Phone,
		"status":     req.Status,
	} {
		if v != "" {
			updates[field] = v
		}
	}

	if err := ctrl.UserService.UpdateUser(c.UserContext(), c.Params("id"), updates); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": "Failed to update user: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
	})
}

// UpdateUserStatus godoc
// @Summary      Update user status
// @Description  Update the status of a user (active, inactive, suspended)
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID"
// @Param        input body UpdateUserStatusRequest true "Update User Status Input"
// @Success      200  {object} map[string]string
// @Router       /api/users/{id}/status [put]
func (ctrl *UserController) UpdateUserStatus(c *fiber.Ctx) error {
	var req UpdateUserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.UserService.UpdateUserStatus(c.UserContext(), c.Params("id"), req.Status); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": "Failed to update user status: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "User status updated successfully",
	})
}

// DeleteUser godoc
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200  {object} map[string]string
// @Router       /api/users/{id} [delete]
func (ctrl *UserController) DeleteUser(c *fiber.Ctx) error {
	if err := ctrl.UserService.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": "Failed to delete user: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}
