package passes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes pass HTTP endpoints. Every route expects the auth
// middleware to have stored the caller id under userIDKey.
type Handler struct {
	service   *Service
	userIDKey string
}

// NewHandler builds a pass HTTP handler reading the caller from c.Locals(userIDKey).
func NewHandler(service *Service, userIDKey string) *Handler {
	return &Handler{service: service, userIDKey: userIDKey}
}

func (h *Handler) caller(c *fiber.Ctx) (string, error) {
	uid, _ := c.Locals(h.userIDKey).(string)
	if uid == "" {
		return "", fiber.NewError(http.StatusUnauthorized, "No token")
	}
	return uid, nil
}

// Create issues a pass for the caller.
func (h *Handler) Create(c *fiber.Ctx) error {
	uid, err := h.caller(c)
	if err != nil {
		return err
	}
	var req CreateInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	pass, err := h.service.Create(c.UserContext(), uid, req)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "Pass created successfully", "pass": pass})
}

// List returns the caller's passes.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, err := h.caller(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.UserContext(), uid)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(list)
}

// Get returns a single pass owned by the caller.
func (h *Handler) Get(c *fiber.Ctx) error {
	uid, err := h.caller(c)
	if err != nil {
		return err
	}
	pass, err := h.service.Get(c.UserContext(), uid, c.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(pass)
}

// Renew extends the expiry of a pass owned by the caller.
func (h *Handler) Renew(c *fiber.Ctx) error {
	uid, err := h.caller(c)
	if err != nil {
		return err
	}
	var req RenewInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	pass, err := h.service.Renew(c.UserContext(), uid, c.Params("id"), req)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "Pass renewed successfully", "pass": pass})
}

// Delete removes a pass owned by the caller.
func (h *Handler) Delete(c *fiber.Ctx) error {
	uid, err := h.caller(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), uid, c.Params("id")); err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "Pass deleted successfully"})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "Pass not found")
	case errors.Is(err, ErrUnknownOwner):
		return fiber.NewError(http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, ErrInvalidInput):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
