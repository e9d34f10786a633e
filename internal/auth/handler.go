package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/buspass/bus_pass/internal/users"
)

// LocalUserID is the fiber.Ctx locals key holding the authenticated user id.
const LocalUserID = "user_id"

// Handler exposes signup, login and profile endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginResponse struct {
	Status    string       `json:"status"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

// Signup handles account registration.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req users.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.Signup(c.UserContext(), req); err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			return fiber.NewError(http.StatusBadRequest, "Email already exists")
		case errors.Is(err, users.ErrInvalidInput):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return err
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "Signup successful"})
}

// Login validates credentials and returns a bearer token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req users.Credentials
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password are required")
	}
	session, err := h.svc.Login(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			return fiber.NewError(http.StatusBadRequest, "Invalid email or password")
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(loginResponse{
		Status:    "Login successful",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC(),
		User:      userResponse{ID: session.User.ID, Name: session.User.Name, Email: session.User.Email},
	})
}

// Me returns the profile of the authenticated caller.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals(LocalUserID).(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "No token")
	}
	user, err := h.svc.Profile(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "Invalid token")
		}
		return err
	}
	return c.JSON(fiber.Map{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"createdAt": user.CreatedAt,
	})
}
