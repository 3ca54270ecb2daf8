package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-desk/internal/api/dto"
	"github.com/spec-kit/complaint-desk/internal/service"
	"github.com/spec-kit/complaint-desk/internal/validation"
)

// AuthHandler exposes the session gate.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	session, err := h.auth.Login(c.UserContext(), service.LoginInput{
		Role:       req.UserType,
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(session)})
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	user, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Role:            req.UserType,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		ContactNumber:   req.ContactNumber,
		PinCode:         req.PinCode,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Remembered handles GET /auth/remembered.
func (h *AuthHandler) Remembered(c *fiber.Ctx) error {
	session, ok, err := h.auth.Remembered(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.RememberedResponse{Remembered: ok}
	if ok {
		resp.Email = session.Email
		resp.UserType = session.Role
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Forget handles DELETE /auth/remembered.
func (h *AuthHandler) Forget(c *fiber.Ctx) error {
	if err := h.auth.Forget(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RequestPasswordReset handles POST /auth/password/reset.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if err := h.auth.RequestPasswordReset(c.UserContext(), req.UserType, req.Email); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"status": "sent"}})
}

// Me handles GET /auth/me for dashboard bootstrap.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	_, principal, err := actorFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(principal.User)})
}

// PasswordStrength handles POST /auth/password/strength for the signup
// form's strength meter.
func (h *AuthHandler) PasswordStrength(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	return c.JSON(fiber.Map{"data": validation.ScorePassword(req.Password)})
}
