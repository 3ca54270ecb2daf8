package dto

import (
	"time"

	"github.com/spec-kit/complaint-desk/internal/domain"
)

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	UserType   string `json:"userType"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// SignupRequest payload for POST /auth/signup.
type SignupRequest struct {
	UserType        string `json:"userType"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	ContactNumber   string `json:"contactNumber"`
	PinCode         string `json:"pinCode"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// PasswordResetRequest payload for POST /auth/password/reset.
type PasswordResetRequest struct {
	UserType string `json:"userType"`
	Email    string `json:"email"`
}

// SessionResponse is returned after a successful sign-in.
type SessionResponse struct {
	Token       string      `json:"token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	UserID      string      `json:"user_id"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	RedirectURL string      `json:"redirect_url"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Role          domain.Role `json:"role"`
	ContactNumber string      `json:"contact_number,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// RememberedResponse pre-fills the login form.
type RememberedResponse struct {
	Remembered bool        `json:"remembered"`
	Email      string      `json:"email,omitempty"`
	UserType   domain.Role `json:"userType,omitempty"`
}

var dashboards = map[domain.Role]string{
	domain.RoleConsumer: "/dashboard/consumer",
	domain.RoleAdmin:    "/dashboard/admin",
	domain.RoleWorker:   "/dashboard/worker",
}

// NewSessionResponse maps a session and picks its dashboard.
func NewSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		Token:       s.Token,
		ExpiresAt:   s.ExpiresAt,
		UserID:      s.UserID,
		Email:       s.Email,
		Role:        s.Role,
		RedirectURL: dashboards[s.Role],
	}
}

// NewUserResponse maps a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		ContactNumber: u.ContactNumber,
		CreatedAt:     u.CreatedAt,
	}
}
