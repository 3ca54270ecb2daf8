package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-desk/internal/auth"
	"github.com/spec-kit/complaint-desk/internal/config"
	"github.com/spec-kit/complaint-desk/internal/directory"
	"github.com/spec-kit/complaint-desk/internal/domain"
	"github.com/spec-kit/complaint-desk/internal/events"
	"github.com/spec-kit/complaint-desk/internal/notification"
	"github.com/spec-kit/complaint-desk/internal/repository"
	"github.com/spec-kit/complaint-desk/internal/simulator"
	"github.com/spec-kit/complaint-desk/internal/validation"
	apperrors "github.com/spec-kit/complaint-desk/pkg/util"
)

// AuthService is the session gate in front of the three dashboards.
type AuthService struct {
	users      repository.UserRepository
	remembered repository.RememberedStore
	tokenMgr   *auth.TokenManager
	sim        *simulator.Simulator
	dispatcher events.Dispatcher
	report     reporter
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	Remembered    repository.RememberedStore
	Simulator     *simulator.Simulator
	Notifications *notification.Center
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// LoginInput is the login form.
type LoginInput struct {
	Role       string
	Email      string
	Password   string
	RememberMe bool
}

// SignupInput is the account creation form.
type SignupInput struct {
	Role            string
	FirstName       string
	LastName        string
	Email           string
	ContactNumber   string
	PinCode         string
	Password        string
	ConfirmPassword string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		remembered: deps.Remembered,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		sim:        deps.Simulator,
		dispatcher: deps.Dispatcher,
		report:     reporter{notices: deps.Notifications, logger: logger},
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   cfg.Notification.DetailedTTL(),
	}
}

// TokenManager exposes the token manager for dashboard bootstrap.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Authenticate checks credentials for role through the simulator. Every
// failure, whatever its cause, is the same AUTH_FAILED error.
func (s *AuthService) Authenticate(ctx context.Context, role, email, password string) (*domain.Session, error) {
	r, ok := domain.ParseRole(role)
	if !ok {
		auth.BurnCompare(password)
		return nil, apperrors.NewAuthError()
	}

	var user *domain.User
	slot := "login:" + role + ":" + strings.ToLower(strings.TrimSpace(email))
	_, err := s.sim.Run(ctx, simulator.Request{
		Slot:      slot,
		Operation: simulator.OpLogin,
		Payload:   map[string]any{"role": role},
		Check: func(ctx context.Context) error {
			found, err := s.users.GetByEmail(ctx, r, email)
			if err != nil {
				auth.BurnCompare(password)
				return err
			}
			if err := auth.ComparePassword(found.PasswordHash, password); err != nil {
				return err
			}
			user = found
			return nil
		},
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) && !apperrors.HasCode(err, apperrors.CodeSimulatedFailure) {
			s.logger.Debug("authentication failed", zap.String("role", role), zap.Error(err))
		}
		return nil, apperrors.NewAuthError()
	}

	session, err := s.tokenMgr.Issue(user)
	if err != nil {
		s.logger.Error("issue session token", zap.Error(err))
		return nil, apperrors.NewAuthError()
	}
	return session, nil
}

// Login validates the form, authenticates and updates "remember me".
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.Session, error) {
	report := validation.LoginForm.Validate(map[string]string{
		validation.FieldUserType: in.Role,
		validation.FieldEmail:    in.Email,
		validation.FieldPassword: in.Password,
	})
	if err := report.Err(); err != nil {
		return nil, s.report.fail(err)
	}

	session, err := s.Authenticate(ctx, in.Role, in.Email, in.Password)
	if err != nil {
		return nil, s.report.fail(err)
	}

	if in.RememberMe {
		err = s.remembered.Set(ctx, domain.RememberedSession{Email: session.Email, Role: session.Role})
	} else {
		err = s.remembered.Clear(ctx)
	}
	if err != nil {
		s.logger.Warn("update remembered session", zap.Error(err))
	}

	s.report.success(fmt.Sprintf("Welcome back! Redirecting to your %s dashboard...", session.Role))
	s.logger.Info("user logged in", zap.String("user_id", session.UserID), zap.String("role", string(session.Role)))
	return session, nil
}

// Signup creates an account after the simulated remote call succeeds.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	report := validation.SignupForm.Validate(map[string]string{
		validation.FieldUserType:        in.Role,
		validation.FieldFirstName:       in.FirstName,
		validation.FieldLastName:        in.LastName,
		validation.FieldEmail:           in.Email,
		validation.FieldContactNumber:   in.ContactNumber,
		validation.FieldPinCode:         in.PinCode,
		validation.FieldPassword:        in.Password,
		validation.FieldConfirmPassword: in.ConfirmPassword,
	})
	if err := report.Err(); err != nil {
		return nil, s.report.fail(err)
	}
	phone, ok := validation.NormalizePhone(in.ContactNumber)
	if !ok {
		return nil, s.report.fail(apperrors.NewValidationError("Please enter a valid 10-digit mobile number",
			map[string]any{"fields": map[string]any{validation.FieldContactNumber: "invalid phone number"}}))
	}
	pin, _ := validation.NormalizePIN(in.PinCode)
	role := domain.Role(in.Role)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.GetByEmail(ctx, role, email); err == nil {
		return nil, s.report.fail(accountExists(email))
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, s.report.fail(apperrors.NewInternalError(err))
	}

	slot := "signup:" + email
	res, err := s.sim.Run(ctx, simulator.Request{
		Slot:      slot,
		Operation: simulator.OpSignup,
		Payload:   map[string]any{"role": in.Role},
	})
	if err != nil {
		return nil, s.report.fail(simulatorError(simulator.OpSignup, slot, err))
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, s.report.fail(apperrors.NewInternalError(err))
	}
	user := &domain.User{
		ID:            res.ID,
		Email:         email,
		Name:          strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName),
		Role:          role,
		PasswordHash:  hash,
		ContactNumber: phone,
		PinCode:       pin,
		CreatedAt:     res.Timestamp,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.report.fail(accountExists(email))
		}
		return nil, s.report.fail(apperrors.NewInternalError(err))
	}

	s.report.success("Account created successfully! You can now sign in.",
		notification.WithDetails(
			domain.NotificationDetail{Label: "User ID", Value: user.ID},
			domain.NotificationDetail{Label: "Account Type", Value: string(user.Role)},
		))
	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserSignedUp,
		Actor:   events.Actor{Role: user.Role, UserID: user.ID},
		Payload: events.UserSignedUpPayload{Email: user.Email, Role: user.Role},
	})
	return user, nil
}

// Remembered returns the remembered sign-in, if any.
func (s *AuthService) Remembered(ctx context.Context) (domain.RememberedSession, bool, error) {
	session, ok, err := s.remembered.Get(ctx)
	if err != nil {
		return domain.RememberedSession{}, false, apperrors.NewInternalError(err)
	}
	return session, ok, nil
}

// Forget clears the remembered sign-in.
func (s *AuthService) Forget(ctx context.Context) error {
	if err := s.remembered.Clear(ctx); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// RequestPasswordReset always reports the same outcome so it cannot be
// used to discover which addresses hold accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, role, email string) error {
	if _, ok := domain.ParseRole(role); !ok {
		return s.report.fail(apperrors.NewValidationError("Please select your account type first",
			map[string]any{"fields": map[string]any{validation.FieldUserType: "required"}}))
	}
	if res := validation.Validate(validation.FieldEmail, email, validation.Required(), validation.EmailFormat()); !res.OK {
		return s.report.fail(apperrors.NewValidationError("Please enter a valid email address",
			map[string]any{"fields": map[string]any{validation.FieldEmail: res.Message}}))
	}
	email = strings.ToLower(strings.TrimSpace(email))

	slot := "password-reset:" + email
	if _, err := s.sim.Run(ctx, simulator.Request{Slot: slot, Operation: simulator.OpPasswordReset}); err != nil {
		return s.report.fail(simulatorError(simulator.OpPasswordReset, slot, err))
	}

	if user, err := s.users.GetByEmail(ctx, domain.Role(role), email); err == nil {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventPasswordReset,
			Actor:   events.Actor{Role: user.Role, UserID: user.ID},
			Payload: events.PasswordResetPayload{Email: user.Email, Role: user.Role},
		})
	}
	s.report.success(fmt.Sprintf("Password reset link has been sent to %s. Please check your inbox and follow the instructions.", email),
		notification.WithTTL(s.resetTTL))
	return nil
}

// SeedAccounts loads demo credentials; existing accounts are left alone.
func (s *AuthService) SeedAccounts(ctx context.Context, accounts []directory.Account) error {
	for _, acc := range accounts {
		hash, err := auth.HashPassword(acc.Password, s.bcryptCost)
		if err != nil {
			return err
		}
		user := &domain.User{
			ID:           s.sim.IDs().Next(simulator.PrefixUser),
			Email:        strings.ToLower(acc.Email),
			Name:         acc.Name,
			Role:         domain.Role(acc.Role),
			PasswordHash: hash,
			CreatedAt:    time.Now(),
		}
		if err := s.users.Create(ctx, user); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("seed account %s: %w", acc.Email, err)
		}
	}
	return nil
}

func (s *AuthService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func accountExists(email string) error {
	return apperrors.NewConflict("An account with this email already exists", map[string]any{"email": email})
}
