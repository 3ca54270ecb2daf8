package service

import (
	"context"
	"strings"
	"testing"

	"github.com/spec-kit/complaint-desk/internal/domain"
	"github.com/spec-kit/complaint-desk/internal/events"
	"github.com/spec-kit/complaint-desk/internal/simulator"
	apperrors "github.com/spec-kit/complaint-desk/pkg/util"
)

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t, fixtureOption{})
	ctx := context.Background()

	cases := []struct {
		name, role, email, password string
	}{
		{"wrong password", "consumer", "consumer@demo.com", "wrong-password"},
		{"unknown user", "consumer", "nobody@demo.com", "consumer123"},
		{"wrong role", "worker", "admin@demo.com", "admin123"},
		{"unknown role", "root", "admin@demo.com", "admin123"},
	}
	var messages []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.auth.Authenticate(ctx, tc.role, tc.email, tc.password)
			if !apperrors.HasCode(err, apperrors.CodeAuthFailed) {
				t.Fatalf("expected auth failure, got %v", err)
			}
			messages = append(messages, err.Error())
		})
	}
	for _, m := range messages[1:] {
		if m != messages[0] {
			t.Fatalf("auth failures differ: %q vs %q", messages[0], m)
		}
	}
}

func TestAuthenticateIssuesSession(t *testing.T) {
	f := newFixture(t, fixtureOption{})

	session, err := f.auth.Authenticate(context.Background(), "admin", "Admin@Demo.com", "admin123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session.Role != domain.RoleAdmin || session.Email != "admin@demo.com" || session.Token == "" {
		t.Fatalf("unexpected session %+v", session)
	}
	claims, err := f.auth.TokenManager().ParseToken(session.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != session.UserID || claims.Role != domain.RoleAdmin {
		t.Fatalf("claims do not match session: %+v", claims)
	}
}

func TestLoginRemembersOnlyWhenAsked(t *testing.T) {
	f := newFixture(t, fixtureOption{})
	ctx := context.Background()

	_, err := f.auth.Login(ctx, LoginInput{Role: "worker", Email: "worker@demo.com", Password: "worker123", RememberMe: true})
	if !apperrors.HasCode(err, apperrors.CodeAuthFailed) {
		t.Fatalf("worker account is not seeded in this fixture, got %v", err)
	}

	if _, err := f.auth.Login(ctx, LoginInput{Role: "consumer", Email: "consumer@demo.com", Password: "consumer123", RememberMe: true}); err != nil {
		t.Fatalf("login: %v", err)
	}
	remembered, ok, err := f.auth.Remembered(ctx)
	if err != nil || !ok {
		t.Fatalf("expected remembered session, ok=%v err=%v", ok, err)
	}
	if remembered.Email != "consumer@demo.com" || remembered.Role != domain.RoleConsumer {
		t.Fatalf("unexpected remembered session %+v", remembered)
	}
	n := f.current(t)
	if n.Kind != domain.NotificationSuccess || !strings.Contains(n.Message, "consumer dashboard") {
		t.Fatalf("unexpected notification %+v", n)
	}

	if _, err := f.auth.Login(ctx, LoginInput{Role: "admin", Email: "admin@demo.com", Password: "admin123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, ok, _ := f.auth.Remembered(ctx); ok {
		t.Fatal("login without remember me must clear the remembered session")
	}
}

func TestLoginValidatesForm(t *testing.T) {
	f := newFixture(t, fixtureOption{})

	_, err := f.auth.Login(context.Background(), LoginInput{Role: "", Email: "bad", Password: "123"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := apperrors.ToDomainError(err).Details["fields"].(map[string]any)
	if len(fields) != 3 {
		t.Fatalf("expected every field reported, got %v", fields)
	}
}

func TestForgetClearsRememberedSession(t *testing.T) {
	f := newFixture(t, fixtureOption{})
	ctx := context.Background()

	if err := f.remembered.Set(ctx, domain.RememberedSession{Email: "admin@demo.com", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := f.auth.Forget(ctx); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if _, ok, _ := f.auth.Remembered(ctx); ok {
		t.Fatal("remembered session should be gone")
	}
}

func validSignup() SignupInput {
	return SignupInput{
		Role:            "consumer",
		FirstName:       "Priya",
		LastName:        "Patel",
		Email:           "Priya@Example.com",
		ContactNumber:   "+91 98765-43210",
		PinCode:         "380001",
		Password:        "Secret#2024",
		ConfirmPassword: "Secret#2024",
	}
}

func TestSignupCreatesAccount(t *testing.T) {
	f := newFixture(t, fixtureOption{})
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, validSignup())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if !strings.HasPrefix(user.ID, simulator.PrefixUser) {
		t.Fatalf("unexpected user id %q", user.ID)
	}
	if user.Email != "priya@example.com" || user.ContactNumber != "+919876543210" || user.PinCode != "380001" {
		t.Fatalf("fields not normalized: %+v", user)
	}
	if user.PasswordHash == "" || user.PasswordHash == "Secret#2024" {
		t.Fatal("password must be stored hashed")
	}
	if got := f.eventsOf(events.EventUserSignedUp); len(got) != 1 {
		t.Fatalf("expected one signup event, got %d", len(got))
	}

	if _, err := f.auth.Authenticate(ctx, "consumer", "priya@example.com", "Secret#2024"); err != nil {
		t.Fatalf("new account cannot sign in: %v", err)
	}

	_, err = f.auth.Signup(ctx, validSignup())
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected duplicate conflict, got %v", err)
	}
}

func TestSignupRejectsMismatchedPasswords(t *testing.T) {
	f := newFixture(t, fixtureOption{})
	in := validSignup()
	in.ConfirmPassword = "Secret#2025"

	_, err := f.auth.Signup(context.Background(), in)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := apperrors.ToDomainError(err).Details["fields"].(map[string]any)
	if fields["confirmPassword"] != "Passwords do not match" {
		t.Fatalf("unexpected field errors %v", fields)
	}
}

func TestSignupSimulatedFailureCreatesNothing(t *testing.T) {
	f := newFixture(t, fixtureOption{
		profile: simulator.Profile{simulator.OpSignup: {FailureProbability: 0.1}},
		random:  func() float64 { return 0.05 },
	})
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, validSignup())
	if !apperrors.HasCode(err, apperrors.CodeSimulatedFailure) {
		t.Fatalf("expected simulated failure, got %v", err)
	}
	if _, err := f.users.GetByEmail(ctx, domain.RoleConsumer, "priya@example.com"); err == nil {
		t.Fatal("failed signup must not create an account")
	}
	if n := f.current(t); n.Kind != domain.NotificationError {
		t.Fatalf("expected error notification, got %+v", n)
	}
}

func TestPasswordResetDoesNotRevealAccounts(t *testing.T) {
	f := newFixture(t, fixtureOption{})
	ctx := context.Background()

	if err := f.auth.RequestPasswordReset(ctx, "admin", "admin@demo.com"); err != nil {
		t.Fatalf("reset known: %v", err)
	}
	known := f.current(t).Message

	if err := f.auth.RequestPasswordReset(ctx, "admin", "ghost@demo.com"); err != nil {
		t.Fatalf("reset unknown: %v", err)
	}
	unknown := f.current(t).Message

	if strings.ReplaceAll(known, "admin@demo.com", "X") != strings.ReplaceAll(unknown, "ghost@demo.com", "X") {
		t.Fatalf("reset outcomes differ: %q vs %q", known, unknown)
	}
	if got := f.eventsOf(events.EventPasswordReset); len(got) != 1 {
		t.Fatalf("only the existing account should trigger an email, got %d events", len(got))
	}

	if err := f.auth.RequestPasswordReset(ctx, "", "admin@demo.com"); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("missing role should fail validation, got %v", err)
	}
	if err := f.auth.RequestPasswordReset(ctx, "admin", "nope"); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("bad email should fail validation, got %v", err)
	}
}
