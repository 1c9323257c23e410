package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/rl1809/techstore/internal/core/domain"
	"github.com/rl1809/techstore/internal/port"
)

const (
	MsgRegistered        = "Registration successful. Confirmation email sent."
	MsgEmailTaken        = "Email already registered."
	MsgInvalidCredential = "Invalid email or password."
	MsgLoggedIn          = "Login successful."
)

// The email rule lets a trailing root dot through.
const emailRules = "required,email,endsnotwith=."

var validate = validator.New()

// Result is the outcome of a use case that the presentation layer renders
// as a message next to a success flag.
type Result struct {
	Success bool
	Message string
}

// RegistrationService runs the sign-up and sign-in use cases.
type RegistrationService struct {
	users  port.UserRepository
	mailer port.Mailer
}

func NewRegistrationService(users port.UserRepository, mailer port.Mailer) *RegistrationService {
	return &RegistrationService{users: users, mailer: mailer}
}

// Register validates the e-mail, stores the user and sends a confirmation.
// Expected rejections come back as a failed Result; only unexpected storage
// failures are returned as errors. The password is stored as given.
func (s *RegistrationService) Register(ctx context.Context, email, password, name string) (Result, error) {
	if err := ValidateEmail(email); err != nil {
		var invalid *EmailError
		if !errors.As(err, &invalid) {
			return Result{}, fmt.Errorf("validate email: %w", err)
		}
		return Result{Message: "Invalid email: " + invalid.Detail()}, nil
	}

	user := &domain.User{Email: email, Password: password, Name: name}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if domain.IsUniqueViolation(err, "email") {
			return Result{Message: MsgEmailTaken}, nil
		}
		return Result{}, fmt.Errorf("create user: %w", err)
	}

	s.mailer.SendConfirmation(ctx, email, name)
	return Result{Success: true, Message: MsgRegistered}, nil
}

// Login looks the user up by e-mail and compares the stored password
// verbatim.
func (s *RegistrationService) Login(ctx context.Context, email, password string) (*domain.User, Result, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, Result{Message: MsgInvalidCredential}, nil
	}
	if err != nil {
		return nil, Result{}, fmt.Errorf("get user: %w", err)
	}
	if user.Password != password {
		return nil, Result{Message: MsgInvalidCredential}, nil
	}
	return user, Result{Success: true, Message: MsgLoggedIn}, nil
}

// EmailError reports which rule an address failed.
type EmailError struct {
	Email string
	Rule  string
}

func (e *EmailError) Error() string { return "invalid email: " + e.Detail() }

func (e *EmailError) Detail() string {
	switch e.Rule {
	case "required":
		return "the address is empty"
	case "endsnotwith":
		return fmt.Sprintf("%q must not end with a period", e.Email)
	default:
		return fmt.Sprintf("%q is not a valid e-mail address", e.Email)
	}
}

// ValidateEmail returns an *EmailError when email is not a plain address
// with a dotted domain.
func ValidateEmail(email string) error {
	err := validate.Var(email, emailRules)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &EmailError{Email: email, Rule: verrs[0].Tag()}
	}
	return err
}
