// Package account implements the sign-up flow: validate the form, then
// create the account with the configured backend.
package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/johnwards/menuseed/internal/backend"
	"github.com/johnwards/menuseed/internal/domain"
)

// ErrMissingFields is returned when the sign-up form is incomplete.
var ErrMissingFields = fmt.Errorf("please fill in all fields (name, email, and password)")

// SignUpForm is the data entered on the sign-up screen.
type SignUpForm struct {
	Name     string
	Email    string
	Password string
}

// Service registers new accounts.
type Service struct {
	registrar backend.Registrar
	logger    *slog.Logger
}

// NewService creates a Service. A nil logger uses slog.Default().
func NewService(registrar backend.Registrar, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{registrar: registrar, logger: logger}
}

// SignUp validates the form and creates the account. Name and email are
// trimmed; the password is passed through unchanged. An incomplete form
// never reaches the backend.
func (s *Service) SignUp(ctx context.Context, form SignUpForm) (domain.User, error) {
	name := strings.TrimSpace(form.Name)
	email := strings.TrimSpace(form.Email)
	if name == "" || email == "" || strings.TrimSpace(form.Password) == "" {
		return domain.User{}, ErrMissingFields
	}

	user, err := s.registrar.CreateUser(ctx, domain.NewUser{
		Name:     name,
		Email:    email,
		Password: form.Password,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("sign up %s: %w", email, err)
	}

	s.logger.Info("user signed up", "id", user.ID, "email", user.Email)
	return user, nil
}
