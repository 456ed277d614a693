package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/johnwards/menuseed/internal/account"
	"github.com/johnwards/menuseed/internal/config"
)

func signupCmd(ctx context.Context, cfg config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	b, err := openBackends(ctx, cfg, newHTTPClient(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = b.Close(context.WithoutCancel(ctx)) }()

	if b.registrar == nil {
		return fmt.Errorf("backend %q does not support sign-up", cfg.Backend)
	}

	user, err := account.NewService(b.registrar, slog.Default()).SignUp(ctx, account.SignUpForm{
		Name:     *name,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(stdout, "created user %s (%s)\n", user.ID, user.Email)
	return err
}
