package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/johnwards/menuseed/internal/domain"
)

// ErrInvalidCredentials is returned when an email/password pair does not match.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// SQLiteUserStore implements backend.Registrar backed by SQLite. Passwords
// are stored as bcrypt hashes.
type SQLiteUserStore struct {
	db   *sql.DB
	cost int
}

// NewSQLiteUserStore creates a new SQLiteUserStore.
func NewSQLiteUserStore(db *sql.DB) *SQLiteUserStore {
	return &SQLiteUserStore{db: db, cost: bcrypt.DefaultCost}
}

// CreateUser registers a new account. Emails are unique case-insensitively.
func (s *SQLiteUserStore) CreateUser(ctx context.Context, in domain.NewUser) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     strings.ToLower(in.Email),
		CreatedAt: now(),
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, string(hash), u.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, fmt.Errorf("email %q already registered: %w", in.Email, domain.ErrConflict)
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

// Authenticate returns the user for an email/password pair.
func (s *SQLiteUserStore) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	var u domain.User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE lower(email) = lower(?)`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &hash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("compare password: %w", err)
	}

	return u, nil
}
