package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"grocerify/internal/auth"
	"grocerify/internal/db"
	"grocerify/models"
)

// Seed account created by EnsureDefaultAdmin.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminEmail    = "admin@example.com"
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// RegisterInput carries the raw values of the registration form.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

func (in RegisterInput) validate() error {
	for _, f := range []struct{ name, val string }{
		{"username", in.Username},
		{"email", in.Email},
		{"password", in.Password},
		{"confirm_password", in.ConfirmPassword},
	} {
		if err := required(f.name, f.val); err != nil {
			return err
		}
	}
	if in.Password != in.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Reason: "passwords do not match"}
	}
	if !emailRe.MatchString(in.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email address"}
	}
	return nil
}

// UserRepository is the account store backed by the users table.
type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// EnsureDefaultAdmin inserts the seed admin account unless a user named "admin"
// already exists. Safe to call on every startup; the password is only hashed
// when the account is actually created.
func (r *UserRepository) EnsureDefaultAdmin(ctx context.Context) error {
	existing, err := r.getWithHash(ctx, DefaultAdminUsername)
	if err != nil {
		return fmt.Errorf("look up admin: %w", err)
	}
	if existing != nil {
		return nil
	}
	hash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err = r.db.ExecContext(ctx, `INSERT INTO users (username, password_hash, email, role) VALUES (?,?,?,?)
		ON CONFLICT(username) DO NOTHING`,
		DefaultAdminUsername, hash, DefaultAdminEmail, string(models.RoleAdmin))
	if err != nil {
		if constraintColumn(err) == "users.email" {
			return fmt.Errorf("seed admin: %w", ErrDuplicateEmail)
		}
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// Register validates the form, hashes the password and inserts a new account
// with role "user". The returned record never carries the hash.
func (r *UserRepository) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, &ValidationError{Field: "password", Reason: "too long"}
		}
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err = r.db.ExecContext(ctx, `INSERT INTO users (username, password_hash, email, role) VALUES (?,?,?,?)`,
		in.Username, hash, in.Email, string(models.RoleUser))
	if err != nil {
		switch constraintColumn(err) {
		case "users.username":
			return nil, ErrDuplicateUsername
		case "users.email":
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &models.User{Username: in.Username, Email: in.Email, Role: models.RoleUser}, nil
}

// VerifyCredentials returns the account (username and role) when the password
// matches. A failed check returns nil, nil whether the user is unknown or the
// password is wrong.
func (r *UserRepository) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	u, err := r.getWithHash(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if u == nil {
		auth.BurnVerify(password)
		return nil, nil
	}
	if !auth.VerifyPassword(password, u.PasswordHash) {
		return nil, nil
	}
	return &models.User{Username: u.Username, Role: u.Role}, nil
}

// RecordLogin stamps last_login with the current time.
func (r *UserRepository) RecordLogin(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE username = ?`,
		r.now().UTC().Format(db.TimeLayout), username)
	if err != nil {
		return fmt.Errorf("update last_login: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByUsername returns the account without its password hash, or nil when absent.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := r.getWithHash(ctx, username)
	if err != nil || u == nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

func (r *UserRepository) getWithHash(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u models.User
	var role string
	var lastLogin sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT username, password_hash, email, role, last_login FROM users WHERE username = ?`, username).
		Scan(&u.Username, &u.PasswordHash, &u.Email, &role, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = models.Role(role)
	if lastLogin.Valid {
		if t, err := time.ParseInLocation(db.TimeLayout, lastLogin.String, time.UTC); err == nil {
			u.LastLogin = &t
		}
	}
	return &u, nil
}
