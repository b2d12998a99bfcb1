package repository

import (
	"context"
	"ctchen222/Simple-Blog/internal/api/models"
	"database/sql"
	"errors"
	"fmt"

	"github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sqlite3 "modernc.org/sqlite/lib"
)

var tracer = otel.Tracer("api.repository")

// ErrUsernameTaken is returned when an insert hits the users.username unique constraint.
var ErrUsernameTaken = errors.New("username already taken")

//go:generate mockgen -source=user_repository.go -destination=mocks/user_repository.go -package=mocks

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type sqliteUserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new SQLite-based UserRepository.
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

// CreateUser inserts a new user with an already hashed password.
func (r *sqliteUserRepository) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.CreateUser")
	defer span.End()

	query := `INSERT INTO users (username, password) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, query, username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new user id: %w", err)
	}
	span.SetAttributes(attribute.Int64("user.id", id))

	return &models.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

// GetUserByUsername retrieves a user from the database by their username.
func (r *sqliteUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetUserByUsername")
	defer span.End()

	var user models.User
	query := `SELECT id, username, password FROM users WHERE username = ?`
	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No user found is not an application error
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

// isUniqueViolation reports whether err is SQLite's extended UNIQUE constraint code,
// which the driver enables on every connection.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
