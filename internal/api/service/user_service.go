package service

import (
	"context"
	"ctchen222/Simple-Blog/internal/api/models"
	"ctchen222/Simple-Blog/internal/api/repository"
	"ctchen222/Simple-Blog/internal/auth"
	"ctchen222/Simple-Blog/internal/sanitize"
	"ctchen222/Simple-Blog/internal/validator"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var registerMessages = map[string]string{
	"Username.required": "Username is required.",
	"Username.min":      "Username must be at least 3 characters.",
	"Username.max":      "Username must be under 10 characters.",
	"Username.alphanum": "Username must be alphanumeric.",
	"Password.required": "Password is required.",
	"Password.min":      "Password must be at least 8 characters.",
	"Password.max":      "Password must be under 50 characters.",
	"Password.bcrypt":   MsgPasswordTooLong,
}

// UserService defines the interface for user-related business logic.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (string, error)
	Login(ctx context.Context, req *models.LoginRequest) (string, error)
}

type userService struct {
	userRepo   repository.UserRepository
	tokens     *auth.TokenService
	registered metric.Int64Counter
	logins     metric.Int64Counter
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, tokens *auth.TokenService) UserService {
	return &userService{
		userRepo:   userRepo,
		tokens:     tokens,
		registered: newCounter("blog.users.registered", "Number of registered users"),
		logins:     newCounter("blog.logins", "Number of login attempts by result"),
	}
}

// Register validates the form, creates the user and returns a session token.
// Every violated rule is reported in a single *ValidationError.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "UserService.Register")
	defer span.End()

	req.Username = strings.TrimSpace(req.Username)

	messages, err := validator.Messages(req, registerMessages)
	if err != nil {
		return "", fmt.Errorf("failed to validate registration: %w", err)
	}

	if req.Username != "" {
		existingUser, err := s.userRepo.GetUserByUsername(ctx, req.Username)
		if err != nil {
			return "", err
		}
		if existingUser != nil {
			messages = append(messages, MsgUsernameTaken)
		}
	}

	if len(messages) > 0 {
		return "", &ValidationError{Messages: messages}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.CreateUser(ctx, sanitize.StripHTML(req.Username), hash)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return "", &ValidationError{Messages: []string{MsgUsernameTaken}}
		}
		return "", err
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	s.registered.Add(ctx, 1)
	slog.InfoContext(ctx, "User registered", "user.id", user.ID, "user.name", user.Username)

	return s.tokens.Issue(user.ID, user.Username)
}

// Login checks the credentials and returns a session token on success.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "UserService.Login")
	defer span.End()

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		s.countLogin(ctx, "blank")
		return "", ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		s.countLogin(ctx, "rejected")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", err
	}
	s.countLogin(ctx, "success")
	slog.InfoContext(ctx, "User logged in", "user.id", user.ID)

	return token, nil
}

func (s *userService) countLogin(ctx context.Context, result string) {
	s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
