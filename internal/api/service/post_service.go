package service

import (
	"context"
	"ctchen222/Simple-Blog/internal/api/models"
	"ctchen222/Simple-Blog/internal/api/repository"
	"ctchen222/Simple-Blog/internal/auth"
	"ctchen222/Simple-Blog/internal/sanitize"
	"ctchen222/Simple-Blog/internal/validator"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var postMessages = map[string]string{
	"Title.required": MsgTitleRequired,
	"Body.required":  MsgBodyRequired,
}

// PostService defines the interface for post-related business logic.
type PostService interface {
	ListByAuthor(ctx context.Context, authorID int64) ([]models.Post, error)
	Create(ctx context.Context, authorID int64, req *models.PostRequest) (*models.Post, error)
	View(ctx context.Context, id int64, viewer *auth.Identity) (*models.PostWithAuthor, bool, error)
	GetOwned(ctx context.Context, id, userID int64) (*models.Post, error)
	Update(ctx context.Context, id, userID int64, req *models.PostRequest) (*models.Post, error)
	Delete(ctx context.Context, id, userID int64) error
}

type postService struct {
	postRepo repository.PostRepository
	now      func() time.Time
	created  metric.Int64Counter
	updated  metric.Int64Counter
	deleted  metric.Int64Counter
}

// NewPostService creates a new PostService. A nil clock uses time.Now.
func NewPostService(postRepo repository.PostRepository, now func() time.Time) PostService {
	if now == nil {
		now = time.Now
	}
	return &postService{
		postRepo: postRepo,
		now:      now,
		created:  newCounter("blog.posts.created", "Number of created posts"),
		updated:  newCounter("blog.posts.updated", "Number of edited posts"),
		deleted:  newCounter("blog.posts.deleted", "Number of deleted posts"),
	}
}

// ValidatePost strips markup from the title and body in place and returns every
// violated rule.
func ValidatePost(req *models.PostRequest) []string {
	req.Title = cleanText(req.Title)
	req.Body = cleanText(req.Body)

	messages, err := validator.Messages(req, postMessages)
	if err != nil {
		// PostRequest is always a struct; an invalid-validation error cannot occur.
		panic(err)
	}
	return messages
}

func cleanText(s string) string {
	return strings.TrimSpace(sanitize.StripHTML(strings.TrimSpace(s)))
}

// ListByAuthor returns the author's posts, newest first.
func (s *postService) ListByAuthor(ctx context.Context, authorID int64) ([]models.Post, error) {
	ctx, span := tracer.Start(ctx, "PostService.ListByAuthor")
	defer span.End()

	return s.postRepo.ListPostsByAuthor(ctx, authorID)
}

// Create validates the form and stores a new post by authorID.
func (s *postService) Create(ctx context.Context, authorID int64, req *models.PostRequest) (*models.Post, error) {
	ctx, span := tracer.Start(ctx, "PostService.Create")
	defer span.End()

	if messages := ValidatePost(req); len(messages) > 0 {
		return nil, &ValidationError{Messages: messages}
	}

	createdDate := s.now().UTC().Format(models.CreatedDateLayout)
	post, err := s.postRepo.CreatePost(ctx, req.Title, req.Body, authorID, createdDate)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("post.id", post.ID))
	s.created.Add(ctx, 1)
	slog.InfoContext(ctx, "Post created", "post.id", post.ID)

	return post, nil
}

// View loads a post with its author's name and reports whether viewer wrote it.
// An anonymous viewer (nil) is never the author.
func (s *postService) View(ctx context.Context, id int64, viewer *auth.Identity) (*models.PostWithAuthor, bool, error) {
	ctx, span := tracer.Start(ctx, "PostService.View")
	defer span.End()

	post, err := s.postRepo.GetPostWithAuthor(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if post == nil {
		return nil, false, ErrPostNotFound
	}

	isAuthor := viewer != nil && viewer.UserID == post.AuthorID
	return post, isAuthor, nil
}

// GetOwned loads a post that userID wrote. Missing and foreign posts both yield ErrPostNotFound.
func (s *postService) GetOwned(ctx context.Context, id, userID int64) (*models.Post, error) {
	ctx, span := tracer.Start(ctx, "PostService.GetOwned")
	defer span.End()

	post, err := s.postRepo.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil || post.AuthorID != userID {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Update edits a post owned by userID. On a validation failure the returned post holds
// the cleaned submitted values so the form can be shown again.
func (s *postService) Update(ctx context.Context, id, userID int64, req *models.PostRequest) (*models.Post, error) {
	ctx, span := tracer.Start(ctx, "PostService.Update")
	defer span.End()

	post, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if messages := ValidatePost(req); len(messages) > 0 {
		draft := *post
		draft.Title = req.Title
		draft.Body = req.Body
		return &draft, &ValidationError{Messages: messages}
	}

	if err := s.postRepo.UpdatePost(ctx, id, req.Title, req.Body); err != nil {
		return nil, err
	}
	s.updated.Add(ctx, 1)

	post.Title = req.Title
	post.Body = req.Body
	return post, nil
}

// Delete removes a post owned by userID.
func (s *postService) Delete(ctx context.Context, id, userID int64) error {
	ctx, span := tracer.Start(ctx, "PostService.Delete")
	defer span.End()

	if _, err := s.GetOwned(ctx, id, userID); err != nil {
		return err
	}
	if err := s.postRepo.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	s.deleted.Add(ctx, 1)
	slog.InfoContext(ctx, "Post deleted", "post.id", id)
	return nil
}
