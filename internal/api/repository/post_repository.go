package repository

import (
	"context"
	"ctchen222/Simple-Blog/internal/api/models"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

const postColumns = `posts.id, COALESCE(posts.createdDate, '') AS createdDate, posts.title, posts.body, posts.authorid`

//go:generate mockgen -source=post_repository.go -destination=mocks/post_repository.go -package=mocks

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	CreatePost(ctx context.Context, title, body string, authorID int64, createdDate string) (*models.Post, error)
	GetPostByID(ctx context.Context, id int64) (*models.Post, error)
	GetPostWithAuthor(ctx context.Context, id int64) (*models.PostWithAuthor, error)
	ListPostsByAuthor(ctx context.Context, authorID int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, id int64, title, body string) error
	DeletePost(ctx context.Context, id int64) error
}

type sqlitePostRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates a new SQLite-based PostRepository.
func NewPostRepository(db *sqlx.DB) PostRepository {
	return &sqlitePostRepository{db: db}
}

// CreatePost inserts a post and returns it with its assigned id.
func (r *sqlitePostRepository) CreatePost(ctx context.Context, title, body string, authorID int64, createdDate string) (*models.Post, error) {
	ctx, span := tracer.Start(ctx, "PostRepository.CreatePost")
	defer span.End()

	query := `INSERT INTO posts (title, body, authorid, createdDate) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, title, body, authorID, createdDate)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new post id: %w", err)
	}
	span.SetAttributes(attribute.Int64("post.id", id))

	return &models.Post{
		ID:          id,
		CreatedDate: createdDate,
		Title:       title,
		Body:        body,
		AuthorID:    authorID,
	}, nil
}

// GetPostByID retrieves a post by id, or nil if it does not exist.
func (r *sqlitePostRepository) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	ctx, span := tracer.Start(ctx, "PostRepository.GetPostByID")
	defer span.End()

	var post models.Post
	query := `SELECT ` + postColumns + ` FROM posts WHERE posts.id = ?`
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return &post, nil
}

// GetPostWithAuthor retrieves a post joined with its author's username, or nil if it does not exist.
func (r *sqlitePostRepository) GetPostWithAuthor(ctx context.Context, id int64) (*models.PostWithAuthor, error) {
	ctx, span := tracer.Start(ctx, "PostRepository.GetPostWithAuthor")
	defer span.End()

	var post models.PostWithAuthor
	query := `
	SELECT ` + postColumns + `, users.username
	FROM posts
	JOIN users ON posts.authorid = users.id
	WHERE posts.id = ?`
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get post %d with author: %w", id, err)
	}
	return &post, nil
}

// ListPostsByAuthor returns the author's posts, newest first.
func (r *sqlitePostRepository) ListPostsByAuthor(ctx context.Context, authorID int64) ([]models.Post, error) {
	ctx, span := tracer.Start(ctx, "PostRepository.ListPostsByAuthor")
	defer span.End()

	posts := []models.Post{}
	query := `SELECT ` + postColumns + ` FROM posts WHERE posts.authorid = ? ORDER BY posts.createdDate DESC, posts.id DESC`
	if err := r.db.SelectContext(ctx, &posts, query, authorID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list posts for author %d: %w", authorID, err)
	}
	span.SetAttributes(attribute.Int("post.count", len(posts)))
	return posts, nil
}

// UpdatePost replaces the title and body of a post.
func (r *sqlitePostRepository) UpdatePost(ctx context.Context, id int64, title, body string) error {
	ctx, span := tracer.Start(ctx, "PostRepository.UpdatePost")
	defer span.End()

	query := `UPDATE posts SET title = ?, body = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, title, body, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return nil
}

// DeletePost removes a post.
func (r *sqlitePostRepository) DeletePost(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "PostRepository.DeletePost")
	defer span.End()

	query := `DELETE FROM posts WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	return nil
}
