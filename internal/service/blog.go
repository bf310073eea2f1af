package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jcrawley/miniblog/internal/apperror"
	"github.com/jcrawley/miniblog/internal/model"
	"github.com/jcrawley/miniblog/internal/repository"
)

// Validation limits for blog posts and comments.
const (
	MaxTitleLength   = 200
	MaxContentLength = 100000 // ~100KB
)

// BlogService handles business logic for blog posts and their embedded
// comments.
type BlogService struct {
	repo   repository.BlogRepository
	logger *slog.Logger
}

// NewBlogService creates a BlogService.
func NewBlogService(repo repository.BlogRepository, logger *slog.Logger) *BlogService {
	return &BlogService{
		repo:   repo,
		logger: logger,
	}
}

// List returns all blog posts in insertion order. No author or comment
// resolution happens here — joining display names onto ids is the
// client's job.
func (s *BlogService) List(ctx context.Context) ([]model.Blog, error) {
	blogs, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list blogs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing blogs: %w", err)
	}
	return blogs, nil
}

// GetByID returns a single blog post. Blank or unresolvable ids are a
// NotFound.
func (s *BlogService) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.NotFound("blog", id)
	}
	return s.repo.GetByID(ctx, id)
}

// Create validates and saves a new blog post.
//
// Author must be present but is NOT checked against the user collection:
// the reference is advisory, exactly as a document store would treat it.
// The repository assigns the id, zeroes the like counter, and stamps
// CreatedAt.
func (s *BlogService) Create(ctx context.Context, title, content, author, url string) (*model.Blog, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if len(content) > MaxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}

	if strings.TrimSpace(author) == "" {
		return nil, apperror.ValidationFailed("author", "author is required")
	}

	blog := &model.Blog{
		Title:   title,
		Content: content,
		Author:  author,
		URL:     url,
	}

	if err := s.repo.Create(ctx, blog); err != nil {
		s.logger.Error("failed to create blog",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating blog: %w", err)
	}

	s.logger.Info("blog created",
		slog.String("id", blog.ID),
		slog.String("author", blog.Author),
	)

	return blog, nil
}

// Like increments a post's like counter by exactly 1 and returns the
// updated post. The increment is atomic in the repository, so N likes —
// sequential or concurrent — always total N.
func (s *BlogService) Like(ctx context.Context, id string) (*model.Blog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.NotFound("blog", id)
	}

	blog, err := s.repo.IncrementLikes(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("blog liked",
		slog.String("id", blog.ID),
		slog.Int("likes", blog.Likes),
	)

	return blog, nil
}

// AddComment appends a comment to the end of the post's comment
// sequence and returns the updated post.
//
// Deliberately loose: neither the commenting user nor the content is
// validated. The user id is an advisory reference, and an empty comment
// is the author's problem — this mirrors how the post's own author field
// is handled.
func (s *BlogService) AddComment(ctx context.Context, blogID, userID, content string) (*model.Blog, error) {
	blogID = strings.TrimSpace(blogID)
	if blogID == "" {
		return nil, apperror.NotFound("blog", blogID)
	}

	blog, err := s.repo.AppendComment(ctx, blogID, model.Comment{
		User:    userID,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment added",
		slog.String("blogID", blog.ID),
		slog.String("userID", userID),
		slog.Int("comments", len(blog.Comments)),
	)

	return blog, nil
}

// LikeComment increments the like counter of the comment at the given
// position and returns the updated post. An index outside the comment
// sequence is a NotFound and leaves the post untouched.
//
// Index addressing is sound here because comments are append-only:
// a position, once read, keeps meaning the same comment.
func (s *BlogService) LikeComment(ctx context.Context, blogID string, index int) (*model.Blog, error) {
	blogID = strings.TrimSpace(blogID)
	if blogID == "" {
		return nil, apperror.NotFound("blog", blogID)
	}

	blog, err := s.repo.LikeComment(ctx, blogID, index)
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment liked",
		slog.String("blogID", blog.ID),
		slog.Int("index", index),
	)

	return blog, nil
}

// Delete removes a post entirely, embedded comments included, and
// returns the post's state as it was just before deletion.
func (s *BlogService) Delete(ctx context.Context, id string) (*model.Blog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.NotFound("blog", id)
	}

	// Fetch first so we can hand back the prior state. A concurrent
	// delete between the two calls surfaces as NotFound from Delete,
	// which is the right answer anyway.
	blog, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("blog deleted", slog.String("id", id))
	return blog, nil
}
