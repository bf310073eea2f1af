// Package repository defines the persistence interfaces consumed by the
// service layer. Services depend on these interfaces, never on the
// concrete SQLite types — tests inject in-memory mocks, and the storage
// backend can be swapped without touching business logic.
package repository

import (
	"context"

	"github.com/jcrawley/miniblog/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByUsername returns the FIRST user whose username matches.
	// Usernames are not unique; this mirrors a find-one lookup.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type BlogRepository interface {
	Create(ctx context.Context, blog *model.Blog) error
	GetByID(ctx context.Context, id string) (*model.Blog, error)
	List(ctx context.Context) ([]model.Blog, error)
	Delete(ctx context.Context, id string) error
	// IncrementLikes atomically adds 1 to the post's like counter and
	// returns the updated post. Concurrent calls never lose an update.
	IncrementLikes(ctx context.Context, id string) (*model.Blog, error)
	// AppendComment adds a comment to the end of the post's comment
	// sequence and returns the updated post.
	AppendComment(ctx context.Context, id string, comment model.Comment) (*model.Blog, error)
	// LikeComment adds 1 to the like counter of the comment at the given
	// position. An index outside [0, len(comments)) is a NotFound and
	// leaves the post unmodified.
	LikeComment(ctx context.Context, id string, index int) (*model.Blog, error)
}
