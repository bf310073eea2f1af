package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/jcrawley/miniblog/internal/apperror"
	"github.com/jcrawley/miniblog/internal/model"
	"github.com/jcrawley/miniblog/internal/repository"
)

// BlogStore implements repository.BlogRepository against the blogs
// table.
type BlogStore struct {
	conn *sql.DB
}

// compile-time check that *BlogStore implements repository.BlogRepository
var _ repository.BlogRepository = (*BlogStore)(nil)

// Create inserts a new blog post. The id, like counter, empty comment
// sequence, and creation timestamp are set here; CreatedAt is never
// touched again by any other operation.
func (s *BlogStore) Create(ctx context.Context, blog *model.Blog) error {
	blog.ID = xid.New().String()
	blog.Likes = 0
	blog.CreatedAt = time.Now()
	if blog.Comments == nil {
		blog.Comments = []model.Comment{}
	}

	comments, err := json.Marshal(blog.Comments)
	if err != nil {
		return fmt.Errorf("sqlite: encoding comments: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO blogs (id, title, content, author, url, likes, comments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		blog.ID,
		blog.Title,
		blog.Content,
		blog.Author,
		blog.URL,
		blog.Likes,
		string(comments),
		blog.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating blog: %w", err)
	}

	return nil
}

// GetByID retrieves a single blog post, comments included.
func (s *BlogStore) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	return s.getBlog(ctx, id)
}

// List retrieves all blog posts in insertion order.
func (s *BlogStore) List(ctx context.Context) ([]model.Blog, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, title, content, author, url, likes, comments, created_at
		 FROM blogs
		 ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing blogs: %w", err)
	}
	defer rows.Close()

	blogs := []model.Blog{}
	for rows.Next() {
		var b model.Blog
		var comments string
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Content, &b.Author, &b.URL,
			&b.Likes, &comments, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning blog row: %w", err)
		}
		if err := json.Unmarshal([]byte(comments), &b.Comments); err != nil {
			return nil, fmt.Errorf("sqlite: decoding comments for blog %s: %w", b.ID, err)
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating blogs: %w", err)
	}

	return blogs, nil
}

// Delete removes a blog post, embedded comments and all.
// RowsAffected tells us whether the id resolved — 0 means not found.
func (s *BlogStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM blogs WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting blog %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("blog", id)
	}

	return nil
}

// IncrementLikes adds 1 to a post's like counter and returns the
// updated post.
//
// WHY NOT fetch, increment, save?
// A read-modify-write lets two concurrent likes interleave as read(5),
// read(5), write(6), write(6) — one increment silently lost. Pushing
// the arithmetic into a single UPDATE makes the increment atomic:
// N concurrent likes always land as +N.
func (s *BlogStore) IncrementLikes(ctx context.Context, id string) (*model.Blog, error) {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE blogs SET likes = likes + 1 WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: liking blog %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("blog", id)
	}

	return s.getBlog(ctx, id)
}

// AppendComment adds a comment to the end of the post's comment
// sequence and returns the updated post. The comment's id and zeroed
// like counter are assigned here.
//
// json_insert with the '$[#]' path appends to the stored JSON array in
// one statement, so concurrent appends can't overwrite each other —
// each is an independent insert at the current end of the array.
func (s *BlogStore) AppendComment(ctx context.Context, id string, comment model.Comment) (*model.Blog, error) {
	comment.ID = xid.New().String()
	comment.Likes = 0

	encoded, err := json.Marshal(comment)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encoding comment: %w", err)
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE blogs SET comments = json_insert(comments, '$[#]', json(?))
		 WHERE id = ?`,
		string(encoded),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: appending comment to blog %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("blog", id)
	}

	return s.getBlog(ctx, id)
}

// LikeComment adds 1 to the like counter of the comment at the given
// position and returns the updated post.
//
// The bounds check lives in the WHERE clause, so the increment and the
// validation are one atomic statement. If nothing was updated we fetch
// the post once more to report the right failure: missing post vs
// invalid index (both surface as NotFound at the API boundary).
func (s *BlogStore) LikeComment(ctx context.Context, id string, index int) (*model.Blog, error) {
	if index < 0 {
		return nil, apperror.NotFound("comment", fmt.Sprintf("%s[%d]", id, index))
	}

	path := fmt.Sprintf("$[%d].likes", index)
	result, err := s.conn.ExecContext(ctx,
		`UPDATE blogs
		 SET comments = json_set(comments, ?, json_extract(comments, ?) + 1)
		 WHERE id = ? AND json_array_length(comments) > ?`,
		path,
		path,
		id,
		index,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: liking comment %d on blog %s: %w", index, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Post missing or index out of range — find out which.
		if _, err := s.getBlog(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperror.NotFound("comment", fmt.Sprintf("%s[%d]", id, index))
	}

	return s.getBlog(ctx, id)
}

func (s *BlogStore) getBlog(ctx context.Context, id string) (*model.Blog, error) {
	var b model.Blog
	var comments string

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, title, content, author, url, likes, comments, created_at
		 FROM blogs WHERE id = ?`,
		id,
	).Scan(
		&b.ID, &b.Title, &b.Content, &b.Author, &b.URL,
		&b.Likes, &comments, &b.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("blog", id)
		}
		return nil, fmt.Errorf("sqlite: getting blog %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(comments), &b.Comments); err != nil {
		return nil, fmt.Errorf("sqlite: decoding comments for blog %s: %w", b.ID, err)
	}

	return &b, nil
}
