package model

import "time"

// Blog represents a single blog post, including its embedded comments.
//
// Comments live INSIDE the blog record rather than in their own table.
// A post exclusively owns its comment sequence: comments are appended,
// never deleted or reordered, so a comment's position in the slice is a
// stable address for like operations. The repository persists the slice
// as a JSON column, which keeps the whole post a single self-contained
// document with one-statement reads and writes.
//
// Author is an advisory reference to a User id — the store does not
// enforce that the target exists.
type Blog struct {
	ID        string    `json:"id"        db:"id"`
	Title     string    `json:"title"     db:"title"`
	Content   string    `json:"content"   db:"content"`
	Author    string    `json:"author"    db:"author"` // User id
	URL       string    `json:"url"       db:"url"`    // optional, unused by any operation
	Likes     int       `json:"likes"     db:"likes"`
	Comments  []Comment `json:"comments"  db:"comments"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"` // set once at creation, immutable
}

// Comment is a sub-record embedded in a Blog — not an independently
// addressable entity. User is an advisory reference, used only to
// resolve a display name on the client.
//
// ID is generated at append time so clients have a stable identifier
// even though the like API addresses comments by index.
type Comment struct {
	ID      string `json:"id"`
	User    string `json:"user"` // User id
	Content string `json:"content"`
	Likes   int    `json:"likes"`
}
