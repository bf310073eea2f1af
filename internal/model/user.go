// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain values with JSON struct
// tags that control how they serialize over the API.
package model

import "time"

// User represents a registered account.
//
// WHY PasswordHash AND NOT Password?
// We never store or return the raw password. Registration hashes the
// password with bcrypt (see internal/auth) and only the hash is persisted.
// The `json:"-"` tag strips the hash from every API response — the service
// layer doesn't have to remember to blank it out.
//
// Username is the login key. It defaults to "" and is deliberately NOT
// unique: login resolves the first matching row, mirroring a find-one
// lookup against a document store.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`     // display name, required
	Username     string    `json:"username"  db:"username"` // login key, may be empty
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
