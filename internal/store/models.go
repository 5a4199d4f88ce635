// Package store implements the persisted credential table: schema creation,
// user seeding, and the lookup/iteration queries the core issues against it.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is the persisted credential record: id, username, password digest,
// timestamps, and the root_user flag. password is always the 64-char hex
// Keccak-256 digest of the plaintext, never the plaintext itself.
type User struct {
	ID        string `gorm:"column:id;primaryKey;size:36"`
	Username  string `gorm:"column:username;uniqueIndex;not null;size:255"`
	Password  string `gorm:"column:password;not null;size:64"`
	CreatedAt string `gorm:"column:created_at;not null"`
	UpdatedAt string `gorm:"column:updated_at;not null"`
	RootUser  bool   `gorm:"column:root_user;not null;default:false"`
}

// TableName pins the GORM table name to "users" per the persisted schema.
func (User) TableName() string { return "users" }

// ErrUserNotFound is returned when a username has no matching row.
var ErrUserNotFound = errors.New("user not found")

func newUser(username, passwordDigest string, rootUser bool) User {
	now := time.Now().UTC().Format(time.RFC3339)
	return User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  passwordDigest,
		CreatedAt: now,
		UpdatedAt: now,
		RootUser:  rootUser,
	}
}
