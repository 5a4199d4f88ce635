package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rustyorg/gokv/internal/identity"
	"github.com/rustyorg/gokv/internal/logger"
)

// CredentialStore is the GORM-backed implementation of the users table and
// the four operations the core issues against it: ensure_schema,
// ensure_user, lookup_hash, and iter_users.
type CredentialStore struct {
	db *gorm.DB
}

// Open opens (creating the parent directory and the file if necessary) the
// SQLite database at dbDir/db.sqlite3 and runs ensure_schema. The WAL
// journal mode and busy_timeout pragma allow pooled concurrent access
// without the credential store deadlocking against the in-memory store, and
// let two independently-started processes pointed at the same dbDir both
// initialize safely.
func Open(dbDir string) (*CredentialStore, error) {
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("create credential db directory: %w", err)
	}

	path := filepath.Join(dbDir, "db.sqlite3")
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open credential database: %w", err)
	}

	store := &CredentialStore{db: db}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

// ensureSchema idempotently creates the users table. Safe against concurrent
// initialization by distinct processes: AutoMigrate is a no-op against an
// already-current schema, and SQLite's busy_timeout pragma absorbs the brief
// contention window if two processes race to create the file.
func (s *CredentialStore) ensureSchema() error {
	if err := s.db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

// EnsureUser hashes plaintextPassword with the Keccak-256 digest function
// and inserts (username, digest, isRoot). A unique-constraint violation on
// username is treated as success without overwriting the existing row,
// matching the spec's "root user and a regular user are inserted at
// startup; a second insert with the same username is a no-op" invariant.
func (s *CredentialStore) EnsureUser(ctx context.Context, username, plaintextPassword string, isRoot bool) error {
	digest := identity.HashPassword(plaintextPassword)
	user := newUser(username, digest, isRoot)

	err := s.db.WithContext(ctx).Create(&user).Error
	if err == nil {
		return nil
	}
	if isUniqueConstraintError(err) {
		logger.Debug("user already seeded, skipping", "username", username)
		return nil
	}
	return fmt.Errorf("ensure user %q: %w", username, err)
}

// LookupHash returns the stored password digest for username, or
// ErrUserNotFound if no such row exists.
func (s *CredentialStore) LookupHash(ctx context.Context, username string) (string, error) {
	var user User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return "", convertNotFoundError(err, ErrUserNotFound)
	}
	return user.Password, nil
}

// UserRow is a (username, stored_digest) pair as returned by IterUsers.
type UserRow struct {
	Username string
	Digest   string
}

// IterUsers returns every (username, stored_digest) row in the users table.
// WHOAMI uses this to resolve a session identity back to a username by
// recomputing the identity derivation for each row.
func (s *CredentialStore) IterUsers(ctx context.Context) ([]UserRow, error) {
	var users []User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	rows := make([]UserRow, len(users))
	for i, u := range users {
		rows[i] = UserRow{Username: u.Username, Digest: u.Password}
	}
	return rows, nil
}

// isUniqueConstraintError reports whether err is a unique-constraint
// violation from SQLite.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// convertNotFoundError converts gorm.ErrRecordNotFound to the given domain
// error, passing any other error through unchanged.
func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}
