package store

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the given id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
)

// User represents a registered user
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store is the durable user store. Users are created by registration and
// looked up by login, send and check; they are never updated or deleted.
type Store interface {
	// List returns all registered users, never nil.
	List() ([]User, error)

	// GetByID returns the user with the given id or ErrUserNotFound.
	GetByID(id int) (*User, error)

	// GetByEmail returns the first user with the given email (exact,
	// case-sensitive match) or ErrUserNotFound.
	GetByEmail(email string) (*User, error)

	// Register creates a new user with the next free id. It fails with
	// ErrEmailTaken when the email is already present, leaving the store
	// unchanged.
	Register(name, email string) (*User, error)

	// Close releases any resources held by the store.
	Close() error
}
