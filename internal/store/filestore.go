package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists users as a single JSON file, schema [{id, name, email}, …].
// The whole file is loaded and rewritten on each operation. All operations
// serialize through a mutex so concurrent registrations cannot race or assign
// duplicate ids.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed user store at the given path
func NewFileStore(path string) (*FileStore, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// load reads the full user list. A missing or unparsable file reads as an
// empty list, matching the original store's behavior.
func (s *FileStore) load() []User {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []User{}
	}
	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return []User{}
	}
	return users
}

// save overwrites the whole file with the given user list
func (s *FileStore) save(users []User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write user store: %w", err)
	}
	return nil
}

// List returns all registered users
func (s *FileStore) List() ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// GetByID retrieves a user by id
func (s *FileStore) GetByID(id int) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.load() {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByEmail retrieves the first user with the given email
func (s *FileStore) GetByEmail(email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.load() {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// Register creates a new user with id = max existing id + 1 (1 when empty)
func (s *FileStore) Register(name, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.load()
	maxID := 0
	for _, user := range users {
		if user.Email == email {
			return nil, ErrEmailTaken
		}
		if user.ID > maxID {
			maxID = user.ID
		}
	}

	user := User{ID: maxID + 1, Name: name, Email: email}
	users = append(users, user)
	if err := s.save(users); err != nil {
		return nil, err
	}
	return &user, nil
}

// Close is a no-op for the file store
func (s *FileStore) Close() error {
	return nil
}
