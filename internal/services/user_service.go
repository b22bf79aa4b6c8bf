package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"counter_pos/internal/models"
	"counter_pos/internal/store"

	"go.uber.org/zap"
)

const (
	MinPasswordLength = 4
	MaxPasswordLength = 14
)

type UserDirectory interface {
	Authenticate(username, password string) (models.User, error)
	AddUser(username, password string, permission models.Permission) error
	DeleteUser(username string, requesting models.User) error
	ListUsers() []models.User
	GetUser(username string) (models.User, error)
	Count() int
}

type userDirectory struct {
	mu     sync.RWMutex
	store  store.Store[models.User]
	users  []models.User
	logger *zap.Logger
}

// NewUserDirectory loads the user collection once from s.
func NewUserDirectory(s store.Store[models.User], logger *zap.Logger) (UserDirectory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loaded, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	users := make([]models.User, 0, len(loaded))
	seen := make(map[string]bool, len(loaded))
	for _, u := range loaded {
		if seen[u.Username] {
			logger.Warn("ignoring duplicate user record", zap.String("username", u.Username))
			continue
		}
		seen[u.Username] = true
		users = append(users, u)
	}

	logger.Info("user directory loaded", zap.Int("users", len(users)))
	return &userDirectory{store: s, users: users, logger: logger}, nil
}

// Authenticate matches username and password exactly. The error does not
// reveal whether the username exists.
func (d *userDirectory) Authenticate(username, password string) (models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.users {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	d.logger.Info("authentication failed", zap.String("username", username))
	return models.User{}, ErrAuthFailure
}

func (d *userDirectory) AddUser(username, password string, permission models.Permission) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" {
		return newValidationError("username", "username is required")
	}
	if password == "" {
		return newValidationError("password", "password is required")
	}
	if permission == "" {
		return newValidationError("permission", "permission is required")
	}
	if !permission.Valid() {
		return newValidationError("permission", "unknown permission %q", permission)
	}
	if n := utf8.RuneCountInString(password); n < MinPasswordLength || n > MaxPasswordLength {
		return newValidationError("password", "password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexOf(username) >= 0 {
		return newValidationError("username", "username %q already exists", username)
	}

	next := append(append(make([]models.User, 0, len(d.users)+1), d.users...), models.User{
		Username:   username,
		Password:   password,
		Permission: permission,
	})
	if err := d.store.Save(next); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	d.users = next

	d.logger.Info("user added", zap.String("username", username), zap.String("permission", string(permission)))
	return nil
}

func (d *userDirectory) DeleteUser(username string, requesting models.User) error {
	if !requesting.IsAdmin() {
		return ErrPermission
	}
	if username == requesting.Username {
		return ErrSelfDelete
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexOf(username)
	if i < 0 {
		return fmt.Errorf("user %q: %w", username, ErrNotFound)
	}

	next := make([]models.User, 0, len(d.users)-1)
	next = append(next, d.users[:i]...)
	next = append(next, d.users[i+1:]...)
	if err := d.store.Save(next); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	d.users = next

	d.logger.Info("user deleted", zap.String("username", username), zap.String("by", requesting.Username))
	return nil
}

// ListUsers returns raw records. Display layers should present User.Redacted.
func (d *userDirectory) ListUsers() []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.User(nil), d.users...)
}

func (d *userDirectory) GetUser(username string) (models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if i := d.indexOf(username); i >= 0 {
		return d.users[i], nil
	}
	return models.User{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (d *userDirectory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

func (d *userDirectory) indexOf(username string) int {
	for i, u := range d.users {
		if u.Username == username {
			return i
		}
	}
	return -1
}

// DecodeUsers reads the canonical array of user records, falling back to the
// legacy {"username": "password"} object. Legacy users become waiters.
func DecodeUsers(data []byte) ([]models.User, error) {
	var users []models.User
	arrErr := json.Unmarshal(data, &users)
	if arrErr == nil {
		if users == nil {
			users = []models.User{}
		}
		return users, nil
	}

	var legacy map[string]string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, arrErr
	}
	names := make([]string, 0, len(legacy))
	for name := range legacy {
		names = append(names, name)
	}
	sort.Strings(names)

	users = make([]models.User, 0, len(names))
	for _, name := range names {
		users = append(users, models.User{Username: name, Password: legacy[name], Permission: models.Waiter})
	}
	return users, nil
}
