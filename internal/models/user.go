package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

type User struct {
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	Permission Permission `json:"permission"`
}

type Permission string

const (
	Admin  Permission = "Admin"
	Waiter Permission = "Waiter"
)

func (p Permission) Valid() bool {
	return p == Admin || p == Waiter
}

// ParsePermission accepts the canonical names case-insensitively.
func ParsePermission(s string) (Permission, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return Admin, nil
	case "waiter":
		return Waiter, nil
	case "":
		return "", errors.New("permission is required")
	}
	return "", fmt.Errorf("unknown permission %q", s)
}

func (u User) IsAdmin() bool {
	return u.Permission == Admin
}

// Validate checks the shape of a persisted user record. Password length is
// not checked here: legacy records may hold any password.
func (u User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if !u.Permission.Valid() {
		return fmt.Errorf("user %q: unknown permission %q", u.Username, u.Permission)
	}
	return nil
}

// Redacted returns a copy with the password masked to its length.
func (u User) Redacted() User {
	u.Password = strings.Repeat("*", utf8.RuneCountInString(u.Password))
	return u
}
