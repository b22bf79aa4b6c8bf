// Package store persists collections of records.
//
// Load is tolerant: a missing, empty or malformed document yields an empty
// collection so a damaged file never keeps the counter from starting. The
// next Save overwrites whatever was there.
package store

// Store loads and saves a whole collection of records.
type Store[T any] interface {
	Load() ([]T, error)
	Save(records []T) error
}

// Validator is implemented by record types that can check their own shape.
// Records failing validation are dropped at load time.
type Validator interface {
	Validate() error
}

// RejectReporter is implemented by stores that can return the records their
// last Load dropped as invalid.
type RejectReporter[T any] interface {
	Rejected() []T
}
