package students

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the student record does not exist.
	ErrNotFound = errors.New("students: not found")
	// ErrAlreadyExists indicates a duplicate roll number.
	ErrAlreadyExists = errors.New("students: already exists")
)

// Student is an enrolled student record. UserID links to the account of
// students who can log in; walk-in registrations have none.
type Student struct {
	ID            int64
	UserID        *int64
	FullName      string
	Phone         *string
	Email         *string
	BatchID       *int64
	RollNumber    *string
	DateOfBirth   *time.Time
	Address       *string
	ParentName    *string
	ParentPhone   *string
	AdmissionDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
