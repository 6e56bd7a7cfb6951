package customer

import (
	"customer-service/internal/pkg/apperrors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a date of birth.
const DateLayout = "2006-01-02"

var ErrNotFound = fmt.Errorf("%w: customer", apperrors.ErrNotFound)

type Customer struct {
	CustomerID  int64
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewCustomerInput carries the caller supplied fields of a customer; the
// store assigns everything else.
type NewCustomerInput struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
}

func NewCustomer(input NewCustomerInput) *Customer {
	return &Customer{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		DateOfBirth: DateOf(input.DateOfBirth),
	}
}

func (c *Customer) Validate(now time.Time) error {
	if c.FirstName == "" {
		return apperrors.NewValidationError("firstName", "First name is mandatory")
	}
	if c.LastName == "" {
		return apperrors.NewValidationError("lastName", "Last name is mandatory")
	}
	if c.DateOfBirth.IsZero() {
		return apperrors.NewValidationError("dateOfBirth", "Date of birth is required")
	}
	if !IsPastDate(c.DateOfBirth, now) {
		return apperrors.NewValidationError("dateOfBirth", "Date of birth must be in the past")
	}
	return nil
}

// DateOf drops the clock part of t, keeping its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsPastDate reports whether the calendar date of d is strictly before
// today's date in UTC, whatever zone now carries.
func IsPastDate(d, now time.Time) bool {
	return DateOf(d).Before(DateOf(now.UTC()))
}
