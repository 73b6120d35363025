// Package user holds customer records and the addresses orders ship to.
package user

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrAddressNotFound is returned when a requested address does not exist.
	ErrAddressNotFound = errors.New("address not found")
)

// User is a customer record. WalkIn marks the shared sentinel user that
// anonymous in-store sales attach to.
type User struct {
	ID     string
	Name   string
	Phone  string
	WalkIn bool
}

// Address is a delivery destination owned by a user.
type Address struct {
	ID         string
	UserID     string
	Line1      string
	City       string
	Province   string
	PostalCode string
}

// Repository provides user lookup and the mutations the POS customer
// resolution flow needs.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	// FindByPhones returns the first user whose stored phone matches any of
	// the given phone-format variations, or ErrNotFound.
	FindByPhones(ctx context.Context, phones []string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdatePhone(ctx context.Context, id, phone string) error
	// WalkIn returns the shared walk-in sentinel user, or ErrNotFound.
	WalkIn(ctx context.Context) (*User, error)
	CreateWalkIn(ctx context.Context, u *User) error
}

// AddressRepository provides address lookup for delivery orders.
type AddressRepository interface {
	GetByID(ctx context.Context, id string) (*Address, error)
}
