package entities

import (
	"sort"
	"strings"
	"time"

	"linkup-backend/domain/core/valueobjects"
	pkgerrors "linkup-backend/pkg/errors"
)

// Account is the directory record for one user. It owns the confirmed
// connection set; the set is symmetric across accounts (if A lists B, B must
// list A) and never contains the account's own id. Only the connection
// lifecycle engine mutates the set.
type Account struct {
	id          valueobjects.AccountID
	username    string
	email       string
	name        string
	connections map[valueobjects.AccountID]struct{}
	createdAt   time.Time
	updatedAt   time.Time
}

// NewAccount creates a new account with validated profile fields
func NewAccount(username, email, name string) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, pkgerrors.NewValidationError("username cannot be empty")
	}
	if strings.TrimSpace(email) == "" {
		return nil, pkgerrors.NewValidationError("email cannot be empty")
	}

	now := time.Now()
	return &Account{
		id:          valueobjects.NewAccountID(),
		username:    username,
		email:       email,
		name:        strings.TrimSpace(name),
		connections: make(map[valueobjects.AccountID]struct{}),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructAccount rebuilds an account from repository data with preserved
// timestamps. Self-references in the stored connection set are dropped rather
// than rejected, so one corrupt record cannot make its owner unreadable.
func ReconstructAccount(
	id valueobjects.AccountID,
	username, email, name string,
	connections []valueobjects.AccountID,
	createdAt, updatedAt time.Time,
) (*Account, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("account ID cannot be empty")
	}
	if username == "" {
		return nil, pkgerrors.NewValidationError("username cannot be empty")
	}

	set := make(map[valueobjects.AccountID]struct{}, len(connections))
	for _, c := range connections {
		if c.Equals(id) || c.IsZero() {
			continue
		}
		set[c] = struct{}{}
	}

	return &Account{
		id:          id,
		username:    username,
		email:       email,
		name:        name,
		connections: set,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the account's unique identifier
func (a *Account) ID() valueobjects.AccountID {
	return a.id
}

// Username returns the account's unique username
func (a *Account) Username() string {
	return a.username
}

// Email returns the account's email address
func (a *Account) Email() string {
	return a.email
}

// Name returns the account's display name
func (a *Account) Name() string {
	return a.name
}

// CreatedAt returns the account's creation time
func (a *Account) CreatedAt() time.Time {
	return a.createdAt
}

// UpdatedAt returns the account's last update time
func (a *Account) UpdatedAt() time.Time {
	return a.updatedAt
}

// IsConnectedTo reports whether other is in the confirmed connection set
func (a *Account) IsConnectedTo(other valueobjects.AccountID) bool {
	_, ok := a.connections[other]
	return ok
}

// AddConnection adds other to the connection set
func (a *Account) AddConnection(other valueobjects.AccountID) error {
	if other.Equals(a.id) {
		return pkgerrors.NewValidationError("account cannot connect to itself")
	}
	if a.IsConnectedTo(other) {
		return pkgerrors.NewConflictError("already connected")
	}

	a.connections[other] = struct{}{}
	a.updatedAt = time.Now()
	return nil
}

// RemoveConnection removes other from the connection set
func (a *Account) RemoveConnection(other valueobjects.AccountID) error {
	if !a.IsConnectedTo(other) {
		return pkgerrors.NewNotFoundError("connection")
	}

	delete(a.connections, other)
	a.updatedAt = time.Now()
	return nil
}

// Connections returns the connection set as a sorted slice
func (a *Account) Connections() []valueobjects.AccountID {
	out := make([]valueobjects.AccountID, 0, len(a.connections))
	for c := range a.connections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// ConnectionCount returns the number of confirmed connections
func (a *Account) ConnectionCount() int {
	return len(a.connections)
}
