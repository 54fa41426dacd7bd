package domain

import "context"

// Stores is the set of stores bound to one unit of work. Every read and write
// made through it commits or rolls back together.
type Stores interface {
	Events() EventStore
	Invitations() InvitationStore
	Registrants() RegistrantStore
	Companions() CompanionStore
}

// UnitOfWork runs fn inside a single atomic transaction. If fn returns an
// error (or panics) nothing it wrote is kept; otherwise all writes commit.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
