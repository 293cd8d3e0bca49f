package identity

import (
	"context"
	"time"
)

// User is bastion's canonical account record.
//
// PasswordHash is nil for accounts created through an OAuth provider link;
// such accounts cannot authenticate with a password.
type User struct {
	ID           string
	Email        string
	PasswordHash *string

	FirstName *string
	LastName  *string

	EmailVerified bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the non-sensitive projection returned to authenticated
// callers. It must never carry the password hash or token collections.
type PublicUser struct {
	ID            string
	Email         string
	FirstName     *string
	LastName      *string
	EmailVerified bool
}

// Public returns the non-sensitive projection of u.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		EmailVerified: u.EmailVerified,
	}
}

// CreateUserInput describes a registration request.
// PasswordHash is the already-hashed credential (nil for OAuth-only accounts);
// hashing happens in the orchestrator, never in the store.
type CreateUserInput struct {
	Email        string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Now          time.Time
}

// Store is the credential persistence boundary.
//
// GetByEmail reports absence via its ok result rather than an error, because
// "not registered" is a valid business outcome checked by callers. GetByID
// and GetPublicByID fail with a NotFoundError.
type Store interface {
	Create(ctx context.Context, in CreateUserInput) (User, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetPublicByID(ctx context.Context, id string) (PublicUser, error)
	MarkEmailVerified(ctx context.Context, userID string, now time.Time) error
	UpdatePassword(ctx context.Context, userID, newHash string, now time.Time) error
}
