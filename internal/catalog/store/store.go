package store

import (
	"context"
	"errors"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose sub-repositories to keep concerns separated and testable.
type Store interface {
	Users() Users
	Roles() Roles
	Categories() Categories
	Products() Products
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store. The
	// caller MUST Commit or Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and rolling
	// back on error. Prefer this over Tx for multi-step operations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Ping verifies the backing connection is alive.
	Ping(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}

// Tx is a transactional store: the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetByID(ctx context.Context, id string) (domain.User, error)

	// GetByEmail resolves login identity; roles are loaded eagerly.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// Create inserts the user and its role assignments. ErrAlreadyExists when
	// the email is taken.
	Create(ctx context.Context, u domain.User) error

	List(ctx context.Context) ([]domain.User, error)

	// IsEmpty reports whether any user exists; used by the startup seed.
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	GetByID(ctx context.Context, id string) (domain.Role, error)
	GetByName(ctx context.Context, name string) (domain.Role, error)
	Create(ctx context.Context, r domain.Role) error
	List(ctx context.Context) ([]domain.Role, error)

	// Update renames the role. Fails with ErrNotFound when the role does not
	// exist and ErrAlreadyExists when the new name is taken.
	Update(ctx context.Context, r domain.Role) error

	// Delete fails with ErrNotFound when the role does not exist.
	Delete(ctx context.Context, id string) error
}

type Categories interface {
	GetByID(ctx context.Context, id string) (domain.Category, error)
	Create(ctx context.Context, c domain.Category) error
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, c domain.Category) error
	Delete(ctx context.Context, id string) error
}

type Products interface {
	GetByID(ctx context.Context, id string) (domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (domain.Product, error)
	Create(ctx context.Context, p domain.Product) error
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id string) error
}

// Tokens is the revocation registry. Records are keyed one-per-subject and
// looked up by access token fingerprint. Implementations must make Upsert and
// Delete atomic: no read-then-write races under concurrent logins/logouts for
// the same subject.
type Tokens interface {
	// Upsert replaces the subject's record. A prior access token for the same
	// subject becomes unresolvable via GetByAccessHash.
	Upsert(ctx context.Context, rec domain.TokenRecord) error

	// GetByAccessHash returns the record holding the fingerprint, or
	// ErrNotFound. This is the gate's revocation check.
	GetByAccessHash(ctx context.Context, accessHash string) (domain.TokenRecord, error)

	// DeleteByAccessHash removes the record. ErrNotFound when no record
	// matches: revoking an unknown or already-revoked token is an error, not
	// a no-op.
	DeleteByAccessHash(ctx context.Context, accessHash string) error

	// DeleteBefore removes records last updated before cutoff, returning the
	// number removed. Housekeeping only; backends with native expiry may
	// implement it as a no-op.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
