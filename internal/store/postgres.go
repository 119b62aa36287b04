package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillproof/backend/internal/affiliations"
	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/organizations"
	"github.com/skillproof/backend/internal/pendingdomains"
	"github.com/skillproof/backend/internal/profiles"
	"github.com/skillproof/backend/internal/users"
	"github.com/skillproof/backend/pkg/database"
)

var _ Store = (*Postgres)(nil)

// Postgres runs the repositories against a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Stores returns repositories bound to the pool; each call autocommits.
func (p *Postgres) Stores() Stores {
	return bind(p.pool)
}

// RunInTx binds the repositories to one transaction.
func (p *Postgres) RunInTx(ctx context.Context, fn func(st Stores) error) error {
	return database.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		return fn(bind(tx))
	})
}

func bind(db database.DBTX) Stores {
	return Stores{
		Users:          users.NewRepository(db),
		Organizations:  organizations.NewRepository(db),
		PendingDomains: pendingdomains.NewRepository(db),
		Affiliations:   affiliations.NewRepository(db),
		Profiles:       profiles.NewRepository(db),
		Locks:          advisoryLocker{db: db},
	}
}

// advisoryLocker takes a transaction-scoped advisory lock per (kind, domain).
type advisoryLocker struct {
	db database.DBTX
}

func (l advisoryLocker) LockDomain(ctx context.Context, kind models.OrgKind, domain string) error {
	if _, err := l.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(kind)+":"+domain); err != nil {
		return fmt.Errorf("lock domain %s: %w", domain, err)
	}
	return nil
}
