package sqlite

import (
	"context"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"
)

type tokensRepo struct {
	q dbtx
}

// Upsert replaces the subject's registry record in a single statement, so
// concurrent logins for the same subject serialize inside sqlite rather than
// racing a read-then-write in Go.
func (r *tokensRepo) Upsert(ctx context.Context, rec domain.TokenRecord) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO auth_tokens (subject, access_hash, refresh_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (subject) DO UPDATE SET
			access_hash  = excluded.access_hash,
			refresh_hash = excluded.refresh_hash,
			updated_at   = excluded.updated_at`,
		rec.Subject, rec.AccessHash, rec.RefreshHash, now, now,
	)
	return err
}

func (r *tokensRepo) GetByAccessHash(ctx context.Context, accessHash string) (domain.TokenRecord, error) {
	var rec domain.TokenRecord
	err := r.q.QueryRowContext(ctx, `
		SELECT subject, access_hash, refresh_hash, created_at, updated_at
		FROM auth_tokens
		WHERE access_hash = ?`,
		accessHash,
	).Scan(&rec.Subject, &rec.AccessHash, &rec.RefreshHash, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return domain.TokenRecord{}, mapNotFound(err)
	}
	return rec, nil
}

func (r *tokensRepo) DeleteByAccessHash(ctx context.Context, accessHash string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM auth_tokens WHERE access_hash = ?`, accessHash)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tokensRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM auth_tokens WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
