package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SubmissionRepository keeps duplicate-check keys in Postgres so they survive
// restarts and are shared between instances.
type SubmissionRepository struct {
	DB *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Swap records at for key and returns the previous timestamp. Exactly one of
// several concurrent callers for a new key gets found=false: the insert
// waits on the other inserter's row, and an existing row is locked before
// its previous value is read.
func (r *SubmissionRepository) Swap(ctx context.Context, key string, at time.Time) (time.Time, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, false, err
	}
	defer tx.Rollback()

	at = at.UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO registration_submissions (submission_key, submitted_at)
		VALUES ($1, $2)
		ON CONFLICT (submission_key) DO NOTHING
	`, key, at)
	if err != nil {
		return time.Time{}, false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return time.Time{}, false, err
	} else if n == 1 {
		return time.Time{}, false, tx.Commit()
	}

	var prev time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT submitted_at FROM registration_submissions
		WHERE submission_key = $1
		FOR UPDATE
	`, key).Scan(&prev)
	if errors.Is(err, sql.ErrNoRows) {
		// Purgado entre o INSERT e o SELECT: conta como primeira submissão.
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO registration_submissions (submission_key, submitted_at)
			VALUES ($1, $2)
			ON CONFLICT (submission_key) DO UPDATE SET submitted_at = EXCLUDED.submitted_at
		`, key, at); err != nil {
			return time.Time{}, false, err
		}
		return time.Time{}, false, tx.Commit()
	}
	if err != nil {
		return time.Time{}, false, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE registration_submissions SET submitted_at = $2 WHERE submission_key = $1
	`, key, at); err != nil {
		return time.Time{}, false, err
	}

	return prev, true, tx.Commit()
}

func (r *SubmissionRepository) Len(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM registration_submissions`).Scan(&n)
	return n, err
}

func (r *SubmissionRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM registration_submissions WHERE submitted_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}
