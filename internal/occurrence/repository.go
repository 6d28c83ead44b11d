// Package occurrence stores observed species occurrences in Postgres and
// serves them to the presence index.
package occurrence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lakerisk/lakerisk/pkg/presence"
)

// Repository provides occurrence records backed by Postgres.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// All returns every occurrence, ordered for stable output.
func (r *Repository) All(ctx context.Context) ([]presence.Record, error) {
	const query = `
		SELECT species, locality
		FROM occurrences
		ORDER BY species, locality`

	var recs []presence.Record
	if err := r.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	return recs, nil
}

// ForSpecies returns the occurrences of one species.
func (r *Repository) ForSpecies(ctx context.Context, species string) ([]presence.Record, error) {
	const query = `
		SELECT species, locality
		FROM occurrences
		WHERE species = $1
		ORDER BY locality`

	var recs []presence.Record
	if err := r.db.SelectContext(ctx, &recs, query, species); err != nil {
		return nil, fmt.Errorf("list occurrences for %q: %w", species, err)
	}
	return recs, nil
}

// Count returns the number of stored occurrences.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM occurrences`); err != nil {
		return 0, fmt.Errorf("count occurrences: %w", err)
	}
	return n, nil
}

// Import inserts records in one transaction, skipping ones already stored.
// It returns the number of new rows.
func (r *Repository) Import(ctx context.Context, source string, recs []presence.Record) (int, error) {
	const query = `
		INSERT INTO occurrences (species, locality, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (species, locality) DO NOTHING`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range recs {
		if rec.Species == "" || rec.Locality == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, rec.Species, rec.Locality, source)
		if err != nil {
			return 0, fmt.Errorf("import %s at %s: %w", rec.Species, rec.Locality, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return inserted, nil
}

// LoadIndex builds a presence index from every stored occurrence.
func (r *Repository) LoadIndex(ctx context.Context) (*presence.Index, error) {
	recs, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return presence.NewIndex(recs), nil
}
