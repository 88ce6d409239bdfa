package leads

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of pgxpool.Pool the repository uses; satisfied by
// pgxmock in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithPool accepts any PgxPool, for tests.
func NewPostgresRepositoryWithPool(pool PgxPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts the lead and bumps the owning spa's lead counter in one
// transaction, so the dashboard counter never drifts from the lead table.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("leads: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	copied := *lead

	query := `
		INSERT INTO leads (id, spa_id, name, phone, services, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err := tx.QueryRow(ctx, query,
		copied.ID,
		copied.SpaID,
		copied.Name,
		copied.Phone,
		copied.Services,
		copied.Message,
	).Scan(&copied.CreatedAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE spas SET total_leads = total_leads + 1 WHERE spa_id = $1`, copied.SpaID); err != nil {
		return nil, fmt.Errorf("leads: increment counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("leads: commit tx: %w", err)
	}

	return &copied, nil
}

// ListBySpa returns a spa's leads, newest first.
func (r *PostgresRepository) ListBySpa(ctx context.Context, spaID string) ([]*Lead, error) {
	query := `
		SELECT id, spa_id, name, phone, services, message, created_at
		FROM leads
		WHERE spa_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, spaID)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID,
			&lead.SpaID,
			&lead.Name,
			&lead.Phone,
			&lead.Services,
			&lead.Message,
			&lead.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, &lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list rows: %w", err)
	}
	return out, nil
}
