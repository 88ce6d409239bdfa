package spas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of pgxpool.Pool the repository uses; satisfied by
// pgxmock in tests.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores spa configs in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("spas: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithPool accepts any PgxPool, for tests.
func NewPostgresRepositoryWithPool(pool PgxPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, spa *Spa) (*Spa, error) {
	copied := *spa
	copied.Normalize()

	colorsJSON, servicesJSON, err := marshalConfig(&copied)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO spas (spa_id, spa_name, bot_name, bot_image, is_active, offer, colors, services)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING total_leads, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		copied.SpaID,
		copied.SpaName,
		copied.BotName,
		copied.BotImage,
		copied.IsActive,
		copied.Offer,
		colorsJSON,
		servicesJSON,
	).Scan(&copied.TotalLeads, &copied.CreatedAt, &copied.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSpaID
		}
		return nil, fmt.Errorf("spas: insert failed: %w", err)
	}

	return &copied, nil
}

const selectColumns = `
	SELECT spa_id, spa_name, bot_name, bot_image, is_active, offer, colors, services, total_leads, created_at, updated_at
	FROM spas
`

// GetBySpaID fetches a spa by tenant id.
func (r *PostgresRepository) GetBySpaID(ctx context.Context, spaID string) (*Spa, error) {
	row := r.pool.QueryRow(ctx, selectColumns+` WHERE spa_id = $1`, spaID)
	spa, err := scanSpa(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSpaNotFound
		}
		return nil, fmt.Errorf("spas: select failed: %w", err)
	}
	return spa, nil
}

// List returns all spas, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*Spa, error) {
	rows, err := r.pool.Query(ctx, selectColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("spas: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Spa
	for rows.Next() {
		spa, err := scanSpa(rows)
		if err != nil {
			return nil, fmt.Errorf("spas: scan failed: %w", err)
		}
		out = append(out, spa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("spas: list rows: %w", err)
	}
	return out, nil
}

// Update replaces the config columns for an existing spa. The lead counter
// is owned by the leads pipeline and is not touched here.
func (r *PostgresRepository) Update(ctx context.Context, spa *Spa) (*Spa, error) {
	copied := *spa
	copied.Normalize()

	colorsJSON, servicesJSON, err := marshalConfig(&copied)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE spas
		SET spa_name = $2, bot_name = $3, bot_image = $4, is_active = $5, offer = $6, colors = $7, services = $8, updated_at = now()
		WHERE spa_id = $1
		RETURNING total_leads, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		copied.SpaID,
		copied.SpaName,
		copied.BotName,
		copied.BotImage,
		copied.IsActive,
		copied.Offer,
		colorsJSON,
		servicesJSON,
	).Scan(&copied.TotalLeads, &copied.CreatedAt, &copied.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSpaNotFound
		}
		return nil, fmt.Errorf("spas: update failed: %w", err)
	}

	return &copied, nil
}

// Delete removes a spa row.
func (r *PostgresRepository) Delete(ctx context.Context, spaID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM spas WHERE spa_id = $1`, spaID)
	if err != nil {
		return fmt.Errorf("spas: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSpaNotFound
	}
	return nil
}

// IncrementLeads bumps the informational total_leads counter.
func (r *PostgresRepository) IncrementLeads(ctx context.Context, spaID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE spas SET total_leads = total_leads + 1 WHERE spa_id = $1`, spaID)
	if err != nil {
		return fmt.Errorf("spas: increment leads failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSpaNotFound
	}
	return nil
}

func marshalConfig(spa *Spa) ([]byte, []byte, error) {
	colorsJSON, err := json.Marshal(spa.Colors)
	if err != nil {
		return nil, nil, fmt.Errorf("spas: marshal colors: %w", err)
	}
	servicesJSON, err := json.Marshal(spa.Services)
	if err != nil {
		return nil, nil, fmt.Errorf("spas: marshal services: %w", err)
	}
	return colorsJSON, servicesJSON, nil
}

func scanSpa(row pgx.Row) (*Spa, error) {
	var (
		spa          Spa
		colorsJSON   []byte
		servicesJSON []byte
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(
		&spa.SpaID,
		&spa.SpaName,
		&spa.BotName,
		&spa.BotImage,
		&spa.IsActive,
		&spa.Offer,
		&colorsJSON,
		&servicesJSON,
		&spa.TotalLeads,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if len(colorsJSON) > 0 {
		if err := json.Unmarshal(colorsJSON, &spa.Colors); err != nil {
			return nil, fmt.Errorf("unmarshal colors: %w", err)
		}
	}
	if len(servicesJSON) > 0 {
		if err := json.Unmarshal(servicesJSON, &spa.Services); err != nil {
			return nil, fmt.Errorf("unmarshal services: %w", err)
		}
	}
	spa.CreatedAt = createdAt
	spa.UpdatedAt = updatedAt
	spa.Normalize()
	return &spa, nil
}
