package sqlite

import (
	"context"
	"database/sql"

	"github.com/flowency/kavostack/internal/backend/domain"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `id, name, slug, description, created_at, updated_at`

func scanClient(row *sql.Row) (domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

func (r *clientsRepo) GetClientBySlug(ctx context.Context, slug string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE slug = ?`, slug)
	return scanClient(row)
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, slug, description) VALUES (?, ?, ?, ?)`,
		c.ID,
		c.Name,
		c.Slug,
		c.Description,
	)
	return mapUnique(err)
}
