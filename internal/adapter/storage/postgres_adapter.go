package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

// PostgresAdapter serves the inventory collection from PostgreSQL.
type PostgresAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresAdapter(pool *pgxpool.Pool) *PostgresAdapter {
	return &PostgresAdapter{pool: pool}
}

func (p *PostgresAdapter) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS inventory (
			id INTEGER PRIMARY KEY,
			content TEXT NOT NULL,
			amount INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, content, amount FROM inventory ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.InventoryItem, error) {
		var item domain.InventoryItem
		err := row.Scan(&item.ID, &item.Content, &item.Amount)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan inventory: %w", err)
	}
	return items, nil
}

func (p *PostgresAdapter) SaveInventory(ctx context.Context, items []domain.InventoryItem) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO inventory (id, content, amount) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, amount = EXCLUDED.amount`,
			item.ID, item.Content, item.Amount,
		)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert inventory: %w", err)
	}
	return tx.Commit(ctx)
}
