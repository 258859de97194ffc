package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/cart-sync/internal/core/domain"
)

const mysqlDuplicateEntry = 1062

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS inventory (
		id INT PRIMARY KEY,
		content VARCHAR(255) NOT NULL,
		amount INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS cart (
		id INT PRIMARY KEY,
		content VARCHAR(255) NOT NULL,
		amount INT NOT NULL
	)`,
}

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range mysqlSchema {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, content, amount FROM inventory ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	items := []domain.InventoryItem{}
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.Content, &item.Amount); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) SaveInventory(ctx context.Context, items []domain.InventoryItem) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventory (id, content, amount) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE content = VALUES(content), amount = VALUES(amount)`,
			item.ID, item.Content, item.Amount,
		)
		if err != nil {
			return fmt.Errorf("upsert inventory %d: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) ListCart(ctx context.Context) ([]domain.CartItem, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, content, amount FROM cart ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.Content, &item.Amount); err != nil {
			return nil, fmt.Errorf("scan cart: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (m *MySQLAdapter) GetCartItem(ctx context.Context, id int) (*domain.CartItem, error) {
	var item domain.CartItem
	err := m.db.QueryRowContext(ctx, `
		SELECT id, content, amount FROM cart WHERE id = ?`, id,
	).Scan(&item.ID, &item.Content, &item.Amount)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart item: %w", err)
	}
	return &item, nil
}

func (m *MySQLAdapter) CreateCartItem(ctx context.Context, item domain.CartItem) (bool, error) {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO cart (id, content, amount) VALUES (?, ?, ?)`,
		item.ID, item.Content, item.Amount,
	)

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert cart item: %w", err)
	}
	return true, nil
}

func (m *MySQLAdapter) UpdateCartAmount(ctx context.Context, id int, amount int) (bool, error) {
	result, err := m.db.ExecContext(ctx, `UPDATE cart SET amount = ? WHERE id = ?`, amount, id)
	if err != nil {
		return false, fmt.Errorf("update cart item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		return true, nil
	}

	// MySQL reports zero affected rows when the amount is unchanged.
	item, err := m.GetCartItem(ctx, id)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

func (m *MySQLAdapter) DeleteCartItem(ctx context.Context, id int) (bool, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM cart WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
