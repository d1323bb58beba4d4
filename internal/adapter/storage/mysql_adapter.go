package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/port"
)

const mysqlDuplicateEntry = 1062

// name uses a binary collation so uniqueness is case-sensitive
const mysqlSchema = `
CREATE TABLE IF NOT EXISTS beers (
	id           CHAR(36)     NOT NULL PRIMARY KEY,
	name         VARCHAR(100) COLLATE utf8mb4_bin NOT NULL,
	brand        VARCHAR(100) NOT NULL,
	max_capacity INT          NOT NULL,
	quantity     INT          NOT NULL,
	type         VARCHAR(16)  NOT NULL,
	version      INT          NOT NULL DEFAULT 1,
	created_at   TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uq_beers_name (name),
	CONSTRAINT chk_beers_quantity CHECK (quantity >= 0 AND quantity <= max_capacity)
)`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("create beers table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) FindByID(ctx context.Context, id string) (*domain.Beer, error) {
	return m.findOne(ctx, `
		SELECT id, name, brand, max_capacity, quantity, type, version
		FROM beers WHERE id = ?`, id)
}

func (m *MySQLAdapter) FindByName(ctx context.Context, name string) (*domain.Beer, error) {
	return m.findOne(ctx, `
		SELECT id, name, brand, max_capacity, quantity, type, version
		FROM beers WHERE name = ?`, name)
}

func (m *MySQLAdapter) findOne(ctx context.Context, query string, arg string) (*domain.Beer, error) {
	var beer domain.Beer
	err := m.db.QueryRowContext(ctx, query, arg).Scan(
		&beer.ID, &beer.Name, &beer.Brand, &beer.Max, &beer.Quantity, &beer.Type, &beer.Version,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query beer: %w", err)
	}

	return &beer, nil
}

func (m *MySQLAdapter) Save(ctx context.Context, beer domain.Beer) (domain.Beer, error) {
	if beer.ID == "" {
		return m.insert(ctx, beer)
	}
	return m.update(ctx, beer)
}

func (m *MySQLAdapter) insert(ctx context.Context, beer domain.Beer) (domain.Beer, error) {
	beer.ID = uuid.New().String()
	beer.Version = 1

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO beers (id, name, brand, max_capacity, quantity, type, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		beer.ID, beer.Name, beer.Brand, beer.Max, beer.Quantity, beer.Type, beer.Version,
	)

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return domain.Beer{}, port.ErrDuplicateName
	}
	if err != nil {
		return domain.Beer{}, fmt.Errorf("insert beer: %w", err)
	}

	return beer, nil
}

func (m *MySQLAdapter) update(ctx context.Context, beer domain.Beer) (domain.Beer, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE beers
		SET quantity = ?, version = version + 1, updated_at = NOW()
		WHERE id = ? AND version = ? AND ? BETWEEN 0 AND max_capacity`,
		beer.Quantity, beer.ID, beer.Version, beer.Quantity,
	)
	if err != nil {
		return domain.Beer{}, fmt.Errorf("update beer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Beer{}, fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.Beer{}, port.ErrOptimisticLock
	}

	beer.Version++
	return beer, nil
}

func (m *MySQLAdapter) DeleteByID(ctx context.Context, id string) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM beers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete beer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return port.ErrNotFound
	}

	return nil
}

func (m *MySQLAdapter) FindAll(ctx context.Context) ([]domain.Beer, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, brand, max_capacity, quantity, type, version
		FROM beers ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query beers: %w", err)
	}
	defer rows.Close()

	beers := []domain.Beer{}
	for rows.Next() {
		var beer domain.Beer
		if err := rows.Scan(&beer.ID, &beer.Name, &beer.Brand, &beer.Max, &beer.Quantity, &beer.Type, &beer.Version); err != nil {
			return nil, fmt.Errorf("scan beer: %w", err)
		}
		beers = append(beers, beer)
	}

	return beers, rows.Err()
}
