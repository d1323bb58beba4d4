package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid"
	"github.com/lib/pq"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/port"
)

const pgUniqueViolation = "23505"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS beers (
	beer_id      UUID         PRIMARY KEY,
	name         VARCHAR(100) NOT NULL,
	brand        VARCHAR(100) NOT NULL,
	max_capacity INTEGER      NOT NULL CHECK (max_capacity >= 0),
	quantity     INTEGER      NOT NULL,
	type         VARCHAR(16)  NOT NULL,
	version      INTEGER      NOT NULL DEFAULT 1,
	created_at   TIMESTAMPTZ  NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ  NOT NULL DEFAULT now(),
	CONSTRAINT uq_beers_name UNIQUE (name),
	CONSTRAINT chk_beers_quantity CHECK (quantity BETWEEN 0 AND max_capacity)
)`

var beerColumns = []string{"beer_id", "name", "brand", "max_capacity", "quantity", "type", "version"}

type PostgresAdapter struct {
	db  *sql.DB
	psq squirrel.StatementBuilderType
}

func NewPostgresAdapter(db *sql.DB) *PostgresAdapter {
	return &PostgresAdapter{
		db:  db,
		psq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(db),
	}
}

func (p *PostgresAdapter) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("creating beers table: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) FindByID(ctx context.Context, id string) (*domain.Beer, error) {
	beerID, err := uuid.FromString(id)
	if err != nil {
		// not an id this store could have assigned
		return nil, nil
	}
	return p.findOne(ctx, squirrel.Eq{"beer_id": beerID})
}

func (p *PostgresAdapter) FindByName(ctx context.Context, name string) (*domain.Beer, error) {
	return p.findOne(ctx, squirrel.Eq{"name": name})
}

func (p *PostgresAdapter) findOne(ctx context.Context, where squirrel.Eq) (*domain.Beer, error) {
	row := p.psq.Select(beerColumns...).
		From("beers").
		Where(where).
		QueryRowContext(ctx)

	beer, err := scanBeer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting beer: %w", err)
	}

	return &beer, nil
}

func (p *PostgresAdapter) Save(ctx context.Context, beer domain.Beer) (domain.Beer, error) {
	if beer.ID == "" {
		return p.insert(ctx, beer)
	}
	return p.update(ctx, beer)
}

func (p *PostgresAdapter) insert(ctx context.Context, beer domain.Beer) (domain.Beer, error) {
	beerID, err := uuid.NewV4()
	if err != nil {
		return domain.Beer{}, fmt.Errorf("generating id: %w", err)
	}

	_, err = p.psq.Insert("beers").
		SetMap(map[string]interface{}{
			"beer_id":      beerID,
			"name":         beer.Name,
			"brand":        beer.Brand,
			"max_capacity": beer.Max,
			"quantity":     beer.Quantity,
			"type":         string(beer.Type),
			"version":      1,
		}).
		ExecContext(ctx)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return domain.Beer{}, port.ErrDuplicateName
	}
	if err != nil {
		return domain.Beer{}, fmt.Errorf("executing insert: %w", err)
	}

	beer.ID = beerID.String()
	beer.Version = 1
	return beer, nil
}

func (p *PostgresAdapter) update(ctx context.Context, beer domain.Beer) (domain.Beer, error) {
	beerID, err := uuid.FromString(beer.ID)
	if err != nil {
		return domain.Beer{}, port.ErrOptimisticLock
	}

	res, err := p.psq.Update("beers").
		Set("quantity", beer.Quantity).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"beer_id": beerID, "version": beer.Version}).
		Where("? BETWEEN 0 AND max_capacity", beer.Quantity).
		ExecContext(ctx)
	if err != nil {
		return domain.Beer{}, fmt.Errorf("executing update: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return domain.Beer{}, fmt.Errorf("getting affected rows: %w", err)
	}
	if rowsAffected != 1 {
		return domain.Beer{}, port.ErrOptimisticLock
	}

	beer.Version++
	return beer, nil
}

func (p *PostgresAdapter) DeleteByID(ctx context.Context, id string) error {
	beerID, err := uuid.FromString(id)
	if err != nil {
		return port.ErrNotFound
	}

	res, err := p.psq.Delete("beers").
		Where(squirrel.Eq{"beer_id": beerID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("executing delete: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return port.ErrNotFound
	}

	return nil
}

func (p *PostgresAdapter) FindAll(ctx context.Context) ([]domain.Beer, error) {
	rows, err := p.psq.Select(beerColumns...).
		From("beers").
		OrderBy("created_at", "beer_id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("selecting beers: %w", err)
	}
	defer rows.Close()

	beers := []domain.Beer{}
	for rows.Next() {
		beer, err := scanBeer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning beer: %w", err)
		}
		beers = append(beers, beer)
	}

	return beers, rows.Err()
}

func scanBeer(row squirrel.RowScanner) (domain.Beer, error) {
	var beer domain.Beer
	err := row.Scan(&beer.ID, &beer.Name, &beer.Brand, &beer.Max, &beer.Quantity, &beer.Type, &beer.Version)
	return beer, err
}
