package port

import (
	"context"
	"errors"

	"github.com/rl1809/beer-stock/internal/core/domain"
)

var (
	// ErrDuplicateName is returned by Save when inserting a beer whose name is taken
	ErrDuplicateName = errors.New("duplicate beer name")

	// ErrOptimisticLock is returned by Save when the stored version no longer matches
	ErrOptimisticLock = errors.New("optimistic lock conflict")

	// ErrNotFound is returned by DeleteByID when nothing was deleted
	ErrNotFound = errors.New("beer not found")
)

type BeerRepository interface {
	// FindByID returns nil, nil when no beer has the id
	FindByID(ctx context.Context, id string) (*domain.Beer, error)

	// FindByName returns nil, nil when no beer has the name
	FindByName(ctx context.Context, name string) (*domain.Beer, error)

	// Save inserts when beer.ID is empty and assigns the id, otherwise updates
	// with a version check and returns the beer with its new version
	Save(ctx context.Context, beer domain.Beer) (domain.Beer, error)

	// DeleteByID removes the beer and frees its name
	DeleteByID(ctx context.Context, id string) error

	// FindAll returns every stored beer in store order
	FindAll(ctx context.Context) ([]domain.Beer, error)
}
