package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/port"
)

type BeerService struct {
	repo        port.BeerRepository
	maxAttempts int
}

// NewBeerService builds the service. maxAttempts bounds how many times
// AdjustQuantity re-reads and retries after an optimistic lock conflict.
func NewBeerService(repo port.BeerRepository, maxAttempts int) *BeerService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &BeerService{
		repo:        repo,
		maxAttempts: maxAttempts,
	}
}

// Create stores a new beer and returns its id. The initial quantity is
// applied through domain.Adjust from an empty stock, so a candidate outside
// [0, Max] is rejected with the same errors as an adjustment.
func (s *BeerService) Create(ctx context.Context, candidate domain.Beer) (string, error) {
	existing, err := s.repo.FindByName(ctx, candidate.Name)
	if err != nil {
		return "", fmt.Errorf("find beer by name: %w", err)
	}
	if existing != nil {
		return "", domain.AlreadyExists(candidate.Name)
	}

	beer := domain.Beer{
		Name:  candidate.Name,
		Brand: candidate.Brand,
		Max:   candidate.Max,
		Type:  candidate.Type,
	}
	beer, err = domain.Adjust(beer, candidate.Quantity)
	if err != nil {
		return "", err
	}

	saved, err := s.repo.Save(ctx, beer)
	if errors.Is(err, port.ErrDuplicateName) {
		return "", domain.AlreadyExists(candidate.Name)
	}
	if err != nil {
		return "", fmt.Errorf("insert beer: %w", err)
	}

	return saved.ID, nil
}

func (s *BeerService) ReadByName(ctx context.Context, name string) (domain.Beer, error) {
	beer, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return domain.Beer{}, fmt.Errorf("find beer by name: %w", err)
	}
	if beer == nil {
		return domain.Beer{}, domain.NotFoundName(name)
	}

	return *beer, nil
}

func (s *BeerService) List(ctx context.Context) ([]domain.Beer, error) {
	beers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list beers: %w", err)
	}

	return beers, nil
}

func (s *BeerService) Delete(ctx context.Context, id string) error {
	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}

	err := s.repo.DeleteByID(ctx, id)
	if errors.Is(err, port.ErrNotFound) {
		return domain.NotFoundID(id)
	}
	if err != nil {
		return fmt.Errorf("delete beer: %w", err)
	}

	return nil
}

// AdjustQuantity applies delta to the stock of the beer with the given id.
// Adjustment errors are returned untouched and nothing is persisted.
func (s *BeerService) AdjustQuantity(ctx context.Context, id string, delta int) (domain.Beer, error) {
	for attempt := 1; ; attempt++ {
		beer, err := s.findByID(ctx, id)
		if err != nil {
			return domain.Beer{}, err
		}

		adjusted, err := domain.Adjust(beer, delta)
		if err != nil {
			return domain.Beer{}, err
		}
		if delta == 0 {
			return adjusted, nil
		}

		saved, err := s.repo.Save(ctx, adjusted)
		if errors.Is(err, port.ErrOptimisticLock) && attempt < s.maxAttempts {
			continue
		}
		if err != nil {
			return domain.Beer{}, fmt.Errorf("update beer %s: %w", id, err)
		}

		return saved, nil
	}
}

func (s *BeerService) findByID(ctx context.Context, id string) (domain.Beer, error) {
	beer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Beer{}, fmt.Errorf("find beer by id: %w", err)
	}
	if beer == nil {
		return domain.Beer{}, domain.NotFoundID(id)
	}

	return *beer, nil
}
