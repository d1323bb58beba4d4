package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/port"
)

func sampleBeer(name string) domain.Beer {
	return domain.Beer{
		Name:     name,
		Brand:    "brand",
		Max:      10,
		Quantity: 2,
		Type:     domain.BeerTypeAle,
	}
}

// testBeerRepository runs the behaviour every port.BeerRepository must share.
// reset must leave the store empty.
func testBeerRepository(t *testing.T, repo port.BeerRepository, reset func()) {
	t.Run("InsertAndFind", func(t *testing.T) {
		reset()
		ctx := context.Background()

		saved, err := repo.Save(ctx, sampleBeer("ipa"))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if saved.ID == "" {
			t.Fatal("expected id to be assigned")
		}

		byID, err := repo.FindByID(ctx, saved.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if byID == nil || *byID != saved {
			t.Errorf("expected %+v, got %+v", saved, byID)
		}

		byName, err := repo.FindByName(ctx, "ipa")
		if err != nil {
			t.Fatalf("FindByName failed: %v", err)
		}
		if byName == nil || byName.ID != saved.ID {
			t.Errorf("expected beer %s by name, got %+v", saved.ID, byName)
		}
	})

	t.Run("FindMissing", func(t *testing.T) {
		reset()
		ctx := context.Background()

		beer, err := repo.FindByID(ctx, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if beer != nil {
			t.Errorf("expected nil, got %+v", beer)
		}

		beer, err = repo.FindByName(ctx, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if beer != nil {
			t.Errorf("expected nil, got %+v", beer)
		}
	})

	t.Run("IDShapedLikeNameKey", func(t *testing.T) {
		reset()
		ctx := context.Background()

		if _, err := repo.Save(ctx, sampleBeer("ipa")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		for _, id := range []string{"name:ipa", "beer:name:ipa", "ipa"} {
			beer, err := repo.FindByID(ctx, id)
			if err != nil {
				t.Errorf("FindByID(%q): unexpected error: %v", id, err)
			}
			if beer != nil {
				t.Errorf("FindByID(%q): expected nil, got %+v", id, beer)
			}
			if err := repo.DeleteByID(ctx, id); !errors.Is(err, port.ErrNotFound) {
				t.Errorf("DeleteByID(%q): expected ErrNotFound, got: %v", id, err)
			}
		}

		if beer, _ := repo.FindByName(ctx, "ipa"); beer == nil {
			t.Error("expected beer to survive")
		}
	})

	t.Run("DuplicateName", func(t *testing.T) {
		reset()
		ctx := context.Background()

		if _, err := repo.Save(ctx, sampleBeer("ipa")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		_, err := repo.Save(ctx, sampleBeer("ipa"))
		if !errors.Is(err, port.ErrDuplicateName) {
			t.Errorf("expected ErrDuplicateName, got: %v", err)
		}

		// exact match only
		if _, err := repo.Save(ctx, sampleBeer("IPA")); err != nil {
			t.Errorf("expected differently cased name to be accepted, got: %v", err)
		}
	})

	t.Run("DuplicateNameConcurrent", func(t *testing.T) {
		reset()
		ctx := context.Background()

		var successCount atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := repo.Save(ctx, sampleBeer("race")); err == nil {
					successCount.Add(1)
				}
			}()
		}
		wg.Wait()

		if successCount.Load() != 1 {
			t.Errorf("expected exactly 1 insert, got %d", successCount.Load())
		}
	})

	t.Run("UpdateWithVersion", func(t *testing.T) {
		reset()
		ctx := context.Background()

		saved, err := repo.Save(ctx, sampleBeer("ipa"))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		saved.Quantity = 7
		updated, err := repo.Save(ctx, saved)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Version != saved.Version+1 {
			t.Errorf("expected version %d, got %d", saved.Version+1, updated.Version)
		}

		stored, _ := repo.FindByID(ctx, saved.ID)
		if stored.Quantity != 7 {
			t.Errorf("expected quantity 7, got %d", stored.Quantity)
		}

		// stale version
		saved.Quantity = 1
		_, err = repo.Save(ctx, saved)
		if !errors.Is(err, port.ErrOptimisticLock) {
			t.Errorf("expected ErrOptimisticLock, got: %v", err)
		}
		stored, _ = repo.FindByID(ctx, saved.ID)
		if stored.Quantity != 7 {
			t.Errorf("expected quantity to stay 7, got %d", stored.Quantity)
		}
	})

	t.Run("UpdateRejectsOutOfRange", func(t *testing.T) {
		reset()
		ctx := context.Background()

		saved, err := repo.Save(ctx, sampleBeer("ipa"))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		for _, quantity := range []int{-1, 11} {
			candidate := saved
			candidate.Quantity = quantity
			if _, err := repo.Save(ctx, candidate); err == nil {
				t.Errorf("expected quantity %d to be rejected", quantity)
			}
		}

		stored, _ := repo.FindByID(ctx, saved.ID)
		if stored.Quantity != 2 {
			t.Errorf("expected quantity to stay 2, got %d", stored.Quantity)
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		reset()

		beer := sampleBeer("ghost")
		beer.ID = "00000000-0000-0000-0000-000000000000"
		beer.Version = 1
		_, err := repo.Save(context.Background(), beer)
		if !errors.Is(err, port.ErrOptimisticLock) {
			t.Errorf("expected ErrOptimisticLock, got: %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		reset()
		ctx := context.Background()

		saved, err := repo.Save(ctx, sampleBeer("ipa"))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		if err := repo.DeleteByID(ctx, saved.ID); err != nil {
			t.Fatalf("DeleteByID failed: %v", err)
		}
		if beer, _ := repo.FindByID(ctx, saved.ID); beer != nil {
			t.Error("expected beer to be gone")
		}
		if beer, _ := repo.FindByName(ctx, "ipa"); beer != nil {
			t.Error("expected name to be freed")
		}

		if err := repo.DeleteByID(ctx, saved.ID); !errors.Is(err, port.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got: %v", err)
		}

		if _, err := repo.Save(ctx, sampleBeer("ipa")); err != nil {
			t.Errorf("expected name to be reusable, got: %v", err)
		}
	})

	t.Run("FindAll", func(t *testing.T) {
		reset()
		ctx := context.Background()

		names := []string{"ipa", "stout", "lager"}
		for _, name := range names {
			if _, err := repo.Save(ctx, sampleBeer(name)); err != nil {
				t.Fatalf("Save %s failed: %v", name, err)
			}
		}

		beers, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll failed: %v", err)
		}
		if len(beers) != len(names) {
			t.Fatalf("expected %d beers, got %d", len(names), len(beers))
		}

		seen := make(map[string]int)
		for _, b := range beers {
			seen[b.Name]++
		}
		for _, name := range names {
			if seen[name] != 1 {
				t.Errorf("expected %s exactly once, got %d", name, seen[name])
			}
		}
	})
}
