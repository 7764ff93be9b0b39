package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Lixing-Zhang/dilution-calc/internal/models"
)

func sampleProduct(name string) models.Product {
	return models.Product{
		Name: name,
		RatioRecord: models.RatioRecord{
			QuantityToAdd:      10,
			QuantityToAddUnit:  models.UnitGram,
			ReferenceWater:     1,
			ReferenceWaterUnit: models.UnitLiter,
			Notes:              "shake well",
		},
	}
}

func TestInMemoryProductRepository_Seed(t *testing.T) {
	repo := NewInMemoryProductRepository(sampleProduct("Neem Oil"), sampleProduct("Bleach"))

	products, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Name != "Bleach" || products[1].Name != "Neem Oil" {
		t.Errorf("products not sorted by name: %s, %s", products[0].Name, products[1].Name)
	}
	for _, p := range products {
		if p.ID == "" {
			t.Errorf("product %s has no ID", p.Name)
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			t.Errorf("product %s has no timestamps", p.Name)
		}
	}
}

func TestInMemoryProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryProductRepository()

	p := sampleProduct("Potassium Soap")
	if err := repo.Create(ctx, &p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID == "" {
		t.Fatal("Create() did not assign an ID")
	}

	dup := sampleProduct("Potassium Soap")
	if err := repo.Create(ctx, &dup); !errors.Is(err, ErrProductExists) {
		t.Errorf("Create() duplicate error = %v, want ErrProductExists", err)
	}

	got, err := repo.GetByName(ctx, "Potassium Soap")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.ID != p.ID || got.QuantityToAdd != 10 {
		t.Errorf("GetByName() = %+v, want %+v", got, p)
	}

	// mutating the returned copy must not touch the store
	got.QuantityToAdd = 99
	again, _ := repo.GetByName(ctx, "Potassium Soap")
	if again.QuantityToAdd != 10 {
		t.Errorf("stored product changed through returned pointer: %v", again.QuantityToAdd)
	}

	upd := sampleProduct("Potassium Soap")
	upd.QuantityToAdd = 25
	upd.Notes = "dilute in warm water"
	if err := repo.Update(ctx, &upd); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if upd.ID != p.ID {
		t.Errorf("Update() changed ID: %s -> %s", p.ID, upd.ID)
	}
	if !upd.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("Update() changed created_at")
	}

	got, _ = repo.GetByName(ctx, "Potassium Soap")
	if got.QuantityToAdd != 25 || got.Notes != "dilute in warm water" {
		t.Errorf("Update() not persisted: %+v", got)
	}

	missing := sampleProduct("Unknown")
	if err := repo.Update(ctx, &missing); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Update() missing error = %v, want ErrProductNotFound", err)
	}

	if err := repo.Delete(ctx, "Potassium Soap"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByName(ctx, "Potassium Soap"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("GetByName() after delete error = %v, want ErrProductNotFound", err)
	}
	if err := repo.Delete(ctx, "Potassium Soap"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrProductNotFound", err)
	}
}

func TestInMemoryProductRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryProductRepository()

	p := sampleProduct("Copper Sulfate")
	if err := repo.Upsert(ctx, &p); err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	firstID := p.ID

	p2 := sampleProduct("Copper Sulfate")
	p2.QuantityToAdd = 3
	if err := repo.Upsert(ctx, &p2); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	if p2.ID != firstID {
		t.Errorf("Upsert() replaced ID: %s -> %s", firstID, p2.ID)
	}

	products, _ := repo.GetAll(ctx)
	if len(products) != 1 || products[0].QuantityToAdd != 3 {
		t.Errorf("unexpected catalog after upsert: %+v", products)
	}
}

func TestInMemoryProductRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryProductRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p := sampleProduct(fmt.Sprintf("product-%d", n%10))
			_ = repo.Upsert(ctx, &p)
			_, _ = repo.GetAll(ctx)
			_, _ = repo.GetByName(ctx, p.Name)
		}(i)
	}
	wg.Wait()

	products, _ := repo.GetAll(ctx)
	if len(products) != 10 {
		t.Errorf("expected 10 products, got %d", len(products))
	}
}
