package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Lixing-Zhang/dilution-calc/internal/models"
	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product already exists")
)

// ProductRepository defines the interface for catalog data access.
// Products are keyed by name.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByName(ctx context.Context, name string) (*models.Product, error)
	// Create stores a new product and fills in its ID and timestamps
	Create(ctx context.Context, p *models.Product) error
	// Update replaces the ratio record of an existing product
	Update(ctx context.Context, p *models.Product) error
	// Upsert creates the product or replaces the record of an existing one
	Upsert(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, name string) error
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
	now      func() time.Time
}

// NewInMemoryProductRepository creates an in-memory repository holding the given products
func NewInMemoryProductRepository(seed ...models.Product) *InMemoryProductRepository {
	r := &InMemoryProductRepository{
		products: make(map[string]models.Product, len(seed)),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, p := range seed {
		p := p
		r.fill(&p)
		r.products[p.Name] = p
	}
	return r
}

// GetAll returns all products sorted by name
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

// GetByName returns a product by its name
func (r *InMemoryProductRepository) GetByName(ctx context.Context, name string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[name]
	if !exists {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Create stores a new product
func (r *InMemoryProductRepository) Create(ctx context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.Name]; exists {
		return ErrProductExists
	}
	p.ID = ""
	r.fill(p)
	r.products[p.Name] = *p
	return nil
}

// Update replaces the ratio record of an existing product
func (r *InMemoryProductRepository) Update(ctx context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.products[p.Name]
	if !exists {
		return ErrProductNotFound
	}
	r.replace(&current, p)
	return nil
}

// Upsert creates or updates a product
func (r *InMemoryProductRepository) Upsert(ctx context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, exists := r.products[p.Name]; exists {
		r.replace(&current, p)
		return nil
	}
	p.ID = ""
	r.fill(p)
	r.products[p.Name] = *p
	return nil
}

// Delete removes a product by name
func (r *InMemoryProductRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[name]; !exists {
		return ErrProductNotFound
	}
	delete(r.products, name)
	return nil
}

// replace copies p's record onto current and writes the stored state back into p. Caller holds the lock.
func (r *InMemoryProductRepository) replace(current, p *models.Product) {
	current.RatioRecord = p.RatioRecord
	current.UpdatedAt = r.now()
	r.products[current.Name] = *current
	*p = *current
}

// fill sets the ID and timestamps of a new product
func (r *InMemoryProductRepository) fill(p *models.Product) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := r.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
