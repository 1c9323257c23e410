package service

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/rl1809/techstore/internal/core/domain"
	"github.com/rl1809/techstore/internal/port"
)

type CatalogService struct {
	products port.ProductRepository
	factory  *ProductFactory
}

func NewCatalogService(products port.ProductRepository, factory *ProductFactory) *CatalogService {
	if factory == nil {
		factory = NewProductFactory()
	}
	return &CatalogService{products: products, factory: factory}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get returns domain.ErrNotFound for an unknown id.
func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// Add creates a product through the factory and stores it.
func (s *CatalogService) Add(ctx context.Context, category, name string, price decimal.Decimal, attrs map[string]any) (*domain.Product, error) {
	p, err := s.factory.Create(category, name, price, attrs)
	if err != nil {
		return nil, err
	}
	if err := s.products.CreateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

// Seed fills an empty catalog with the demo products. It reports how many
// were inserted.
func (s *CatalogService) Seed(ctx context.Context) (int, error) {
	n, err := s.products.CountProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	seeds := []struct {
		category string
		name     string
		price    int64
		attrs    map[string]any
	}{
		{string(domain.CategoryPhone), "iPhone 15", 35000, map[string]any{AttrSimCount: 2}},
		{string(domain.CategoryComputer), "MacBook Air", 50000, map[string]any{AttrCPU: "M2"}},
	}
	for _, sd := range seeds {
		if _, err := s.Add(ctx, sd.category, sd.name, decimal.NewFromInt(sd.price), sd.attrs); err != nil {
			return 0, fmt.Errorf("seed %s: %w", sd.name, err)
		}
	}
	log.Printf("seeded %d products", len(seeds))
	return len(seeds), nil
}
