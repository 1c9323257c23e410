package service

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rl1809/techstore/internal/core/domain"
)

const (
	AttrSimCount = "sim_count"
	AttrCPU      = "cpu"

	defaultSimCount = 1
)

// ProductFactory turns a category tag plus loose attributes into a concrete
// product variant. It never persists anything.
type ProductFactory struct{}

func NewProductFactory() *ProductFactory {
	return &ProductFactory{}
}

// Create builds the variant selected by category. Attributes not used by
// that variant are ignored; a missing attribute takes its default.
func (f *ProductFactory) Create(category, name string, price decimal.Decimal, attrs map[string]any) (domain.Product, error) {
	cat, err := domain.ParseCategory(category)
	if err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{Name: name, Price: price, Category: cat}
	switch cat {
	case domain.CategoryPhone:
		sims, err := intAttr(attrs, AttrSimCount, defaultSimCount)
		if err != nil {
			return domain.Product{}, err
		}
		if sims < 0 {
			return domain.Product{}, fmt.Errorf("%w: %s=%d is negative", domain.ErrInvalidAttribute, AttrSimCount, sims)
		}
		p.Phone = &domain.PhoneSpec{SimCount: sims}
	case domain.CategoryComputer:
		cpu, err := stringAttr(attrs, AttrCPU, "")
		if err != nil {
			return domain.Product{}, err
		}
		p.Computer = &domain.ComputerSpec{CPU: cpu}
	}

	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func intAttr(attrs map[string]any, key string, def int) (int, error) {
	v, ok := attrs[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		if n >= math.MinInt && n <= math.MaxInt {
			return int(n), nil
		}
	case float64:
		// math.MaxInt rounds up to a power of two as a float64, hence the strict bound.
		if n == math.Trunc(n) && n >= math.MinInt && n < math.MaxInt {
			return int(n), nil
		}
	case json.Number:
		if i, err := n.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s=%v is not an integer", domain.ErrInvalidAttribute, key, v)
}

func stringAttr(attrs map[string]any, key, def string) (string, error) {
	v, ok := attrs[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s=%v is not a string", domain.ErrInvalidAttribute, key, v)
	}
	return s, nil
}
