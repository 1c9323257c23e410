package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryPhone    Category = "phone"
	CategoryComputer Category = "computer"
)

// Categories lists every recognized category tag.
var Categories = []Category{CategoryPhone, CategoryComputer}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

type PhoneSpec struct {
	SimCount int
}

type ComputerSpec struct {
	CPU string
}

// Product is a sellable item. Category selects which variant spec is set;
// the other one stays nil.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Category Category
	Phone    *PhoneSpec
	Computer *ComputerSpec
}

// Validate checks that the populated variant matches the category tag.
func (p Product) Validate() error {
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, p.Price)
	}
	switch p.Category {
	case CategoryPhone:
		if p.Phone == nil || p.Computer != nil {
			return fmt.Errorf("product %q: phone variant mismatch", p.Name)
		}
	case CategoryComputer:
		if p.Computer == nil || p.Phone != nil {
			return fmt.Errorf("product %q: computer variant mismatch", p.Name)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, p.Category)
	}
	return nil
}
