package persistence

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

// catalogSeed is the YAML layout of a catalog import file
type catalogSeed struct {
	Products []struct {
		ID       string `yaml:"id"`
		Article  string `yaml:"article"`
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
	} `yaml:"products"`
	Orders []struct {
		ID           string     `yaml:"id"`
		OrderNumber  string     `yaml:"order_number"`
		CustomerName string     `yaml:"customer_name"`
		Priority     int        `yaml:"priority"`
		DeliveryDate *time.Time `yaml:"delivery_date"`
	} `yaml:"orders"`
}

// SeedCatalog upserts the products and orders read from r. The catalog is
// owned by another system; this only mirrors it for local runs and tests.
func SeedCatalog(ctx context.Context, repo *GormCatalogRepository, r io.Reader) (products, orders int, err error) {
	var seed catalogSeed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && err != io.EOF {
		return 0, 0, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for i, p := range seed.Products {
		if p.ID == "" || p.Article == "" {
			return products, orders, fmt.Errorf("product %d: id and article are required", i)
		}
		if err := repo.SaveProduct(ctx, production.Product{
			ID:       p.ID,
			Article:  p.Article,
			Name:     p.Name,
			Category: p.Category,
		}); err != nil {
			return products, orders, fmt.Errorf("failed to save product %s: %w", p.ID, err)
		}
		products++
	}

	for i, o := range seed.Orders {
		if o.ID == "" {
			return products, orders, fmt.Errorf("order %d: id is required", i)
		}
		if err := repo.SaveOrder(ctx, production.Order{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			CustomerName: o.CustomerName,
			Priority:     o.Priority,
			DeliveryDate: o.DeliveryDate,
		}); err != nil {
			return products, orders, fmt.Errorf("failed to save order %s: %w", o.ID, err)
		}
		orders++
	}

	return products, orders, nil
}
