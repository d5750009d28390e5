package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
)

// GormCatalogRepository is the read model of products and orders used by production
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GORM catalog repository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindProduct returns nil when the product does not exist
func (r *GormCatalogRepository) FindProduct(ctx context.Context, id string) (*production.Product, error) {
	return r.findProduct(ctx, "id = ?", id)
}

// FindProductByArticle returns nil when no product carries the article code
func (r *GormCatalogRepository) FindProductByArticle(ctx context.Context, article string) (*production.Product, error) {
	return r.findProduct(ctx, "article = ?", article)
}

func (r *GormCatalogRepository) findProduct(ctx context.Context, where string, arg string) (*production.Product, error) {
	var model ProductModel
	result := conn(ctx, r.db).Where(where, arg).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product: %w", result.Error)
	}
	return &production.Product{
		ID:       model.ID,
		Article:  model.Article,
		Name:     model.Name,
		Category: model.Category,
	}, nil
}

// SaveProduct inserts or updates a product
func (r *GormCatalogRepository) SaveProduct(ctx context.Context, product production.Product) error {
	model := &ProductModel{
		ID:       product.ID,
		Article:  product.Article,
		Name:     product.Name,
		Category: product.Category,
	}
	result := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"article", "name", "category"}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save product: %w", result.Error)
	}
	return nil
}

// FindOrder returns nil when the order does not exist
func (r *GormCatalogRepository) FindOrder(ctx context.Context, id string) (*production.Order, error) {
	var model OrderModel
	result := conn(ctx, r.db).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order: %w", result.Error)
	}
	return &production.Order{
		ID:           model.ID,
		OrderNumber:  model.OrderNumber,
		CustomerName: model.CustomerName,
		Priority:     model.Priority,
		DeliveryDate: model.DeliveryDate,
	}, nil
}

// SaveOrder inserts or updates an order
func (r *GormCatalogRepository) SaveOrder(ctx context.Context, order production.Order) error {
	model := &OrderModel{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		Priority:     order.Priority,
		DeliveryDate: order.DeliveryDate,
	}
	result := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"order_number", "customer_name", "priority", "delivery_date"}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save order: %w", result.Error)
	}
	return nil
}
