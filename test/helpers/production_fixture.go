package helpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/persistence"
	"github.com/andrescamacho/shopfloor-go/internal/application/mediator"
	planningQueries "github.com/andrescamacho/shopfloor-go/internal/application/planning/queries"
	"github.com/andrescamacho/shopfloor-go/internal/application/production/commands"
	"github.com/andrescamacho/shopfloor-go/internal/application/setup"
	"github.com/andrescamacho/shopfloor-go/internal/domain/production"
	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// FixtureStart is the wall-clock time every fixture starts at (a Monday)
var FixtureStart = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

// ProductionFixture wires the real persistence and handlers on a test database
type ProductionFixture struct {
	DB         *gorm.DB
	Tasks      *persistence.GormProductionTaskRepository
	Stock      *persistence.GormStockLedger
	Catalog    *persistence.GormCatalogRepository
	Transactor *persistence.GormTransactor
	Clock      *shared.MockClock
	Mediator   mediator.Mediator
}

// NewProductionFixture builds a fixture on a fresh in-memory database
func NewProductionFixture(t *testing.T) *ProductionFixture {
	f, err := NewProductionFixtureOn(NewTestDB(t))
	if err != nil {
		t.Fatalf("failed to build production fixture: %v", err)
	}
	return f
}

// NewProductionFixtureOn builds a fixture on an existing database
func NewProductionFixtureOn(db *gorm.DB) (*ProductionFixture, error) {
	f := &ProductionFixture{
		DB:         db,
		Tasks:      persistence.NewGormProductionTaskRepository(db),
		Stock:      persistence.NewGormStockLedger(db),
		Catalog:    persistence.NewGormCatalogRepository(db),
		Transactor: persistence.NewGormTransactor(db),
		Clock:      shared.NewMockClock(FixtureStart),
	}

	registry := setup.NewHandlerRegistry(
		f.Tasks, f.Stock, f.Catalog, f.Catalog, f.Transactor,
		planningQueries.Settings{}, f.Clock, nil,
	)
	m, err := registry.CreateConfiguredMediator()
	if err != nil {
		return nil, err
	}
	f.Mediator = m
	return f, nil
}

// Day returns midnight of the fixture's start date shifted by offset days
func (f *ProductionFixture) Day(offset int) time.Time {
	return shared.AddDays(shared.StartOfDay(FixtureStart), offset)
}

// SeedProduct stores a catalog product
func (f *ProductionFixture) SeedProduct(id, article string) error {
	return f.Catalog.SaveProduct(context.Background(), production.Product{
		ID:      id,
		Article: article,
		Name:    fmt.Sprintf("Product %s", article),
	})
}

// SeedOrder stores a customer order
func (f *ProductionFixture) SeedOrder(id, number string) error {
	return f.Catalog.SaveOrder(context.Background(), production.Order{
		ID:           id,
		OrderNumber:  number,
		CustomerName: "ACME",
		Priority:     production.DefaultPriority.Int(),
	})
}

// CreateTask creates a task through the mediator and returns its ID
func (f *ProductionFixture) CreateTask(ctx context.Context, cmd *commands.CreateTaskCommand) (string, error) {
	resp, err := mediator.Send[*commands.TaskResponse](ctx, f.Mediator, cmd)
	if err != nil {
		return "", err
	}
	return resp.Task.ID, nil
}

// Task reloads a task from the database
func (f *ProductionFixture) Task(id string) (*production.ProductionTask, error) {
	task, err := f.Tasks.FindByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %s not found", id)
	}
	return task, nil
}
