package helpers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/shopfloor-go/internal/adapters/persistence"
	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/database"
)

// NewTestDB opens a migrated in-memory database that is closed when the test ends
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewTestConnection()
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SharedTestDB is the database shared by every BDD scenario
var SharedTestDB *gorm.DB

// InitializeSharedTestDB opens SharedTestDB. Call it once from TestMain.
func InitializeSharedTestDB() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to open shared test database: %w", err)
	}
	SharedTestDB = db
	return nil
}

// CloseSharedTestDB closes SharedTestDB
func CloseSharedTestDB() error {
	if SharedTestDB == nil {
		return nil
	}
	err := database.Close(SharedTestDB)
	SharedTestDB = nil
	return err
}

// TruncateAllTables empties every persisted model, dependents first, so each
// scenario starts from a clean store
func TruncateAllTables() error {
	if SharedTestDB == nil {
		return fmt.Errorf("shared test database not initialized")
	}

	models := persistence.AllModels()
	session := SharedTestDB.Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(models) - 1; i >= 0; i-- {
		if err := session.Delete(models[i]).Error; err != nil {
			return fmt.Errorf("failed to truncate %T: %w", models[i], err)
		}
	}
	return nil
}
