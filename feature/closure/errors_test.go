package closure_test

import (
	"context"
	"errors"
	"testing"

	"modaudit/feature/closure"
	"modaudit/feature/index"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestBuildBubblesStoreErrors(t *testing.T) {
	t.Run("DefinitionLoadFails", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		mock.ExpectQuery(".*").WillReturnError(errors.New("disk I/O error"))

		builder := closure.NewBuilder(index.New(gormDB), zap.NewNop(), closure.Config{})
		_, err := builder.Build(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load definitions")
	})

	t.Run("ReferenceLoadFails", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		mock.ExpectQuery(".*").WillReturnRows(sqlmock.NewRows([]string{"id", "type", "name"}))
		mock.ExpectQuery(".*").WillReturnError(errors.New("disk I/O error"))

		builder := closure.NewBuilder(index.New(gormDB), zap.NewNop(), closure.Config{})
		_, err := builder.Build(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load references")
	})
}
