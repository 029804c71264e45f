package repository

import (
	"regexp"
	"testing"

	"loyalty_wheel/internal/domain/wheel/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, smock, err := sqlmock.New()
	assert.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	assert.NoError(t, err)
	return db, smock
}

const decrementSQL = "UPDATE prizes SET stock = stock - 1 WHERE id = $1 AND stock > 0 AND deleted_at IS NULL RETURNING stock"

func TestDecrementStock(t *testing.T) {
	t.Run("Decrements and returns remaining stock", func(t *testing.T) {
		db, smock := newMockDB(t)
		repo := NewInventoryRepository(db)

		smock.ExpectQuery(regexp.QuoteMeta(decrementSQL)).
			WithArgs("prize-1").
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(4))

		remaining, err := repo.DecrementStock(nil, "prize-1")

		assert.NoError(t, err)
		assert.Equal(t, 4, remaining)
		assert.NoError(t, smock.ExpectationsWereMet())
	})

	t.Run("Exhausted stock returns sentinel without writing", func(t *testing.T) {
		db, smock := newMockDB(t)
		repo := NewInventoryRepository(db)

		// stock = 0 时条件不命中，0 行返回
		smock.ExpectQuery(regexp.QuoteMeta(decrementSQL)).
			WithArgs("prize-1").
			WillReturnRows(sqlmock.NewRows([]string{"stock"}))

		_, err := repo.DecrementStock(nil, "prize-1")

		assert.ErrorIs(t, err, model.ErrStockExhausted)
		assert.NoError(t, smock.ExpectationsWereMet())
	})
}
