package repository

import (
	"errors"
	"testing"
	"time"

	"loyalty_wheel/pkg/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"})) // FK violation
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(nil))
}

func TestRedeemConditionalUpdate(t *testing.T) {
	t.Run("Available ticket matches one row", func(t *testing.T) {
		db, smock := newMockDB(t)
		repo := NewTicketRepository(db)

		smock.ExpectBegin()
		smock.ExpectExec(`UPDATE "reward_tickets" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		smock.ExpectCommit()

		rows, err := repo.Redeem("t-1", time.Now())

		assert.NoError(t, err)
		assert.Equal(t, int64(1), rows)
		assert.NoError(t, smock.ExpectationsWereMet())
	})

	t.Run("Already redeemed ticket matches zero rows", func(t *testing.T) {
		db, smock := newMockDB(t)
		repo := NewTicketRepository(db)

		smock.ExpectBegin()
		smock.ExpectExec(`UPDATE "reward_tickets" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		smock.ExpectCommit()

		rows, err := repo.Redeem("t-1", time.Now())

		assert.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})
}

func TestListByTenantKeyset(t *testing.T) {
	columns := []string{"id", "campaign_id", "prize_id", "prize_label", "contact", "issued_at", "expires_at", "status"}

	t.Run("First page has no cursor predicate", func(t *testing.T) {
		db, smock := newMockDB(t)
		repo := NewTicketRepository(db)

		smock.ExpectQuery(`SELECT .* FROM "reward_tickets" JOIN campaigns ON campaigns\.id = reward_tickets\.campaign_id AND campaigns\.deleted_at IS NULL WHERE campaigns\.tenant_id = \$1`).
			WithArgs("tenant-1").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.ListByTenant("tenant-1", nil, 20)
		assert.NoError(t, err)
		assert.NoError(t, smock.ExpectationsWereMet())
	})

	t.Run("Join excludes soft-deleted campaigns", func(t *testing.T) {
		db, smock := newMockDB(t)
		repo := NewTicketRepository(db)

		smock.ExpectQuery(`JOIN campaigns ON campaigns\.id = reward_tickets\.campaign_id AND campaigns\.deleted_at IS NULL`).
			WithArgs("tenant-1").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.ListByTenant("tenant-1", nil, 20)
		assert.NoError(t, err)
		assert.NoError(t, smock.ExpectationsWereMet())
	})

	t.Run("Cursor adds strict keyset predicate", func(t *testing.T) {
		db, smock := newMockDB(t)
		repo := NewTicketRepository(db)

		issuedAt := time.Now().Add(-time.Hour)
		cursor := &utils.TicketCursor{IssuedAt: issuedAt, ID: "t-x"}

		smock.ExpectQuery(`reward_tickets\.issued_at < \$\d+ OR \(reward_tickets\.issued_at = \$\d+ AND reward_tickets\.id < \$\d+\)`).
			WithArgs("tenant-1", issuedAt, issuedAt, "t-x").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.ListByTenant("tenant-1", cursor, 20)
		assert.NoError(t, err)
		assert.NoError(t, smock.ExpectationsWereMet())
	})
}
