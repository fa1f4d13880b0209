package match

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepo(t *testing.T, now time.Time) (MatchRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewMatchRepositoryWithClock(db, func() time.Time { return now }), mock
}

// The accept transaction must claim the match with a conditional update on
// status = available and roll everything back when zero rows are affected.
func TestAcceptRequestClaimsMatchConditionally(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo, mock := newMockRepo(t, now)

	requestColumns := []string{"id", "created_at", "updated_at", "deleted_at",
		"match_id", "team_id", "message", "status", "reviewed_by_id", "reviewed_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "match_requests"`)).
		WithArgs(uint(10), 1).
		WillReturnRows(sqlmock.NewRows(requestColumns).
			AddRow(10, now, now, nil, 42, 7, "", "pending", nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "football_matches" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0)) // another accept already won
	mock.ExpectRollback()

	_, err := repo.AcceptRequest(10, 1)
	assert.ErrorIs(t, err, ErrMatchNotAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRequestRejectsSiblingsInSameTransaction(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo, mock := newMockRepo(t, now)

	requestColumns := []string{"id", "created_at", "updated_at", "deleted_at",
		"match_id", "team_id", "message", "status", "reviewed_by_id", "reviewed_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "match_requests"`)).
		WithArgs(uint(10), 1).
		WillReturnRows(sqlmock.NewRows(requestColumns).
			AddRow(10, now, now, nil, 42, 7, "", "pending", nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "football_matches" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "match_requests" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "match_requests" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 2)) // two siblings auto-rejected
	mock.ExpectCommit()

	accepted, err := repo.AcceptRequest(10, 1)
	require.NoError(t, err)
	assert.Equal(t, RequestAccepted, accepted.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
