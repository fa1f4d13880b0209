package social

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Commendation{}, &ProfileComment{}))
	return db
}

func TestCommendationUniqueness(t *testing.T) {
	repo := NewSocialRepository(setupTestDB(t))

	first := &Commendation{FromUserID: 1, ToUserID: 2, Category: CategorySkill, Comment: "great touch"}
	require.NoError(t, repo.CreateCommendation(first))

	t.Run("same category twice is a conflict", func(t *testing.T) {
		dup := &Commendation{FromUserID: 1, ToUserID: 2, Category: CategorySkill}
		assert.ErrorIs(t, repo.CreateCommendation(dup), ErrDuplicateCommendation)
	})

	t.Run("different category is allowed", func(t *testing.T) {
		other := &Commendation{FromUserID: 1, ToUserID: 2, Category: CategoryLeadership}
		assert.NoError(t, repo.CreateCommendation(other))
	})

	t.Run("self commendation rejected", func(t *testing.T) {
		self := &Commendation{FromUserID: 1, ToUserID: 1, Category: CategorySkill}
		assert.ErrorIs(t, repo.CreateCommendation(self), ErrSelfCommendation)
	})

	counts, err := repo.CountCommendationsByCategory(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[CategorySkill])
	assert.Equal(t, int64(1), counts[CategoryLeadership])
}

func TestProfileComments(t *testing.T) {
	repo := NewSocialRepository(setupTestDB(t))

	comment := &ProfileComment{ProfileUserID: 5, AuthorID: 1, Body: "nice game yesterday"}
	require.NoError(t, repo.CreateProfileComment(comment))

	comments, total, err := repo.GetProfileComments(5, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, comments, 1)

	t.Run("strangers cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, repo.DeleteProfileComment(comment.ID, 99), ErrNotCommentAuthor)
	})

	t.Run("the profile owner can delete", func(t *testing.T) {
		other := &ProfileComment{ProfileUserID: 5, AuthorID: 2, Body: "spam"}
		require.NoError(t, repo.CreateProfileComment(other))
		require.NoError(t, repo.DeleteProfileComment(other.ID, 5))
	})

	t.Run("the author can delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteProfileComment(comment.ID, 1))
		assert.ErrorIs(t, repo.DeleteProfileComment(comment.ID, 1), ErrCommentNotFound)
	})
}
