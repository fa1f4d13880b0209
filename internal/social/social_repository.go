package social

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// SocialRepository defines the interface for commendation and profile
// comment data operations.
type SocialRepository interface {
	CreateCommendation(commendation *Commendation) error
	GetCommendationsForUser(userID uint) ([]Commendation, error)
	CountCommendationsByCategory(userID uint) (map[CommendationCategory]int64, error)

	CreateProfileComment(comment *ProfileComment) error
	GetProfileComments(profileUserID uint, page, limit int) ([]ProfileComment, int64, error)
	DeleteProfileComment(commentID, actorID uint) error
}

type socialRepository struct {
	db *gorm.DB
}

// NewSocialRepository creates a SocialRepository backed by gorm.
func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

// CreateCommendation inserts a commendation; the unique index on
// (from, to, category) backs up the pre-check under concurrent writes.
func (r *socialRepository) CreateCommendation(commendation *Commendation) error {
	if commendation.FromUserID == commendation.ToUserID {
		return ErrSelfCommendation
	}

	var count int64
	if err := r.db.Model(&Commendation{}).
		Where("from_user_id = ? AND to_user_id = ? AND category = ?",
			commendation.FromUserID, commendation.ToUserID, commendation.Category).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateCommendation
	}

	if err := r.db.Create(commendation).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCommendation
		}
		return err
	}
	return nil
}

func (r *socialRepository) GetCommendationsForUser(userID uint) ([]Commendation, error) {
	var commendations []Commendation
	err := r.db.Preload("FromUser").
		Where("to_user_id = ?", userID).
		Order("created_at desc").Find(&commendations).Error
	return commendations, err
}

func (r *socialRepository) CountCommendationsByCategory(userID uint) (map[CommendationCategory]int64, error) {
	type categoryCount struct {
		Category CommendationCategory
		Count    int64
	}
	var rows []categoryCount
	err := r.db.Model(&Commendation{}).
		Select("category, COUNT(*) as count").
		Where("to_user_id = ?", userID).
		Group("category").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[CommendationCategory]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

func (r *socialRepository) CreateProfileComment(comment *ProfileComment) error {
	return r.db.Create(comment).Error
}

func (r *socialRepository) GetProfileComments(profileUserID uint, page, limit int) ([]ProfileComment, int64, error) {
	var comments []ProfileComment
	var total int64

	query := r.db.Model(&ProfileComment{}).Where("profile_user_id = ?", profileUserID)
	query.Count(&total)
	offset := (page - 1) * limit
	err := query.Preload("Author").
		Offset(offset).Limit(limit).Order("created_at desc").Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// DeleteProfileComment removes a comment. The author and the profile owner
// may both delete it.
func (r *socialRepository) DeleteProfileComment(commentID, actorID uint) error {
	var comment ProfileComment
	if err := r.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.AuthorID != actorID && comment.ProfileUserID != actorID {
		return ErrNotCommentAuthor
	}
	return r.db.Unscoped().Delete(&comment).Error
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
