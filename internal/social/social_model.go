package social

import (
	"errors"

	"gorm.io/gorm"

	"github.com/golazo-app/golazo/internal/user"
)

// CommendationCategory is a closed set of praise categories. A user may
// commend another user at most once per category.
type CommendationCategory string

const (
	CategorySportsmanship CommendationCategory = "sportsmanship"
	CategorySkill         CommendationCategory = "skill"
	CategoryLeadership    CommendationCategory = "leadership"
	CategoryTeamwork      CommendationCategory = "teamwork"
	CategoryReliability   CommendationCategory = "reliability"
)

// Valid reports whether the category is one of the known values.
func (c CommendationCategory) Valid() bool {
	switch c {
	case CategorySportsmanship, CategorySkill, CategoryLeadership,
		CategoryTeamwork, CategoryReliability:
		return true
	}
	return false
}

var (
	ErrSelfCommendation      = errors.New("users cannot commend themselves")
	ErrDuplicateCommendation = errors.New("commendation already given in this category")
	ErrCommentNotFound       = errors.New("profile comment not found")
	ErrNotCommentAuthor      = errors.New("only the comment author or profile owner can delete it")
)

// Commendation is one user's praise of another in a single category.
type Commendation struct {
	gorm.Model
	FromUserID uint                 `json:"from_user_id" gorm:"uniqueIndex:idx_commendation_from_to_cat;not null"`
	FromUser   user.User            `json:"from_user,omitempty" gorm:"foreignKey:FromUserID"`
	ToUserID   uint                 `json:"to_user_id" gorm:"uniqueIndex:idx_commendation_from_to_cat;not null"`
	Category   CommendationCategory `json:"category" gorm:"uniqueIndex:idx_commendation_from_to_cat;not null"`
	Comment    string               `json:"comment"`
}

// ProfileComment is a free-text message left on a user's profile.
type ProfileComment struct {
	gorm.Model
	ProfileUserID uint      `json:"profile_user_id" gorm:"index;not null"`
	AuthorID      uint      `json:"author_id" gorm:"not null"`
	Author        user.User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Body          string    `json:"body" gorm:"not null"`
}
