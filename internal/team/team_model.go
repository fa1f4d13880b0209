package team

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/golazo-app/golazo/internal/variant"
)

// Role is a member's role within a team.
type Role string

const (
	RoleCaptain   Role = "captain"
	RoleCoCaptain Role = "co_captain"
	RolePlayer    Role = "player"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCaptain || r == RoleCoCaptain || r == RolePlayer
}

// MemberStatus is a membership row's lifecycle status.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

// RequestStatus is a join request's lifecycle status.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// InvitationStatus is a team invitation's lifecycle status.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationRevoked  InvitationStatus = "revoked"
)

// InvitationTTL is how long an invitation token stays redeemable.
const InvitationTTL = 7 * 24 * time.Hour

// Sentinel errors surfaced by team operations. Controllers map these to
// HTTP statuses; they never reach clients as raw storage errors.
var (
	ErrTeamNotFound         = errors.New("team not found")
	ErrNotLeader            = errors.New("user is not a team leader")
	ErrNotCaptain           = errors.New("user is not the team captain")
	ErrNotMember            = errors.New("user is not an active member of the team")
	ErrAlreadyMember        = errors.New("user is already a member of the team")
	ErrTeamFull             = errors.New("team has reached its maximum capacity")
	ErrDuplicateJoinRequest = errors.New("a pending join request already exists")
	ErrRequestNotPending    = errors.New("join request is not pending")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationNotPending = errors.New("invitation is not pending")
	ErrInvitationExpired    = errors.New("invitation has expired")
)

// Team is a football side playing one of the four catalogued variants.
type Team struct {
	gorm.Model
	Name        string          `json:"name" gorm:"not null;uniqueIndex"`
	Description string          `json:"description,omitempty"`
	Variant     variant.Variant `json:"variant" gorm:"index;not null"`
	Logo        string          `json:"logo,omitempty"`
	CreatedByID uint            `json:"created_by_id" gorm:"index"`
	// MaxMembers overrides the variant's default roster capacity when set.
	MaxMembers *int `json:"max_members,omitempty"`
}

// EffectiveMaxMembers is the roster capacity: the explicit override when set,
// otherwise the variant default.
func (t *Team) EffectiveMaxMembers() int {
	if t.MaxMembers != nil && *t.MaxMembers > 0 {
		return *t.MaxMembers
	}
	return variant.DefaultMaxRoster(t.Variant)
}

// MinMembers is the advisory squad-health floor for the team's variant.
// Display only, never enforced.
func (t *Team) MinMembers() int {
	return variant.DefaultMinRoster(t.Variant)
}

// TeamMember binds a user to a team with a role.
type TeamMember struct {
	gorm.Model
	TeamID   uint         `json:"team_id" gorm:"index;not null;uniqueIndex:idx_team_user"`
	UserID   uint         `json:"user_id" gorm:"index;not null;uniqueIndex:idx_team_user"`
	Role     Role         `json:"role" gorm:"not null;default:'player'"`
	Position string       `json:"position,omitempty"`
	Status   MemberStatus `json:"status" gorm:"not null;default:'active'"`
	JoinedAt time.Time    `json:"joined_at"`
}

// IsLeader reports whether this membership row carries leadership rights.
func (m *TeamMember) IsLeader() bool {
	return m.Status == MemberActive && (m.Role == RoleCaptain || m.Role == RoleCoCaptain)
}

// JoinRequest is a user-initiated bid to join a team.
type JoinRequest struct {
	gorm.Model
	TeamID  uint          `json:"team_id" gorm:"index;not null"`
	UserID  uint          `json:"user_id" gorm:"index;not null"`
	Message string        `json:"message,omitempty"`
	Status  RequestStatus `json:"status" gorm:"index;not null;default:'pending'"`
}

// TeamInvitation is a leader-initiated, tokenized invitation to join a team.
type TeamInvitation struct {
	gorm.Model
	TeamID      uint             `json:"team_id" gorm:"index;not null"`
	CreatedByID uint             `json:"created_by_id" gorm:"index;not null"`
	Token       string           `json:"token" gorm:"uniqueIndex;not null;size:32"`
	Status      InvitationStatus `json:"status" gorm:"index;not null;default:'pending'"`
	ExpiresAt   time.Time        `json:"expires_at"`
}
