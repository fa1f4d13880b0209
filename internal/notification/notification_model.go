package notification

import (
	"time"

	"gorm.io/gorm"
)

// Kind enumerates the notification event kinds the domain emits.
type Kind string

const (
	KindMatchRequestReceived Kind = "match_request_received"
	KindMatchRequestAccepted Kind = "match_request_accepted"
	KindMatchRequestRejected Kind = "match_request_rejected"
	KindMatchCancelled       Kind = "match_cancelled"
	KindScoreUpdated         Kind = "score_updated"
	KindAvailabilityReminder Kind = "availability_reminder"
	KindTeamInvitation       Kind = "team_invitation"
	KindJoinRequestReceived  Kind = "join_request_received"
	KindJoinRequestAccepted  Kind = "join_request_accepted"
	KindJoinRequestRejected  Kind = "join_request_rejected"
	KindCommendationReceived Kind = "commendation_received"
	KindProfileComment       Kind = "profile_comment"
)

// Valid reports whether k is a known notification kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMatchRequestReceived, KindMatchRequestAccepted, KindMatchRequestRejected,
		KindMatchCancelled, KindScoreUpdated, KindAvailabilityReminder,
		KindTeamInvitation, KindJoinRequestReceived, KindJoinRequestAccepted,
		KindJoinRequestRejected, KindCommendationReceived, KindProfileComment:
		return true
	}
	return false
}

// Notification is a persisted event addressed to a single user. Delivery
// transport (in-app, push, email) is outside this service; rows here are the
// durable record consumers read from.
type Notification struct {
	gorm.Model
	UserID  uint       `json:"user_id" gorm:"index;not null"`
	Kind    Kind       `json:"kind" gorm:"index;not null"`
	Payload string     `json:"payload,omitempty" gorm:"type:json"`
	ReadAt  *time.Time `json:"read_at,omitempty"`
}
