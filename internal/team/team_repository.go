package team

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/golazo-app/golazo/pkg/utils"
)

// TeamRepository defines the interface for team data operations. Multi-row
// state changes (team creation, captaincy transfer, join-request acceptance,
// cascade deletion) run inside single transactions and re-check their
// preconditions against current rows, never against caller-supplied state.
type TeamRepository interface {
	// Team operations
	CreateTeamWithCaptain(team *Team, captainID uint) error
	GetTeamByID(id uint) (*Team, error)
	GetTeamByName(name string) (*Team, error)
	GetAllTeams(page, limit int, filters map[string]interface{}) ([]Team, int64, error)
	UpdateTeam(team *Team) error
	DeleteTeamCascade(id uint) error
	GetTeamsByUserID(userID uint, page, limit int) ([]Team, int64, error)

	// Membership operations
	GetTeamMember(teamID, userID uint) (*TeamMember, error)
	GetActiveMembers(teamID uint) ([]TeamMember, error)
	CountActiveMembers(teamID uint) (int64, error)
	IsLeader(teamID, userID uint) (bool, error)
	IsCaptain(teamID, userID uint) (bool, error)
	HasMember(teamID, userID uint) (bool, error)
	IsFull(team *Team) (bool, error)
	AddMember(member *TeamMember) error
	RemoveMember(teamID, userID uint) error
	TransferCaptaincy(teamID, fromUserID, toUserID uint) error

	// JoinRequest operations
	CreateJoinRequest(request *JoinRequest) error
	GetJoinRequestByID(id uint) (*JoinRequest, error)
	GetPendingJoinRequest(teamID, userID uint) (*JoinRequest, error)
	GetJoinRequestsByTeamID(teamID uint, status RequestStatus, page, limit int) ([]JoinRequest, int64, error)
	AcceptJoinRequest(requestID uint) (*JoinRequest, error)
	RejectJoinRequest(requestID uint) (*JoinRequest, error)

	// TeamInvitation operations
	CreateInvitation(teamID, createdByID uint) (*TeamInvitation, error)
	GetInvitationByToken(token string) (*TeamInvitation, error)
	AcceptInvitation(token string, userID uint) (*TeamInvitation, error)
	RevokeInvitation(id uint) error
	GetInvitationsByTeamID(teamID uint, page, limit int) ([]TeamInvitation, int64, error)

	WithTransaction(txFunc func(TeamRepository) error) error
}

type teamRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTeamRepository creates a TeamRepository backed by gorm.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db, now: time.Now}
}

// NewTeamRepositoryWithClock creates a TeamRepository with an injected time
// source, used by tests to simulate expiry deadlines.
func NewTeamRepositoryWithClock(db *gorm.DB, now func() time.Time) TeamRepository {
	return &teamRepository{db: db, now: now}
}

func (r *teamRepository) WithTransaction(txFunc func(TeamRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return txFunc(&teamRepository{db: tx, now: r.now})
	})
}

// --- Team operations ---

// CreateTeamWithCaptain creates the team and its captain membership as one
// atomic unit; a team never exists without exactly one active captain.
func (r *teamRepository) CreateTeamWithCaptain(team *Team, captainID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		captain := TeamMember{
			TeamID:   team.ID,
			UserID:   captainID,
			Role:     RoleCaptain,
			Status:   MemberActive,
			JoinedAt: r.now(),
		}
		return tx.Create(&captain).Error
	})
}

func (r *teamRepository) GetTeamByID(id uint) (*Team, error) {
	var team Team
	if err := r.db.First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetTeamByName(name string) (*Team, error) {
	var team Team
	if err := r.db.Where("name = ?", name).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetAllTeams(page, limit int, filters map[string]interface{}) ([]Team, int64, error) {
	var teams []Team
	var total int64

	query := r.db.Model(&Team{})
	if v, ok := filters["variant"]; ok {
		query = query.Where("variant = ?", v)
	}
	if name, ok := filters["name"]; ok {
		query = query.Where("LOWER(name) LIKE ?", "%"+name.(string)+"%")
	}

	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (r *teamRepository) UpdateTeam(team *Team) error {
	return r.db.Save(team).Error
}

// DeleteTeamCascade removes the team and its dependents in one transaction,
// leaves first: members, join requests, invitations, then the team row.
func (r *teamRepository) DeleteTeamCascade(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("team_id = ?", id).Delete(&TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("team_id = ?", id).Delete(&JoinRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("team_id = ?", id).Delete(&TeamInvitation{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&Team{}, id).Error
	})
}

func (r *teamRepository) GetTeamsByUserID(userID uint, page, limit int) ([]Team, int64, error) {
	var teams []Team
	var total int64

	query := r.db.Model(&Team{}).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ? AND team_members.status = ? AND team_members.deleted_at IS NULL", userID, MemberActive)

	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("teams.created_at desc").Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

// --- Membership operations ---

func (r *teamRepository) GetTeamMember(teamID, userID uint) (*TeamMember, error) {
	var member TeamMember
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *teamRepository) GetActiveMembers(teamID uint) ([]TeamMember, error) {
	var members []TeamMember
	err := r.db.Where("team_id = ? AND status = ?", teamID, MemberActive).
		Order("joined_at asc").Find(&members).Error
	return members, err
}

func (r *teamRepository) CountActiveMembers(teamID uint) (int64, error) {
	var count int64
	err := r.db.Model(&TeamMember{}).
		Where("team_id = ? AND status = ?", teamID, MemberActive).
		Count(&count).Error
	return count, err
}

func (r *teamRepository) IsLeader(teamID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&TeamMember{}).
		Where("team_id = ? AND user_id = ? AND status = ? AND role IN ?",
			teamID, userID, MemberActive, []Role{RoleCaptain, RoleCoCaptain}).
		Count(&count).Error
	return count > 0, err
}

func (r *teamRepository) IsCaptain(teamID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&TeamMember{}).
		Where("team_id = ? AND user_id = ? AND status = ? AND role = ?",
			teamID, userID, MemberActive, RoleCaptain).
		Count(&count).Error
	return count > 0, err
}

func (r *teamRepository) HasMember(teamID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&TeamMember{}).
		Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, MemberActive).
		Count(&count).Error
	return count > 0, err
}

func (r *teamRepository) IsFull(team *Team) (bool, error) {
	count, err := r.CountActiveMembers(team.ID)
	if err != nil {
		return false, err
	}
	return count >= int64(team.EffectiveMaxMembers()), nil
}

// AddMember upserts on (team_id, user_id) so re-joining reactivates the old
// row instead of violating the unique index.
func (r *teamRepository) AddMember(member *TeamMember) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "position", "status", "joined_at", "updated_at"}),
	}).Create(member).Error
}

func (r *teamRepository) RemoveMember(teamID, userID uint) error {
	return r.db.Model(&TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("status", MemberInactive).Error
}

// TransferCaptaincy demotes the current captain to player and promotes the
// target to captain in one transaction. The team is never captain-less and
// never has two captains, even under concurrent transfer attempts: both
// updates re-check role and status against current rows.
func (r *teamRepository) TransferCaptaincy(teamID, fromUserID, toUserID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		demote := tx.Model(&TeamMember{}).
			Where("team_id = ? AND user_id = ? AND role = ? AND status = ?",
				teamID, fromUserID, RoleCaptain, MemberActive).
			Update("role", RolePlayer)
		if demote.Error != nil {
			return demote.Error
		}
		if demote.RowsAffected == 0 {
			return ErrNotCaptain
		}

		promote := tx.Model(&TeamMember{}).
			Where("team_id = ? AND user_id = ? AND status = ?", teamID, toUserID, MemberActive).
			Update("role", RoleCaptain)
		if promote.Error != nil {
			return promote.Error
		}
		if promote.RowsAffected == 0 {
			return ErrNotMember
		}
		return nil
	})
}

// --- JoinRequest operations ---

// CreateJoinRequest inserts a pending request after purging the user's prior
// terminal (accepted/rejected) requests for the team, so history does not
// accumulate stale rows.
func (r *teamRepository) CreateJoinRequest(request *JoinRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("team_id = ? AND user_id = ? AND status IN ?",
				request.TeamID, request.UserID, []RequestStatus{RequestAccepted, RequestRejected}).
			Delete(&JoinRequest{}).Error; err != nil {
			return err
		}
		request.Status = RequestPending
		return tx.Create(request).Error
	})
}

func (r *teamRepository) GetJoinRequestByID(id uint) (*JoinRequest, error) {
	var request JoinRequest
	if err := r.db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *teamRepository) GetPendingJoinRequest(teamID, userID uint) (*JoinRequest, error) {
	var request JoinRequest
	err := r.db.Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, RequestPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *teamRepository) GetJoinRequestsByTeamID(teamID uint, status RequestStatus, page, limit int) ([]JoinRequest, int64, error) {
	var requests []JoinRequest
	var total int64

	query := r.db.Model(&JoinRequest{}).Where("team_id = ?", teamID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// AcceptJoinRequest re-checks the request is still pending and the team still
// has room at accept time (capacity may have changed since the request was
// created), then creates a player membership — all in one transaction.
func (r *teamRepository) AcceptJoinRequest(requestID uint) (*JoinRequest, error) {
	var request JoinRequest
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotPending
			}
			return err
		}
		if request.Status != RequestPending {
			return ErrRequestNotPending
		}

		var team Team
		if err := tx.First(&team, request.TeamID).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&TeamMember{}).
			Where("team_id = ? AND status = ?", team.ID, MemberActive).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(team.EffectiveMaxMembers()) {
			return ErrTeamFull
		}

		request.Status = RequestAccepted
		if err := tx.Save(&request).Error; err != nil {
			return err
		}
		member := TeamMember{
			TeamID:   request.TeamID,
			UserID:   request.UserID,
			Role:     RolePlayer,
			Status:   MemberActive,
			JoinedAt: r.now(),
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "status", "joined_at", "updated_at"}),
		}).Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *teamRepository) RejectJoinRequest(requestID uint) (*JoinRequest, error) {
	var request JoinRequest
	if err := r.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotPending
		}
		return nil, err
	}
	if request.Status != RequestPending {
		return nil, ErrRequestNotPending
	}
	request.Status = RequestRejected
	if err := r.db.Save(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// --- TeamInvitation operations ---

func (r *teamRepository) CreateInvitation(teamID, createdByID uint) (*TeamInvitation, error) {
	invitation := TeamInvitation{
		TeamID:      teamID,
		CreatedByID: createdByID,
		Token:       utils.GenerateRandomToken(32),
		Status:      InvitationPending,
		ExpiresAt:   r.now().Add(InvitationTTL),
	}
	if err := r.db.Create(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// GetInvitationByToken loads an invitation and lazily transitions it to
// expired on first read past its deadline.
func (r *teamRepository) GetInvitationByToken(tokenStr string) (*TeamInvitation, error) {
	var invitation TeamInvitation
	if err := r.db.Where("token = ?", tokenStr).First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if invitation.Status == InvitationPending && r.now().After(invitation.ExpiresAt) {
		invitation.Status = InvitationExpired
		if err := r.db.Save(&invitation).Error; err != nil {
			return nil, err
		}
	}
	return &invitation, nil
}

// AcceptInvitation redeems a pending, unexpired token for a player
// membership, re-checking capacity inside the transaction.
func (r *teamRepository) AcceptInvitation(tokenStr string, userID uint) (*TeamInvitation, error) {
	var invitation TeamInvitation
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ?", tokenStr).First(&invitation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvitationNotFound
			}
			return err
		}
		if invitation.Status == InvitationPending && r.now().After(invitation.ExpiresAt) {
			invitation.Status = InvitationExpired
			if err := tx.Save(&invitation).Error; err != nil {
				return err
			}
			return ErrInvitationExpired
		}
		if invitation.Status != InvitationPending {
			return ErrInvitationNotPending
		}

		var team Team
		if err := tx.First(&team, invitation.TeamID).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&TeamMember{}).
			Where("team_id = ? AND status = ?", team.ID, MemberActive).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(team.EffectiveMaxMembers()) {
			return ErrTeamFull
		}

		invitation.Status = InvitationAccepted
		if err := tx.Save(&invitation).Error; err != nil {
			return err
		}
		member := TeamMember{
			TeamID:   invitation.TeamID,
			UserID:   userID,
			Role:     RolePlayer,
			Status:   MemberActive,
			JoinedAt: r.now(),
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "status", "joined_at", "updated_at"}),
		}).Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// RevokeInvitation marks a pending invitation revoked; terminal invitations
// are left untouched.
func (r *teamRepository) RevokeInvitation(id uint) error {
	result := r.db.Model(&TeamInvitation{}).
		Where("id = ? AND status = ?", id, InvitationPending).
		Update("status", InvitationRevoked)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvitationNotPending
	}
	return nil
}

func (r *teamRepository) GetInvitationsByTeamID(teamID uint, page, limit int) ([]TeamInvitation, int64, error) {
	var invitations []TeamInvitation
	var total int64

	query := r.db.Model(&TeamInvitation{}).Where("team_id = ?", teamID)
	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&invitations).Error; err != nil {
		return nil, 0, err
	}
	return invitations, total, nil
}
