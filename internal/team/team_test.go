package team

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/golazo-app/golazo/internal/variant"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Team{}, &TeamMember{}, &JoinRequest{}, &TeamInvitation{}))
	return db
}

func createTeam(t *testing.T, repo TeamRepository, captainID uint, maxMembers *int) *Team {
	t.Helper()
	team := &Team{
		Name:        "Test FC",
		Variant:     variant.Football5,
		CreatedByID: captainID,
		MaxMembers:  maxMembers,
	}
	require.NoError(t, repo.CreateTeamWithCaptain(team, captainID))
	return team
}

func TestCreateTeamWithCaptain(t *testing.T) {
	repo := NewTeamRepository(setupTestDB(t))
	team := createTeam(t, repo, 1, nil)

	member, err := repo.GetTeamMember(team.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, RoleCaptain, member.Role)
	assert.Equal(t, MemberActive, member.Status)

	count, err := repo.CountActiveMembers(team.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// futsal/5-a-side default roster cap comes from the variant catalog
	assert.Equal(t, 10, team.EffectiveMaxMembers())
}

func TestTransferCaptaincy(t *testing.T) {
	repo := NewTeamRepository(setupTestDB(t))
	team := createTeam(t, repo, 1, nil)
	require.NoError(t, repo.AddMember(&TeamMember{
		TeamID: team.ID, UserID: 2, Role: RolePlayer, Status: MemberActive, JoinedAt: time.Now(),
	}))

	t.Run("not the captain", func(t *testing.T) {
		err := repo.TransferCaptaincy(team.ID, 2, 1)
		assert.ErrorIs(t, err, ErrNotCaptain)
	})

	t.Run("target not an active member", func(t *testing.T) {
		err := repo.TransferCaptaincy(team.ID, 1, 99)
		assert.ErrorIs(t, err, ErrNotMember)

		// the failed transfer must not have demoted the captain
		captain, err := repo.GetTeamMember(team.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, RoleCaptain, captain.Role)
	})

	t.Run("successful transfer", func(t *testing.T) {
		require.NoError(t, repo.TransferCaptaincy(team.ID, 1, 2))

		old, err := repo.GetTeamMember(team.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, RolePlayer, old.Role)

		newCaptain, err := repo.GetTeamMember(team.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, RoleCaptain, newCaptain.Role)
	})
}

func TestJoinRequestLifecycle(t *testing.T) {
	repo := NewTeamRepository(setupTestDB(t))
	team := createTeam(t, repo, 1, nil)

	request := &JoinRequest{TeamID: team.ID, UserID: 2, Message: "let me in"}
	require.NoError(t, repo.CreateJoinRequest(request))
	assert.Equal(t, RequestPending, request.Status)

	pending, err := repo.GetPendingJoinRequest(team.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, pending)

	accepted, err := repo.AcceptJoinRequest(request.ID)
	require.NoError(t, err)
	assert.Equal(t, RequestAccepted, accepted.Status)

	member, err := repo.GetTeamMember(team.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, RolePlayer, member.Role)

	// accepting twice is a conflict, not a double-add
	_, err = repo.AcceptJoinRequest(request.ID)
	assert.ErrorIs(t, err, ErrRequestNotPending)
}

func TestCreateJoinRequestPurgesTerminalRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	team := createTeam(t, repo, 1, nil)

	first := &JoinRequest{TeamID: team.ID, UserID: 2}
	require.NoError(t, repo.CreateJoinRequest(first))
	_, err := repo.RejectJoinRequest(first.ID)
	require.NoError(t, err)

	second := &JoinRequest{TeamID: team.ID, UserID: 2}
	require.NoError(t, repo.CreateJoinRequest(second))

	var count int64
	require.NoError(t, db.Model(&JoinRequest{}).
		Where("team_id = ? AND user_id = ?", team.ID, 2).Count(&count).Error)
	assert.Equal(t, int64(1), count, "rejected row should have been purged")
}

func TestAcceptJoinRequestRechecksCapacity(t *testing.T) {
	repo := NewTeamRepository(setupTestDB(t))
	maxMembers := 2
	team := createTeam(t, repo, 1, &maxMembers)

	request := &JoinRequest{TeamID: team.ID, UserID: 3}
	require.NoError(t, repo.CreateJoinRequest(request))

	// the team fills up after the request was created
	require.NoError(t, repo.AddMember(&TeamMember{
		TeamID: team.ID, UserID: 2, Role: RolePlayer, Status: MemberActive, JoinedAt: time.Now(),
	}))

	_, err := repo.AcceptJoinRequest(request.ID)
	assert.ErrorIs(t, err, ErrTeamFull)

	// the request must still be pending after the failed accept
	pending, err := repo.GetPendingJoinRequest(team.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, pending)
}

func TestInvitationLifecycle(t *testing.T) {
	db := setupTestDB(t)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := NewTeamRepositoryWithClock(db, func() time.Time { return current })
	team := createTeam(t, repo, 1, nil)

	invitation, err := repo.CreateInvitation(team.ID, 1)
	require.NoError(t, err)
	assert.Len(t, invitation.Token, 32)
	assert.Equal(t, InvitationPending, invitation.Status)
	assert.Equal(t, current.Add(InvitationTTL), invitation.ExpiresAt)

	accepted, err := repo.AcceptInvitation(invitation.Token, 2)
	require.NoError(t, err)
	assert.Equal(t, InvitationAccepted, accepted.Status)

	member, err := repo.GetTeamMember(team.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, member)

	_, err = repo.AcceptInvitation(invitation.Token, 3)
	assert.ErrorIs(t, err, ErrInvitationNotPending)

	_, err = repo.AcceptInvitation("no-such-token", 3)
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationLazyExpiry(t *testing.T) {
	db := setupTestDB(t)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := NewTeamRepositoryWithClock(db, func() time.Time { return current })
	team := createTeam(t, repo, 1, nil)

	invitation, err := repo.CreateInvitation(team.ID, 1)
	require.NoError(t, err)

	// jump past the deadline
	current = current.Add(InvitationTTL + time.Hour)

	_, err = repo.AcceptInvitation(invitation.Token, 2)
	assert.ErrorIs(t, err, ErrInvitationExpired)

	loaded, err := repo.GetInvitationByToken(invitation.Token)
	require.NoError(t, err)
	assert.Equal(t, InvitationExpired, loaded.Status)
}

func TestRevokeInvitation(t *testing.T) {
	repo := NewTeamRepository(setupTestDB(t))
	team := createTeam(t, repo, 1, nil)

	invitation, err := repo.CreateInvitation(team.ID, 1)
	require.NoError(t, err)

	require.NoError(t, repo.RevokeInvitation(invitation.ID))

	loaded, err := repo.GetInvitationByToken(invitation.Token)
	require.NoError(t, err)
	assert.Equal(t, InvitationRevoked, loaded.Status)

	assert.ErrorIs(t, repo.RevokeInvitation(invitation.ID), ErrInvitationNotPending)
}

func TestDeleteTeamCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeamRepository(db)
	team := createTeam(t, repo, 1, nil)

	require.NoError(t, repo.CreateJoinRequest(&JoinRequest{TeamID: team.ID, UserID: 2}))
	_, err := repo.CreateInvitation(team.ID, 1)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTeamCascade(team.ID))

	for _, model := range []interface{}{&TeamMember{}, &JoinRequest{}, &TeamInvitation{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("team_id = ?", team.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	}
	loaded, err := repo.GetTeamByID(team.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
