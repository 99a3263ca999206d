package team

import (
	"context"
	"fmt"

	"github.com/crewplan/crewplan/internal/event_bus"
	"github.com/crewplan/crewplan/internal/utils"
	"github.com/crewplan/crewplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

// UserDirectory resolves user ids. Satisfied by user.Service.
type UserDirectory interface {
	GetUser(ctx context.Context, id int) (user.User, error)
}

type Service interface {
	CreateTeam(ctx context.Context, creatorId int, name, description string, memberIds []int) (Team, error)
	ListTeams(ctx context.Context, userId int) ([]TeamSummary, error)
	ListMembers(ctx context.Context, requesterId, teamId int) ([]MemberSummary, error)
	GetTeamDetail(ctx context.Context, requesterId, teamId int) (TeamDetail, error)
	AddMember(ctx context.Context, requesterId, teamId, memberId int) error
	RemoveMember(ctx context.Context, requesterId, teamId, memberId int) error
	DeleteTeam(ctx context.Context, requesterId, teamId int) error
	RenameTeam(ctx context.Context, requesterId, teamId int, name, description string) error
	TransferLeadership(ctx context.Context, requesterId, teamId, newLeaderId int) error
	CheckRole(ctx context.Context, userId, teamId int) (bool, error)
	RequireMember(ctx context.Context, userId, teamId int) (Membership, error)
	RequireLeader(ctx context.Context, userId, teamId int) (Membership, error)
	MemberIds(ctx context.Context, teamId int) ([]int, error)
}

type TeamServiceImpl struct {
	repo  Repo
	users UserDirectory
	bus   *event_bus.EventBus
	clock utils.Clock
}

func NewTeamService(repo Repo, users UserDirectory, bus *event_bus.EventBus) *TeamServiceImpl {
	return &TeamServiceImpl{repo: repo, users: users, bus: bus, clock: utils.SystemClock{}}
}

// RequireMember is the single source of truth for "is this user in this team".
// It returns ErrNotMember when the user holds no membership.
func (s *TeamServiceImpl) RequireMember(ctx context.Context, userId, teamId int) (Membership, error) {
	membership, err := s.repo.FindMember(ctx, userId, teamId)
	if err != nil {
		return Membership{}, err
	}
	if membership == nil {
		return Membership{}, ErrNotMember
	}
	return *membership, nil
}

// RequireLeader checks membership first, then the role, so that a non-member
// and a non-leader member receive distinct errors.
func (s *TeamServiceImpl) RequireLeader(ctx context.Context, userId, teamId int) (Membership, error) {
	membership, err := s.RequireMember(ctx, userId, teamId)
	if err != nil {
		return Membership{}, err
	}
	if !membership.Role.IsLeader() {
		return Membership{}, ErrNotLeader
	}
	return membership, nil
}

func (s *TeamServiceImpl) CreateTeam(ctx context.Context, creatorId int, name, description string, memberIds []int) (Team, error) {
	if _, err := s.users.GetUser(ctx, creatorId); err != nil {
		return Team{}, err
	}

	// Resolve every initial member before writing anything; the creator is
	// always the leader and is skipped if listed again.
	members := make([]int, 0, len(memberIds))
	for _, memberId := range memberIds {
		if memberId == creatorId {
			continue
		}
		if _, err := s.users.GetUser(ctx, memberId); err != nil {
			return Team{}, err
		}
		members = append(members, memberId)
	}

	team := Team{
		Name:        name,
		Description: description,
		CreatedTime: s.clock.Now(),
	}
	teamId, err := s.repo.CreateTeam(ctx, team, creatorId, members)
	if err != nil {
		return Team{}, err
	}
	team.Id = teamId

	for _, memberId := range members {
		s.publish(ctx, event_bus.EventTeamMemberAdded, event_bus.TeamMemberAdded{
			TeamId:   teamId,
			TeamName: name,
			UserId:   memberId,
		})
	}

	return team, nil
}

func (s *TeamServiceImpl) ListTeams(ctx context.Context, userId int) ([]TeamSummary, error) {
	return s.repo.ListTeamsByUser(ctx, userId)
}

func (s *TeamServiceImpl) ListMembers(ctx context.Context, requesterId, teamId int) ([]MemberSummary, error) {
	if _, err := s.RequireMember(ctx, requesterId, teamId); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, teamId)
}

func (s *TeamServiceImpl) GetTeamDetail(ctx context.Context, requesterId, teamId int) (TeamDetail, error) {
	if _, err := s.RequireMember(ctx, requesterId, teamId); err != nil {
		return TeamDetail{}, err
	}
	team, err := s.repo.GetTeam(ctx, teamId)
	if err != nil {
		return TeamDetail{}, err
	}
	return TeamDetail{
		Id:          team.Id,
		Name:        team.Name,
		Description: team.Description,
		CreatedTime: team.CreatedTime,
	}, nil
}

func (s *TeamServiceImpl) AddMember(ctx context.Context, requesterId, teamId, memberId int) error {
	if _, err := s.RequireLeader(ctx, requesterId, teamId); err != nil {
		return err
	}
	if _, err := s.users.GetUser(ctx, memberId); err != nil {
		return err
	}
	team, err := s.repo.GetTeam(ctx, teamId)
	if err != nil {
		return err
	}

	if _, err := s.repo.AddMember(ctx, teamId, memberId, RoleMember); err != nil {
		return err
	}

	s.publish(ctx, event_bus.EventTeamMemberAdded, event_bus.TeamMemberAdded{
		TeamId:   teamId,
		TeamName: team.Name,
		UserId:   memberId,
	})
	return nil
}

func (s *TeamServiceImpl) RemoveMember(ctx context.Context, requesterId, teamId, memberId int) error {
	if _, err := s.RequireLeader(ctx, requesterId, teamId); err != nil {
		return err
	}

	membership, err := s.repo.FindMember(ctx, memberId, teamId)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrMemberNotFound
	}
	if membership.Role.IsLeader() {
		return ErrLeaderNotRemovable
	}

	if err := s.repo.DeleteMember(ctx, memberId, teamId); err != nil {
		return err
	}

	team, err := s.repo.GetTeam(ctx, teamId)
	if err != nil {
		log.Warnf("member %d removed but team %d could not be loaded for notification: %v", memberId, teamId, err)
		return nil
	}
	s.publish(ctx, event_bus.EventTeamMemberRemoved, event_bus.TeamMemberRemoved{
		TeamId:   teamId,
		TeamName: team.Name,
		UserId:   memberId,
	})
	return nil
}

func (s *TeamServiceImpl) DeleteTeam(ctx context.Context, requesterId, teamId int) error {
	team, err := s.repo.GetTeam(ctx, teamId)
	if err != nil {
		return err
	}
	if _, err := s.RequireLeader(ctx, requesterId, teamId); err != nil {
		return err
	}

	memberIds, err := s.repo.ListMemberIds(ctx, teamId)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTeam(ctx, teamId); err != nil {
		return err
	}

	s.publish(ctx, event_bus.EventTeamDeleted, event_bus.TeamDeleted{
		TeamId:    teamId,
		TeamName:  team.Name,
		MemberIds: memberIds,
	})
	return nil
}

func (s *TeamServiceImpl) RenameTeam(ctx context.Context, requesterId, teamId int, name, description string) error {
	if _, err := s.repo.GetTeam(ctx, teamId); err != nil {
		return err
	}
	if _, err := s.RequireLeader(ctx, requesterId, teamId); err != nil {
		return err
	}
	return s.repo.UpdateTeam(ctx, teamId, name, description)
}

func (s *TeamServiceImpl) TransferLeadership(ctx context.Context, requesterId, teamId, newLeaderId int) error {
	if _, err := s.RequireLeader(ctx, requesterId, teamId); err != nil {
		return err
	}
	if _, err := s.RequireMember(ctx, newLeaderId, teamId); err != nil {
		return err
	}

	// The repo re-verifies both memberships under row locks; the checks above
	// only exist to give callers precise errors without opening a transaction.
	if err := s.repo.TransferLeadership(ctx, teamId, requesterId, newLeaderId); err != nil {
		return err
	}

	team, err := s.repo.GetTeam(ctx, teamId)
	if err != nil {
		log.Warnf("leadership of team %d transferred but team could not be loaded for notification: %v", teamId, err)
		return nil
	}
	s.publish(ctx, event_bus.EventTeamLeaderChanged, event_bus.TeamLeaderChanged{
		TeamId:     teamId,
		TeamName:   team.Name,
		FromUserId: requesterId,
		ToUserId:   newLeaderId,
	})
	return nil
}

func (s *TeamServiceImpl) CheckRole(ctx context.Context, userId, teamId int) (bool, error) {
	if _, err := s.RequireLeader(ctx, userId, teamId); err != nil {
		return false, err
	}
	return true, nil
}

func (s *TeamServiceImpl) MemberIds(ctx context.Context, teamId int) ([]int, error) {
	return s.repo.ListMemberIds(ctx, teamId)
}

// publish delivers a domain event. Notification failures never fail the
// mutation that triggered them.
func (s *TeamServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Warn(fmt.Errorf("failed to publish %s event: %w", eventType, err))
	}
}
