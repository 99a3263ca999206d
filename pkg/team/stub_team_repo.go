package team

import (
	"context"
)

// StubTeamRepository is an in-memory Repo used by service tests.
type StubTeamRepository struct {
	nextTeamId       int
	nextMembershipId int
	teams            map[int]Team
	memberships      map[int]Membership
}

func NewStubTeamRepository() *StubTeamRepository {
	return &StubTeamRepository{
		teams:       map[int]Team{},
		memberships: map[int]Membership{},
	}
}

func (s *StubTeamRepository) CreateTeam(ctx context.Context, team Team, leaderId int, memberIds []int) (int, error) {
	s.nextTeamId++
	team.Id = s.nextTeamId
	s.teams[team.Id] = team

	s.addMembership(team.Id, leaderId, RoleLeader)
	for _, memberId := range memberIds {
		s.addMembership(team.Id, memberId, RoleMember)
	}
	return team.Id, nil
}

func (s *StubTeamRepository) addMembership(teamId, userId int, role Role) int {
	s.nextMembershipId++
	s.memberships[s.nextMembershipId] = Membership{
		Id:     s.nextMembershipId,
		TeamId: teamId,
		UserId: userId,
		Role:   role,
	}
	return s.nextMembershipId
}

func (s *StubTeamRepository) GetTeam(ctx context.Context, teamId int) (Team, error) {
	team, ok := s.teams[teamId]
	if !ok {
		return Team{}, ErrTeamNotFound
	}
	return team, nil
}

func (s *StubTeamRepository) UpdateTeam(ctx context.Context, teamId int, name, description string) error {
	team, ok := s.teams[teamId]
	if !ok {
		return ErrTeamNotFound
	}
	team.Name = name
	team.Description = description
	s.teams[teamId] = team
	return nil
}

func (s *StubTeamRepository) DeleteTeam(ctx context.Context, teamId int) error {
	if _, ok := s.teams[teamId]; !ok {
		return ErrTeamNotFound
	}
	delete(s.teams, teamId)
	for id, m := range s.memberships {
		if m.TeamId == teamId {
			delete(s.memberships, id)
		}
	}
	return nil
}

func (s *StubTeamRepository) FindMember(ctx context.Context, userId, teamId int) (*Membership, error) {
	for _, m := range s.memberships {
		if m.UserId == userId && m.TeamId == teamId {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubTeamRepository) ListTeamsByUser(ctx context.Context, userId int) ([]TeamSummary, error) {
	summaries := make([]TeamSummary, 0)
	for _, m := range s.memberships {
		if m.UserId != userId {
			continue
		}
		team := s.teams[m.TeamId]
		summaries = append(summaries, TeamSummary{
			Id:          team.Id,
			Name:        team.Name,
			Description: team.Description,
			Role:        m.Role,
		})
	}
	return summaries, nil
}

func (s *StubTeamRepository) ListMembers(ctx context.Context, teamId int) ([]MemberSummary, error) {
	members := make([]MemberSummary, 0)
	for _, m := range s.memberships {
		if m.TeamId == teamId {
			members = append(members, MemberSummary{Id: m.UserId})
		}
	}
	return members, nil
}

func (s *StubTeamRepository) ListMemberIds(ctx context.Context, teamId int) ([]int, error) {
	ids := make([]int, 0)
	for id := 1; id <= s.nextMembershipId; id++ {
		m, ok := s.memberships[id]
		if ok && m.TeamId == teamId {
			ids = append(ids, m.UserId)
		}
	}
	return ids, nil
}

func (s *StubTeamRepository) AddMember(ctx context.Context, teamId, userId int, role Role) (int, error) {
	return s.addMembership(teamId, userId, role), nil
}

func (s *StubTeamRepository) DeleteMember(ctx context.Context, userId, teamId int) error {
	for id, m := range s.memberships {
		if m.UserId == userId && m.TeamId == teamId {
			delete(s.memberships, id)
			return nil
		}
	}
	return ErrMemberNotFound
}

func (s *StubTeamRepository) TransferLeadership(ctx context.Context, teamId, fromUserId, toUserId int) error {
	var from, to *Membership
	for id := range s.memberships {
		m := s.memberships[id]
		if m.TeamId != teamId {
			continue
		}
		switch m.UserId {
		case fromUserId:
			from = &m
		case toUserId:
			to = &m
		}
	}
	if from == nil || to == nil {
		return ErrNotMember
	}
	if !from.Role.IsLeader() {
		return ErrNotLeader
	}
	from.Role = RoleMember
	to.Role = RoleLeader
	s.memberships[from.Id] = *from
	s.memberships[to.Id] = *to
	return nil
}

// LeaderCount reports how many memberships of the team hold the leader role.
func (s *StubTeamRepository) LeaderCount(teamId int) int {
	count := 0
	for _, m := range s.memberships {
		if m.TeamId == teamId && m.Role.IsLeader() {
			count++
		}
	}
	return count
}

// MembershipCount reports how many memberships reference the team.
func (s *StubTeamRepository) MembershipCount(teamId int) int {
	count := 0
	for _, m := range s.memberships {
		if m.TeamId == teamId {
			count++
		}
	}
	return count
}
