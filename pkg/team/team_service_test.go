package team

import (
	"context"
	"testing"
	"time"

	"github.com/crewplan/crewplan/internal/event_bus"
	"github.com/crewplan/crewplan/internal/utils"
	"github.com/crewplan/crewplan/pkg/user"
	"github.com/stretchr/testify/assert"
)

type stubUserDirectory struct {
	users map[int]user.User
}

func newStubUserDirectory(ids ...int) *stubUserDirectory {
	dir := &stubUserDirectory{users: map[int]user.User{}}
	for _, id := range ids {
		dir.users[id] = user.User{Id: id, Email: "user" + string(rune('0'+id)) + "@example.com"}
	}
	return dir
}

func (s *stubUserDirectory) GetUser(ctx context.Context, id int) (user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func newTestService(repo *StubTeamRepository, dir *stubUserDirectory) *TeamServiceImpl {
	service := NewTeamService(repo, dir, event_bus.NewEventBus())
	service.clock = &utils.MockClock{FixedNow: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	return service
}

func TestCreateTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the team with the creator as its only leader", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2, 3))

		created, err := service.CreateTeam(ctx, 1, "Platform", "Core platform crew", []int{2, 3})

		assert.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.Equal(t, "Platform", created.Name)
		assert.Equal(t, 1, repo.LeaderCount(created.Id))
		assert.Equal(t, 3, repo.MembershipCount(created.Id))

		leader, err := service.RequireMember(ctx, 1, created.Id)
		assert.NoError(t, err)
		assert.Equal(t, RoleLeader, leader.Role)
	})

	t.Run("ignores the creator in the initial member list", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2))

		created, err := service.CreateTeam(ctx, 1, "Platform", "", []int{1, 2})

		assert.NoError(t, err)
		assert.Equal(t, 2, repo.MembershipCount(created.Id))
		assert.Equal(t, 1, repo.LeaderCount(created.Id))
	})

	t.Run("fails when an initial member does not exist", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1))

		_, err := service.CreateTeam(ctx, 1, "Platform", "", []int{99})

		assert.ErrorIs(t, err, user.ErrUserNotFound)
		assert.Empty(t, repo.teams)
	})
}

func TestListTeams(t *testing.T) {
	ctx := context.Background()
	repo := NewStubTeamRepository()
	service := newTestService(repo, newStubUserDirectory(1, 2))

	first, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2})
	second, _ := service.CreateTeam(ctx, 2, "Design", "", []int{1})

	teams, err := service.ListTeams(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, teams, 2)
	roleByTeam := map[int]Role{}
	for _, summary := range teams {
		roleByTeam[summary.Id] = summary.Role
	}
	assert.Equal(t, RoleLeader, roleByTeam[first.Id])
	assert.Equal(t, RoleMember, roleByTeam[second.Id])
}

func TestListMembers(t *testing.T) {
	ctx := context.Background()
	repo := NewStubTeamRepository()
	service := newTestService(repo, newStubUserDirectory(1, 2, 3, 4))
	created, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2, 3})

	t.Run("any member may list the roster", func(t *testing.T) {
		members, err := service.ListMembers(ctx, 2, created.Id)

		assert.NoError(t, err)
		assert.Len(t, members, 3)
	})

	t.Run("a non-member is rejected", func(t *testing.T) {
		_, err := service.ListMembers(ctx, 4, created.Id)

		assert.ErrorIs(t, err, ErrNotMember)
	})
}

func TestAddMember(t *testing.T) {
	ctx := context.Background()

	t.Run("leader adds a member", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", nil)

		err := service.AddMember(ctx, 1, created.Id, 2)

		assert.NoError(t, err)
		membership, err := service.RequireMember(ctx, 2, created.Id)
		assert.NoError(t, err)
		assert.Equal(t, RoleMember, membership.Role)
	})

	t.Run("a plain member may not add", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2, 3))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2})

		err := service.AddMember(ctx, 2, created.Id, 3)

		assert.ErrorIs(t, err, ErrNotLeader)
	})

	t.Run("a non-member may not add", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2, 3))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", nil)

		err := service.AddMember(ctx, 3, created.Id, 2)

		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("the new user must exist", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", nil)

		err := service.AddMember(ctx, 1, created.Id, 99)

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestRemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("leader removes a member", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2})

		err := service.RemoveMember(ctx, 1, created.Id, 2)

		assert.NoError(t, err)
		assert.Equal(t, 1, repo.MembershipCount(created.Id))
	})

	t.Run("the leader itself cannot be removed", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2})

		err := service.RemoveMember(ctx, 1, created.Id, 1)

		assert.ErrorIs(t, err, ErrLeaderNotRemovable)
		assert.Equal(t, 2, repo.MembershipCount(created.Id))
		assert.Equal(t, 1, repo.LeaderCount(created.Id))
	})

	t.Run("removing someone who is not in the team", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", nil)

		err := service.RemoveMember(ctx, 1, created.Id, 2)

		assert.ErrorIs(t, err, ErrMemberNotFound)
	})

	t.Run("only the leader may remove", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2, 3))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2, 3})

		err := service.RemoveMember(ctx, 2, created.Id, 3)

		assert.ErrorIs(t, err, ErrNotLeader)
	})
}

func TestDeleteTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the team removes every membership", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2, 3))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2, 3})

		err := service.DeleteTeam(ctx, 1, created.Id)

		assert.NoError(t, err)
		assert.Equal(t, 0, repo.MembershipCount(created.Id))
		_, err = service.GetTeamDetail(ctx, 1, created.Id)
		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("only the leader may delete", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2})

		err := service.DeleteTeam(ctx, 2, created.Id)

		assert.ErrorIs(t, err, ErrNotLeader)
		assert.Equal(t, 2, repo.MembershipCount(created.Id))
	})

	t.Run("unknown team", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1))

		err := service.DeleteTeam(ctx, 1, 42)

		assert.ErrorIs(t, err, ErrTeamNotFound)
	})
}

func TestRenameTeam(t *testing.T) {
	ctx := context.Background()
	repo := NewStubTeamRepository()
	service := newTestService(repo, newStubUserDirectory(1, 2))
	created, _ := service.CreateTeam(ctx, 1, "Platform", "Old description", []int{2})

	t.Run("leader renames the team", func(t *testing.T) {
		err := service.RenameTeam(ctx, 1, created.Id, "Platform Core", "New description")

		assert.NoError(t, err)
		detail, err := service.GetTeamDetail(ctx, 2, created.Id)
		assert.NoError(t, err)
		assert.Equal(t, "Platform Core", detail.Name)
		assert.Equal(t, "New description", detail.Description)
	})

	t.Run("a member may not rename", func(t *testing.T) {
		err := service.RenameTeam(ctx, 2, created.Id, "Hijacked", "")

		assert.ErrorIs(t, err, ErrNotLeader)
	})
}

func TestTransferLeadership(t *testing.T) {
	ctx := context.Background()

	t.Run("demotes the old leader and promotes the new one", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2})

		err := service.TransferLeadership(ctx, 1, created.Id, 2)

		assert.NoError(t, err)
		assert.Equal(t, 1, repo.LeaderCount(created.Id))

		oldLeader, _ := service.RequireMember(ctx, 1, created.Id)
		newLeader, _ := service.RequireMember(ctx, 2, created.Id)
		assert.Equal(t, RoleMember, oldLeader.Role)
		assert.Equal(t, RoleLeader, newLeader.Role)
	})

	t.Run("only the leader may transfer", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2, 3))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2, 3})

		err := service.TransferLeadership(ctx, 2, created.Id, 3)

		assert.ErrorIs(t, err, ErrNotLeader)
		assert.Equal(t, 1, repo.LeaderCount(created.Id))
	})

	t.Run("target must be a member", func(t *testing.T) {
		repo := NewStubTeamRepository()
		service := newTestService(repo, newStubUserDirectory(1, 2))
		created, _ := service.CreateTeam(ctx, 1, "Platform", "", nil)

		err := service.TransferLeadership(ctx, 1, created.Id, 2)

		assert.ErrorIs(t, err, ErrNotMember)
		leader, _ := service.RequireMember(ctx, 1, created.Id)
		assert.Equal(t, RoleLeader, leader.Role)
	})
}

func TestCheckRole(t *testing.T) {
	ctx := context.Background()
	repo := NewStubTeamRepository()
	service := newTestService(repo, newStubUserDirectory(1, 2, 3))
	created, _ := service.CreateTeam(ctx, 1, "Platform", "", []int{2})

	t.Run("the leader", func(t *testing.T) {
		isLeader, err := service.CheckRole(ctx, 1, created.Id)

		assert.NoError(t, err)
		assert.True(t, isLeader)
	})

	t.Run("a plain member", func(t *testing.T) {
		_, err := service.CheckRole(ctx, 2, created.Id)

		assert.ErrorIs(t, err, ErrNotLeader)
	})

	t.Run("a non-member", func(t *testing.T) {
		_, err := service.CheckRole(ctx, 3, created.Id)

		assert.ErrorIs(t, err, ErrNotMember)
	})
}

func TestTeamNotifications(t *testing.T) {
	ctx := context.Background()
	repo := NewStubTeamRepository()
	bus := event_bus.NewEventBus()
	service := NewTeamService(repo, newStubUserDirectory(1, 2, 3), bus)
	service.clock = &utils.MockClock{FixedNow: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}

	var added []event_bus.TeamMemberAdded
	var removed []event_bus.TeamMemberRemoved
	var deleted []event_bus.TeamDeleted
	event_bus.SubscribeTyped(bus, event_bus.EventTeamMemberAdded, func(e event_bus.EventT[event_bus.TeamMemberAdded]) error {
		added = append(added, e.Data)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.EventTeamMemberRemoved, func(e event_bus.EventT[event_bus.TeamMemberRemoved]) error {
		removed = append(removed, e.Data)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.EventTeamDeleted, func(e event_bus.EventT[event_bus.TeamDeleted]) error {
		deleted = append(deleted, e.Data)
		return nil
	})

	created, err := service.CreateTeam(ctx, 1, "Platform", "", []int{2})
	assert.NoError(t, err)
	assert.Len(t, added, 1)
	assert.Equal(t, 2, added[0].UserId)
	assert.Equal(t, "Platform", added[0].TeamName)

	assert.NoError(t, service.AddMember(ctx, 1, created.Id, 3))
	assert.Len(t, added, 2)
	assert.Equal(t, 3, added[1].UserId)

	assert.NoError(t, service.RemoveMember(ctx, 1, created.Id, 3))
	assert.Len(t, removed, 1)
	assert.Equal(t, 3, removed[0].UserId)

	assert.NoError(t, service.DeleteTeam(ctx, 1, created.Id))
	assert.Len(t, deleted, 1)
	assert.ElementsMatch(t, []int{1, 2}, deleted[0].MemberIds)
}
