package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repo interface {
	// CreateTeam inserts the team, its leader membership, and the initial member
	// memberships in a single transaction.
	CreateTeam(ctx context.Context, team Team, leaderId int, memberIds []int) (int, error)
	GetTeam(ctx context.Context, teamId int) (Team, error)
	UpdateTeam(ctx context.Context, teamId int, name, description string) error
	// DeleteTeam removes all memberships of the team and the team row itself in
	// a single transaction, so no orphaned membership can survive.
	DeleteTeam(ctx context.Context, teamId int) error
	// FindMember returns the membership of userId in teamId, or nil when the
	// user is not a member.
	FindMember(ctx context.Context, userId, teamId int) (*Membership, error)
	ListTeamsByUser(ctx context.Context, userId int) ([]TeamSummary, error)
	ListMembers(ctx context.Context, teamId int) ([]MemberSummary, error)
	ListMemberIds(ctx context.Context, teamId int) ([]int, error)
	AddMember(ctx context.Context, teamId, userId int, role Role) (int, error)
	DeleteMember(ctx context.Context, userId, teamId int) error
	// TransferLeadership locks both membership rows, verifies the current roles,
	// and swaps them in one transaction. At no point can the team have zero or
	// two leaders.
	TransferLeadership(ctx context.Context, teamId, fromUserId, toUserId int) error
}

type TeamRepoImpl struct {
	db *pgxpool.Pool
}

func NewTeamRepo(db *pgxpool.Pool) *TeamRepoImpl {
	return &TeamRepoImpl{db: db}
}

func (t *TeamRepoImpl) CreateTeam(ctx context.Context, team Team, leaderId int, memberIds []int) (int, error) {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var teamId int
	err = tx.QueryRow(ctx,
		`INSERT INTO team (name, description, created_time) VALUES ($1, $2, $3) RETURNING id`,
		team.Name, team.Description, team.CreatedTime,
	).Scan(&teamId)
	if err != nil {
		log.Errorf("failed to create team: %v", err)
		return 0, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_team (team_id, user_id, role) VALUES ($1, $2, $3)`,
		teamId, leaderId, RoleLeader,
	)
	if err != nil {
		log.Errorf("failed to create leader membership: %v", err)
		return 0, err
	}

	for _, memberId := range memberIds {
		_, err = tx.Exec(ctx,
			`INSERT INTO user_team (team_id, user_id, role) VALUES ($1, $2, $3)`,
			teamId, memberId, RoleMember,
		)
		if err != nil {
			log.Errorf("failed to create membership for user %d: %v", memberId, err)
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("could not commit transaction: %w", err)
	}
	return teamId, nil
}

func (t *TeamRepoImpl) GetTeam(ctx context.Context, teamId int) (Team, error) {
	query := `SELECT id, name, description, created_time FROM team WHERE id = $1`
	var team Team
	err := t.db.QueryRow(ctx, query, teamId).
		Scan(&team.Id, &team.Name, &team.Description, &team.CreatedTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return Team{}, ErrTeamNotFound
	} else if err != nil {
		log.Errorf("failed to get team: %v", err)
		return Team{}, err
	}
	return team, nil
}

func (t *TeamRepoImpl) UpdateTeam(ctx context.Context, teamId int, name, description string) error {
	result, err := t.db.Exec(ctx,
		`UPDATE team SET name = $1, description = $2 WHERE id = $3`,
		name, description, teamId,
	)
	if err != nil {
		log.Errorf("failed to update team %d: %v", teamId, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (t *TeamRepoImpl) DeleteTeam(ctx context.Context, teamId int) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM user_team WHERE team_id = $1`, teamId)
	if err != nil {
		log.Errorf("failed to delete memberships of team %d: %v", teamId, err)
		return err
	}

	result, err := tx.Exec(ctx, `DELETE FROM team WHERE id = $1`, teamId)
	if err != nil {
		log.Errorf("failed to delete team %d: %v", teamId, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func (t *TeamRepoImpl) FindMember(ctx context.Context, userId, teamId int) (*Membership, error) {
	query := `SELECT id, team_id, user_id, role FROM user_team WHERE user_id = $1 AND team_id = $2`
	var m Membership
	err := t.db.QueryRow(ctx, query, userId, teamId).
		Scan(&m.Id, &m.TeamId, &m.UserId, &m.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		log.Errorf("failed to find membership of user %d in team %d: %v", userId, teamId, err)
		return nil, err
	}
	return &m, nil
}

func (t *TeamRepoImpl) ListTeamsByUser(ctx context.Context, userId int) ([]TeamSummary, error) {
	query := `SELECT t.id, t.name, t.description, ut.role
				FROM user_team ut
				JOIN team t ON ut.team_id = t.id
				WHERE ut.user_id = $1
				ORDER BY t.id`
	rows, err := t.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to list teams for user %d: %v", userId, err)
		return nil, err
	}
	defer rows.Close()

	teams := make([]TeamSummary, 0, 10)
	for rows.Next() {
		var summary TeamSummary
		if err := rows.Scan(&summary.Id, &summary.Name, &summary.Description, &summary.Role); err != nil {
			log.Errorf("failed to scan team summary: %v", err)
			return nil, err
		}
		teams = append(teams, summary)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return teams, nil
}

func (t *TeamRepoImpl) ListMembers(ctx context.Context, teamId int) ([]MemberSummary, error) {
	query := `SELECT u.id, u.email, u.name, u.position, u.dept
				FROM user_team ut
				JOIN users u ON ut.user_id = u.id
				WHERE ut.team_id = $1
				ORDER BY ut.id`
	rows, err := t.db.Query(ctx, query, teamId)
	if err != nil {
		log.Errorf("failed to list members of team %d: %v", teamId, err)
		return nil, err
	}
	defer rows.Close()

	members := make([]MemberSummary, 0, 10)
	for rows.Next() {
		var member MemberSummary
		if err := rows.Scan(&member.Id, &member.Email, &member.Name, &member.Position, &member.Dept); err != nil {
			log.Errorf("failed to scan member summary: %v", err)
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return members, nil
}

func (t *TeamRepoImpl) ListMemberIds(ctx context.Context, teamId int) ([]int, error) {
	rows, err := t.db.Query(ctx, `SELECT user_id FROM user_team WHERE team_id = $1 ORDER BY id`, teamId)
	if err != nil {
		log.Errorf("failed to list member ids of team %d: %v", teamId, err)
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0, 10)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return ids, nil
}

func (t *TeamRepoImpl) AddMember(ctx context.Context, teamId, userId int, role Role) (int, error) {
	var id int
	err := t.db.QueryRow(ctx,
		`INSERT INTO user_team (team_id, user_id, role) VALUES ($1, $2, $3) RETURNING id`,
		teamId, userId, role,
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to add user %d to team %d: %v", userId, teamId, err)
		return 0, err
	}
	return id, nil
}

func (t *TeamRepoImpl) DeleteMember(ctx context.Context, userId, teamId int) error {
	result, err := t.db.Exec(ctx,
		`DELETE FROM user_team WHERE user_id = $1 AND team_id = $2`,
		userId, teamId,
	)
	if err != nil {
		log.Errorf("failed to delete membership of user %d in team %d: %v", userId, teamId, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (t *TeamRepoImpl) TransferLeadership(ctx context.Context, teamId, fromUserId, toUserId int) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock both membership rows so concurrent transfers serialize on the same
	// team and the single-leader invariant holds.
	rows, err := tx.Query(ctx,
		`SELECT user_id, role FROM user_team WHERE team_id = $1 AND user_id = ANY($2) FOR UPDATE`,
		teamId, []int{fromUserId, toUserId},
	)
	if err != nil {
		log.Errorf("failed to lock memberships of team %d: %v", teamId, err)
		return err
	}
	roles := make(map[int]Role, 2)
	for rows.Next() {
		var userId int
		var role Role
		if err := rows.Scan(&userId, &role); err != nil {
			rows.Close()
			return err
		}
		roles[userId] = role
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating over rows: %w", err)
	}

	fromRole, fromOk := roles[fromUserId]
	if _, toOk := roles[toUserId]; !fromOk || !toOk {
		return ErrNotMember
	}
	if !fromRole.IsLeader() {
		return ErrNotLeader
	}

	if _, err := tx.Exec(ctx,
		`UPDATE user_team SET role = $1 WHERE team_id = $2 AND user_id = $3`,
		RoleMember, teamId, fromUserId,
	); err != nil {
		log.Errorf("failed to demote user %d in team %d: %v", fromUserId, teamId, err)
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE user_team SET role = $1 WHERE team_id = $2 AND user_id = $3`,
		RoleLeader, teamId, toUserId,
	); err != nil {
		log.Errorf("failed to promote user %d in team %d: %v", toUserId, teamId, err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}
