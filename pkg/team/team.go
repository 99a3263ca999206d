package team

import (
	"errors"
	"time"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrNotMember          = errors.New("user is not a member of the team")
	ErrNotLeader          = errors.New("user is not the team leader")
	ErrLeaderNotRemovable = errors.New("team leader cannot be removed, transfer leadership first")
	ErrMemberNotFound     = errors.New("member not found in the team")
)

// Role is the role a membership holds within a team. A team has exactly one
// membership with RoleLeader at any time.
type Role string

const (
	RoleLeader Role = "LEADER"
	RoleMember Role = "MEMBER"
)

func (r Role) IsLeader() bool {
	return r == RoleLeader
}

type Team struct {
	Id          int
	Name        string
	Description string
	CreatedTime time.Time
}

// Membership is the join row between a user and a team.
type Membership struct {
	Id     int
	TeamId int
	UserId int
	Role   Role
}

// TeamSummary is a team annotated with the requesting user's role in it.
type TeamSummary struct {
	Id          int
	Name        string
	Description string
	Role        Role
}

type MemberSummary struct {
	Id       int
	Email    string
	Name     string
	Position string
	Dept     string
}

type TeamDetail struct {
	Id          int
	Name        string
	Description string
	CreatedTime time.Time
}
