package event_bus

const (
	EventTeamMemberAdded   EventType = "team.member_added"
	EventTeamMemberRemoved EventType = "team.member_removed"
	EventTeamLeaderChanged EventType = "team.leader_changed"
	EventTeamDeleted       EventType = "team.deleted"
)

type TeamMemberAdded struct {
	TeamId   int
	TeamName string
	UserId   int
}

type TeamMemberRemoved struct {
	TeamId   int
	TeamName string
	UserId   int
}

type TeamLeaderChanged struct {
	TeamId     int
	TeamName   string
	FromUserId int
	ToUserId   int
}

type TeamDeleted struct {
	TeamId    int
	TeamName  string
	MemberIds []int
}
