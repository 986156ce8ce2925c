package engine

// RoleID identifies a role in the capability table.
type RoleID string

const (
	RoleMedic                RoleID = "medic"
	RoleScientist            RoleID = "scientist"
	RoleResearcher           RoleID = "researcher"
	RoleOperationsExpert     RoleID = "operations_expert"
	RoleQuarantineSpecialist RoleID = "quarantine_specialist"
	RoleGeneralist           RoleID = "generalist"
	RoleDispatcher           RoleID = "dispatcher"
	RoleContingencyPlanner   RoleID = "contingency_planner"
	RoleFieldOperative       RoleID = "field_operative"
	RolePilot                RoleID = "pilot"
)

// Role is an immutable capability record. Players reference roles by ID.
type Role struct {
	ID            RoleID `json:"id"`
	Name          string `json:"name"`
	Ability       string `json:"ability"`
	ActionBudget  int    `json:"action_budget"`
	CureThreshold int    `json:"cure_threshold"`

	TreatAll     bool `json:"treat_all"`  // treat removes every cube of the color
	FreeBuild    bool `json:"free_build"` // build without discarding
	ShareAnyCard bool `json:"share_any"`  // give any card when sharing knowledge
	Quarantine   bool `json:"quarantine"` // blocks cube placement nearby
}

// roleOrder is the canonical order roles are shuffled from.
var roleOrder = []RoleID{
	RoleMedic,
	RoleScientist,
	RoleResearcher,
	RoleOperationsExpert,
	RoleQuarantineSpecialist,
	RoleGeneralist,
	RoleDispatcher,
	RoleContingencyPlanner,
	RoleFieldOperative,
	RolePilot,
}

var roleTable = map[RoleID]Role{
	RoleMedic: {
		ID:            RoleMedic,
		Name:          "Medic",
		Ability:       "Removes all cubes of one color when treating.",
		ActionBudget:  DefaultActionBudget,
		CureThreshold: DefaultCureThreshold,
		TreatAll:      true,
	},
	RoleScientist: {
		ID:            RoleScientist,
		Name:          "Scientist",
		Ability:       "Needs only 4 cards of a color to discover a cure.",
		ActionBudget:  DefaultActionBudget,
		CureThreshold: 4,
	},
	RoleResearcher: {
		ID:            RoleResearcher,
		Name:          "Researcher",
		Ability:       "May give any card when sharing knowledge.",
		ActionBudget:  DefaultActionBudget,
		CureThreshold: DefaultCureThreshold,
		ShareAnyCard:  true,
	},
	RoleOperationsExpert: {
		ID:            RoleOperationsExpert,
		Name:          "Operations Expert",
		Ability:       "Builds research stations without discarding a card.",
		ActionBudget:  DefaultActionBudget,
		CureThreshold: DefaultCureThreshold,
		FreeBuild:     true,
	},
	RoleQuarantineSpecialist: {
		ID:            RoleQuarantineSpecialist,
		Name:          "Quarantine Specialist",
		Ability:       "Prevents cube placement in the current city and its neighbors.",
		ActionBudget:  DefaultActionBudget,
		CureThreshold: DefaultCureThreshold,
		Quarantine:    true,
	},
	RoleGeneralist: {
		ID:            RoleGeneralist,
		Name:          "Generalist",
		Ability:       "Has 5 actions per turn.",
		ActionBudget:  5,
		CureThreshold: DefaultCureThreshold,
	},
	RoleDispatcher: {
		ID:            RoleDispatcher,
		Name:          "Dispatcher",
		Ability:       "Can move other players' pawns, including to another player's city.",
		ActionBudget:  DefaultActionBudget,
		CureThreshold: DefaultCureThreshold,
	},
	RoleContingencyPlanner: {
		ID:            RoleContingencyPlanner,
		Name:          "Contingency Planner",
		Ability:       "Can take an Event card back from the discard pile.",
		ActionBudget:  DefaultActionBudget,
		CureThreshold: DefaultCureThreshold,
	},
	RoleFieldOperative: {
		ID:            RoleFieldOperative,
		Name:          "Field Operative",
		Ability:       "Can keep treated cubes as samples toward discovering a cure.",
		ActionBudget:  DefaultActionBudget,
		CureThreshold: DefaultCureThreshold,
	},
	RolePilot: {
		ID:            RolePilot,
		Name:          "Pilot",
		Ability:       "Once per turn, can fly to any city without discarding a card.",
		ActionBudget:  DefaultActionBudget,
		CureThreshold: DefaultCureThreshold,
	},
}

// LookupRole returns the capability record for id.
func LookupRole(id RoleID) (Role, bool) {
	r, ok := roleTable[id]
	return r, ok
}

// AllRoles returns role IDs in canonical order.
func AllRoles() []RoleID {
	out := make([]RoleID, len(roleOrder))
	copy(out, roleOrder)
	return out
}
