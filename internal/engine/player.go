package engine

// Participant is a roster entry handed to InitializeGame.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Player holds one player's state.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	Role        RoleID `json:"role"`
	Location    string `json:"location"`
	Hand        []Card `json:"hand"`
	ActionsLeft int    `json:"actions_left"`
}

func NewPlayer(p Participant, role RoleID, location string) *Player {
	return &Player{
		ID:          p.ID,
		Name:        p.Name,
		Avatar:      p.Avatar,
		Role:        role,
		Location:    location,
		ActionsLeft: roleTable[role].ActionBudget,
	}
}

// Capabilities returns the player's role record.
func (p *Player) Capabilities() Role {
	return roleTable[p.Role]
}

// HandFind returns the index of the card with the given id, or -1.
func (p *Player) HandFind(id string) int {
	for i, c := range p.Hand {
		if c.ID() == id {
			return i
		}
	}
	return -1
}

// HasCard reports whether the hand holds a card with the given id.
func (p *Player) HasCard(id string) bool {
	return p.HandFind(id) >= 0
}

// RemoveFromHand removes the first card with the given id, returns true if found.
func (p *Player) RemoveFromHand(id string) (Card, bool) {
	i := p.HandFind(id)
	if i < 0 {
		return Card{}, false
	}
	c := p.Hand[i]
	p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
	return c, true
}

// OverHandLimit reports whether the player must discard.
func (p *Player) OverHandLimit() bool {
	return len(p.Hand) > HandLimit
}

// cityCardsOf lists the ids of city cards of color c in hand order.
func (p *Player) cityCardsOf(c Color, w *World) []string {
	var out []string
	for _, card := range p.Hand {
		if card.Kind == CardCity && w.ColorOf(card.City) == c {
			out = append(out, card.City)
		}
	}
	return out
}

func (p *Player) clone() *Player {
	cp := *p
	cp.Hand = make([]Card, len(p.Hand))
	copy(cp.Hand, p.Hand)
	return &cp
}
