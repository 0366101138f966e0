package types

// Location is a GPS coordinate in decimal degrees.
// Values are taken as reported, there is no range validation.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Player represents a single participant in a session. Players are
// immutable values: every update replaces the whole record, there is
// no field-level diffing.
type Player struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Location *Location `json:"location,omitempty"`
	Alive    bool      `json:"alive"`
}

// Copy returns a copy of the player with its own location pointer.
func (p Player) Copy() Player {
	copy := p
	if p.Location != nil {
		loc := *p.Location
		copy.Location = &loc
	}
	return copy
}

// Session is the shared game record. It lives in the remote store and
// every participant holds only the latest snapshot of it. Player order
// is snapshot order and carries no meaning.
type Session struct {
	ID      int      `json:"id"`
	Players []Player `json:"players"`
	Active  bool     `json:"active"`
}

// Copy returns a deep copy of the session.
func (s *Session) Copy() *Session {
	copy := &Session{
		ID:      s.ID,
		Players: make([]Player, 0, len(s.Players)),
		Active:  s.Active,
	}
	for _, p := range s.Players {
		copy.Players = append(copy.Players, p.Copy())
	}
	return copy
}

// FindPlayer returns the player with the given id, or nil.
func (s *Session) FindPlayer(id int) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// AlivePlayers returns the players still marked alive, in session order.
func (s *Session) AlivePlayers() []Player {
	var alive []Player
	for _, p := range s.Players {
		if p.Alive {
			alive = append(alive, p)
		}
	}
	return alive
}
