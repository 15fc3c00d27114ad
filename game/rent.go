package game

import "github.com/wfunc/monopoly/board"

// rentFor computes what a visitor owes on s. Mortgaged spaces and, with the
// house rule on, spaces whose owner sits in jail collect nothing.
func (e *Engine) rentFor(s board.Space, prop *Property, mode rentMode) int {
	if prop.Mortgaged || prop.OwnerID == "" {
		return 0
	}
	owner := e.player(prop.OwnerID)
	if owner == nil || (e.settings.NoRentInJail && owner.InJail) {
		return 0
	}

	switch s.Type {
	case board.TypeProperty:
		switch {
		case prop.Hotel:
			return s.Rent.Hotel
		case prop.Houses > 0:
			return s.Rent.WithHouses(prop.Houses)
		case e.ownsGroup(owner.ID, s.Color):
			return s.Rent.Base * 2
		default:
			return s.Rent.Base
		}
	case board.TypeRailroad:
		rent := board.RailroadRent(e.countOwned(owner.ID, board.TypeRailroad))
		if mode == rentCardRailroad {
			rent *= 2
		}
		return rent
	case board.TypeUtility:
		multiplier := board.UtilityMultiplier(e.countOwned(owner.ID, board.TypeUtility))
		if mode == rentCardUtility {
			multiplier = 10
		}
		sum := 0
		if e.lastRoll != nil {
			sum = e.lastRoll.Sum
		}
		return sum * multiplier
	}
	return 0
}

func (e *Engine) ownsGroup(playerID string, c board.Color) bool {
	ids := board.Group(c)
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if e.properties[id].OwnerID != playerID {
			return false
		}
	}
	return true
}

func (e *Engine) countOwned(playerID string, t board.SpaceType) int {
	n := 0
	for _, id := range board.OfType(t) {
		if e.properties[id].OwnerID == playerID {
			n++
		}
	}
	return n
}
