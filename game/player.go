package game

import "sort"

var palette = []string{"#e53935", "#1e88e5", "#43a047", "#fdd835", "#8e24aa", "#fb8c00", "#00acc1", "#6d4c41"}

// Player is one seat at the table. Players are never removed once the game
// has started; forfeiting or losing flags them bankrupt.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	Cash       int    `json:"cash"`
	Properties []int  `json:"properties"`
	InJail     bool   `json:"inJail"`
	JailTurns  int    `json:"jailTurns"`
	JailCards  int    `json:"jailCards"`
	Bankrupt   bool   `json:"bankrupt"`
	Color      string `json:"color"`
	Connected  bool   `json:"connected"`
}

func (p *Player) owns(id int) bool {
	for _, pid := range p.Properties {
		if pid == id {
			return true
		}
	}
	return false
}

func (p *Player) addProperty(id int) {
	if p.owns(id) {
		return
	}
	p.Properties = append(p.Properties, id)
	sort.Ints(p.Properties)
}

func (p *Player) removeProperty(id int) {
	for i, pid := range p.Properties {
		if pid == id {
			p.Properties = append(p.Properties[:i], p.Properties[i+1:]...)
			return
		}
	}
}

func (p *Player) clone() Player {
	c := *p
	c.Properties = append([]int(nil), p.Properties...)
	return c
}

// Property is the mutable state of one ownable space.
type Property struct {
	ID        int    `json:"id"`
	OwnerID   string `json:"ownerId"`
	Houses    int    `json:"houses"`
	Hotel     bool   `json:"hotel"`
	Mortgaged bool   `json:"mortgaged"`
}

// level orders building states for even-build checks: 0-4 houses, 5 hotel.
func (p *Property) level() int {
	if p.Hotel {
		return 5
	}
	return p.Houses
}

func (p *Property) hasBuildings() bool {
	return p.Hotel || p.Houses > 0
}
