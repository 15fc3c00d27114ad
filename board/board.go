// Package board holds the static catalog of the game: the forty spaces, their
// rent tables and the two card decks. Nothing in here is mutated after init.
package board

import "fmt"

// SpaceType 格子类型
type SpaceType string

const (
	TypeGo             SpaceType = "go"
	TypeProperty       SpaceType = "property"
	TypeRailroad       SpaceType = "railroad"
	TypeUtility        SpaceType = "utility"
	TypeTax            SpaceType = "tax"
	TypeChance         SpaceType = "chance"
	TypeCommunityChest SpaceType = "community_chest"
	TypeJail           SpaceType = "jail"
	TypeFreeParking    SpaceType = "free_parking"
	TypeGoToJail       SpaceType = "go_to_jail"
)

// Color is the rent color group of a street.
type Color string

const (
	ColorNone      Color = ""
	ColorBrown     Color = "brown"
	ColorLightBlue Color = "light_blue"
	ColorPink      Color = "pink"
	ColorOrange    Color = "orange"
	ColorRed       Color = "red"
	ColorYellow    Color = "yellow"
	ColorGreen     Color = "green"
	ColorDarkBlue  Color = "dark_blue"
)

const (
	Size          = 40
	GoSalary      = 200
	JailPosition  = 10
	GoToJailSpace = 30
	JailFee       = 50
	HousePool     = 32
	HotelPool     = 12
	MaxHouses     = 4
	MaxJailTurns  = 3
)

// Rent is the rent schedule of a street, one named tier per building level.
type Rent struct {
	Base        int `json:"base"`
	OneHouse    int `json:"oneHouse"`
	TwoHouses   int `json:"twoHouses"`
	ThreeHouses int `json:"threeHouses"`
	FourHouses  int `json:"fourHouses"`
	Hotel       int `json:"hotel"`
}

// WithHouses returns the tier for 1..4 houses; anything else falls back to Base.
func (r Rent) WithHouses(n int) int {
	switch n {
	case 1:
		return r.OneHouse
	case 2:
		return r.TwoHouses
	case 3:
		return r.ThreeHouses
	case 4:
		return r.FourHouses
	default:
		return r.Base
	}
}

// Space is one immutable board square.
type Space struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Type          SpaceType `json:"type"`
	Color         Color     `json:"color,omitempty"`
	Price         int       `json:"price,omitempty"`
	Rent          Rent      `json:"rent"`
	HouseCost     int       `json:"houseCost,omitempty"`
	MortgageValue int       `json:"mortgageValue,omitempty"`
	Tax           int       `json:"tax,omitempty"`
}

// Ownable reports whether the space can be bought.
func (s Space) Ownable() bool {
	return s.Type == TypeProperty || s.Type == TypeRailroad || s.Type == TypeUtility
}

// HotelCost equals the house cost on this board.
func (s Space) HotelCost() int {
	return s.HouseCost
}

// UnmortgageCost is the mortgage value plus ten percent interest, rounded down.
func (s Space) UnmortgageCost() int {
	return s.MortgageValue * 11 / 10
}

// RailroadRent returns the rent owed when the owner holds owned railroads.
func RailroadRent(owned int) int {
	if owned < 1 || owned > 4 {
		return 0
	}
	return 25 << (owned - 1)
}

// UtilityMultiplier returns the dice multiplier for owned utilities.
func UtilityMultiplier(owned int) int {
	switch owned {
	case 1:
		return 4
	case 2:
		return 10
	default:
		return 0
	}
}

var groups = func() map[Color][]int {
	g := make(map[Color][]int)
	for _, s := range spaces {
		if s.Type == TypeProperty {
			g[s.Color] = append(g[s.Color], s.ID)
		}
	}
	return g
}()

// Get returns the space with the given id.
func Get(id int) (Space, error) {
	if id < 0 || id >= Size {
		return Space{}, fmt.Errorf("space %d out of range", id)
	}
	return spaces[id], nil
}

// MustGet is Get for ids that are known to be valid.
func MustGet(id int) Space {
	s, err := Get(id)
	if err != nil {
		panic(err)
	}
	return s
}

// Spaces returns a copy of the whole board in position order.
func Spaces() []Space {
	out := make([]Space, len(spaces))
	copy(out, spaces[:])
	return out
}

// Group returns the street ids sharing a color, in board order.
func Group(c Color) []int {
	ids := groups[c]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// Ownables returns all ownable space ids in board order.
func Ownables() []int {
	var ids []int
	for _, s := range spaces {
		if s.Ownable() {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// OfType returns ids of every space of type t.
func OfType(t SpaceType) []int {
	var ids []int
	for _, s := range spaces {
		if s.Type == t {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// NextOfType returns the first space of type t strictly ahead of from,
// wrapping around the board.
func NextOfType(from int, t SpaceType) int {
	for step := 1; step <= Size; step++ {
		id := (from + step) % Size
		if spaces[id].Type == t {
			return id
		}
	}
	return from
}
