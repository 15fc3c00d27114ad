package game

import (
	"fmt"

	"github.com/wfunc/monopoly/board"
)

// owned resolves propertyID to a space p owns.
func (e *Engine) owned(p *Player, propertyID int) (board.Space, *Property, error) {
	s, err := board.Get(propertyID)
	if err != nil || !s.Ownable() {
		return board.Space{}, nil, fmt.Errorf("%w: property %d", ErrNotFound, propertyID)
	}
	prop := e.properties[propertyID]
	if prop.OwnerID != p.ID {
		return board.Space{}, nil, fmt.Errorf("%w: %s", ErrNotOwner, s.Name)
	}
	return s, prop, nil
}

// buildable checks the group rules shared by every construction.
func (e *Engine) buildable(p *Player, s board.Space) error {
	if s.Type != board.TypeProperty {
		return fmt.Errorf("%w: you cannot build on %s", ErrRuleViolation, s.Name)
	}
	if !e.ownsGroup(p.ID, s.Color) {
		return fmt.Errorf("%w: you need the whole %s group to build", ErrRuleViolation, s.Color)
	}
	for _, id := range board.Group(s.Color) {
		if e.properties[id].Mortgaged {
			return fmt.Errorf("%w: %s is mortgaged", ErrRuleViolation, board.MustGet(id).Name)
		}
	}
	return nil
}

// groupLevels returns the lowest and highest building level in the group.
func (e *Engine) groupLevels(c board.Color) (lo, hi int) {
	lo = 5
	for _, id := range board.Group(c) {
		l := e.properties[id].level()
		lo = min(lo, l)
		hi = max(hi, l)
	}
	return lo, hi
}

func (e *Engine) groupHasBuildings(c board.Color) bool {
	if c == board.ColorNone {
		return false
	}
	for _, id := range board.Group(c) {
		if e.properties[id].hasBuildings() {
			return true
		}
	}
	return false
}

func (e *Engine) buildHouse(p *Player, propertyID int) error {
	s, prop, err := e.owned(p, propertyID)
	if err != nil {
		return err
	}
	if err := e.buildable(p, s); err != nil {
		return err
	}
	if prop.Hotel || prop.Houses >= board.MaxHouses {
		return fmt.Errorf("%w: %s already has %d houses, build a hotel instead", ErrRuleViolation, s.Name, board.MaxHouses)
	}
	if lo, _ := e.groupLevels(s.Color); e.settings.EvenBuild && prop.level() > lo {
		return fmt.Errorf("%w: build evenly across the %s group", ErrRuleViolation, s.Color)
	}
	if !e.settings.UnlimitedBuilding && e.houses == 0 {
		return fmt.Errorf("%w: the bank has no houses left", ErrRuleViolation)
	}
	if p.Cash < s.HouseCost {
		return fmt.Errorf("%w: a house on %s costs $%d", ErrInsufficientFunds, s.Name, s.HouseCost)
	}
	p.Cash -= s.HouseCost
	prop.Houses++
	if !e.settings.UnlimitedBuilding {
		e.houses--
	}
	e.record("house_built", p.ID, map[string]any{"propertyId": s.ID, "houses": prop.Houses},
		"%s built a house on %s", p.Name, s.Name)
	return nil
}

// buildHotel swaps four houses on the property for a hotel from the bank.
func (e *Engine) buildHotel(p *Player, propertyID int) error {
	s, prop, err := e.owned(p, propertyID)
	if err != nil {
		return err
	}
	if err := e.buildable(p, s); err != nil {
		return err
	}
	if prop.Hotel {
		return fmt.Errorf("%w: %s already has a hotel", ErrRuleViolation, s.Name)
	}
	if prop.Houses != board.MaxHouses {
		return fmt.Errorf("%w: %s needs %d houses before a hotel", ErrRuleViolation, s.Name, board.MaxHouses)
	}
	if lo, _ := e.groupLevels(s.Color); e.settings.EvenBuild && lo < board.MaxHouses {
		return fmt.Errorf("%w: every %s property needs %d houses first", ErrRuleViolation, s.Color, board.MaxHouses)
	}
	if !e.settings.UnlimitedBuilding && e.hotels == 0 {
		return fmt.Errorf("%w: the bank has no hotels left", ErrRuleViolation)
	}
	if p.Cash < s.HotelCost() {
		return fmt.Errorf("%w: a hotel on %s costs $%d", ErrInsufficientFunds, s.Name, s.HotelCost())
	}
	p.Cash -= s.HotelCost()
	prop.Houses = 0
	prop.Hotel = true
	if !e.settings.UnlimitedBuilding {
		e.hotels--
		e.houses += board.MaxHouses
	}
	e.record("hotel_built", p.ID, map[string]any{"propertyId": s.ID}, "%s built a hotel on %s", p.Name, s.Name)
	return nil
}

func (e *Engine) sellHouse(p *Player, propertyID int) error {
	s, prop, err := e.owned(p, propertyID)
	if err != nil {
		return err
	}
	if prop.Hotel {
		return fmt.Errorf("%w: sell the hotel on %s first", ErrRuleViolation, s.Name)
	}
	if prop.Houses == 0 {
		return fmt.Errorf("%w: %s has no houses", ErrRuleViolation, s.Name)
	}
	if _, hi := e.groupLevels(s.Color); e.settings.EvenBuild && prop.level() < hi {
		return fmt.Errorf("%w: sell evenly across the %s group", ErrRuleViolation, s.Color)
	}
	refund := s.HouseCost / 2
	prop.Houses--
	p.Cash += refund
	if !e.settings.UnlimitedBuilding {
		e.houses++
	}
	e.record("house_sold", p.ID, map[string]any{"propertyId": s.ID, "refund": refund},
		"%s sold a house on %s for $%d", p.Name, s.Name, refund)
	return nil
}

// sellHotel breaks a hotel back down into four houses.
func (e *Engine) sellHotel(p *Player, propertyID int) error {
	s, prop, err := e.owned(p, propertyID)
	if err != nil {
		return err
	}
	if !prop.Hotel {
		return fmt.Errorf("%w: %s has no hotel", ErrRuleViolation, s.Name)
	}
	if !e.settings.UnlimitedBuilding && e.houses < board.MaxHouses {
		return fmt.Errorf("%w: the bank needs %d houses to break the hotel", ErrRuleViolation, board.MaxHouses)
	}
	refund := s.HotelCost() / 2
	prop.Hotel = false
	prop.Houses = board.MaxHouses
	p.Cash += refund
	if !e.settings.UnlimitedBuilding {
		e.hotels++
		e.houses -= board.MaxHouses
	}
	e.record("hotel_sold", p.ID, map[string]any{"propertyId": s.ID, "refund": refund},
		"%s sold the hotel on %s for $%d", p.Name, s.Name, refund)
	return nil
}

func (e *Engine) mortgage(p *Player, propertyID int) error {
	s, prop, err := e.owned(p, propertyID)
	if err != nil {
		return err
	}
	if prop.Mortgaged {
		return fmt.Errorf("%w: %s is already mortgaged", ErrRuleViolation, s.Name)
	}
	if e.groupHasBuildings(s.Color) {
		return fmt.Errorf("%w: sell the buildings in the %s group first", ErrRuleViolation, s.Color)
	}
	prop.Mortgaged = true
	p.Cash += s.MortgageValue
	e.record("mortgaged", p.ID, map[string]any{"propertyId": s.ID, "amount": s.MortgageValue},
		"%s mortgaged %s for $%d", p.Name, s.Name, s.MortgageValue)
	return nil
}

func (e *Engine) unmortgage(p *Player, propertyID int) error {
	s, prop, err := e.owned(p, propertyID)
	if err != nil {
		return err
	}
	if !prop.Mortgaged {
		return fmt.Errorf("%w: %s is not mortgaged", ErrRuleViolation, s.Name)
	}
	cost := s.UnmortgageCost()
	if p.Cash < cost {
		return fmt.Errorf("%w: lifting the mortgage on %s costs $%d", ErrInsufficientFunds, s.Name, cost)
	}
	p.Cash -= cost
	prop.Mortgaged = false
	e.record("unmortgaged", p.ID, map[string]any{"propertyId": s.ID, "amount": cost},
		"%s paid $%d to lift the mortgage on %s", p.Name, cost, s.Name)
	return nil
}

// sellToBank returns a property to the bank for its mortgage value, or for
// nothing when it is already mortgaged.
func (e *Engine) sellToBank(p *Player, propertyID int) error {
	s, prop, err := e.owned(p, propertyID)
	if err != nil {
		return err
	}
	if e.groupHasBuildings(s.Color) {
		return fmt.Errorf("%w: sell the buildings in the %s group first", ErrRuleViolation, s.Color)
	}
	refund := 0
	if !prop.Mortgaged {
		refund = s.MortgageValue
	}
	p.Cash += refund
	p.removeProperty(s.ID)
	e.returnToBank(prop)
	e.record("sold_to_bank", p.ID, map[string]any{"propertyId": s.ID, "amount": refund},
		"%s sold %s to the bank for $%d", p.Name, s.Name, refund)
	return nil
}
