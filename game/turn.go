package game

import (
	"fmt"

	"github.com/wfunc/monopoly/board"
	"github.com/wfunc/monopoly/state"
)

// rentMode alters rent for landings caused by "advance to nearest" cards.
type rentMode int

const (
	rentNormal rentMode = iota
	rentCardRailroad
	rentCardUtility
)

func (e *Engine) roll(p *Player) error {
	if !e.phase.Is(state.PhaseRolling) {
		return fmt.Errorf("%w: cannot roll during %s", ErrWrongPhase, e.phase.Current())
	}
	if e.hasRolled && e.doublesCount == 0 {
		return fmt.Errorf("%w: you have already rolled this turn", ErrRuleViolation)
	}

	r := e.rollDice()
	e.lastRoll = &r
	e.hasRolled = true
	e.record("dice_rolled", p.ID, map[string]any{"die1": r.Die1, "die2": r.Die2, "speed": string(r.Face)},
		"%s rolled %d and %d", p.Name, r.Die1, r.Die2)

	if p.InJail {
		e.rollInJail(p, r)
		return nil
	}

	if r.Doubles {
		e.doublesCount++
		if e.doublesCount >= 3 {
			e.sendToJail(p, "rolled three doubles in a row")
			return nil
		}
	} else {
		e.doublesCount = 0
	}

	e.advance(p, r.Move)
	e.land(p, rentNormal)

	if r.Face == SpeedMrMonopoly && e.phase.Is(state.PhaseRolling) && !p.Bankrupt && !p.InJail && e.currentPlayer() == p {
		e.mrMonopoly(p)
	}
	return nil
}

func (e *Engine) rollInJail(p *Player, r DiceRoll) {
	e.doublesCount = 0
	if r.Doubles {
		p.InJail = false
		p.JailTurns = 0
		e.record("jail_released", p.ID, nil, "%s rolled doubles and leaves jail", p.Name)
		e.advance(p, r.Sum)
		e.land(p, rentNormal)
		return
	}

	p.JailTurns++
	if p.JailTurns < board.MaxJailTurns {
		e.record("jail_stay", p.ID, map[string]any{"attempt": p.JailTurns}, "%s stays in jail", p.Name)
		return
	}

	if !e.charge(p, nil, board.JailFee, "jail fee") {
		return
	}
	p.InJail = false
	p.JailTurns = 0
	e.record("jail_released", p.ID, nil, "%s paid $%d after three failed attempts", p.Name, board.JailFee)
	e.advance(p, r.Sum)
	e.land(p, rentNormal)
}

func (e *Engine) payJailFee(p *Player) error {
	if !p.InJail {
		return fmt.Errorf("%w: you are not in jail", ErrRuleViolation)
	}
	if p.Cash < board.JailFee {
		return fmt.Errorf("%w: the jail fee is $%d", ErrInsufficientFunds, board.JailFee)
	}
	p.Cash -= board.JailFee
	p.InJail = false
	p.JailTurns = 0
	e.record("jail_fee_paid", p.ID, nil, "%s paid $%d to leave jail", p.Name, board.JailFee)
	return nil
}

func (e *Engine) useJailCard(p *Player) error {
	if !p.InJail {
		return fmt.Errorf("%w: you are not in jail", ErrRuleViolation)
	}
	if p.JailCards == 0 {
		return fmt.Errorf("%w: you have no get out of jail free card", ErrRuleViolation)
	}
	p.JailCards--
	p.InJail = false
	p.JailTurns = 0
	e.record("jail_card_used", p.ID, nil, "%s used a get out of jail free card", p.Name)
	return nil
}

// advance moves p by steps. Forward moves that reach or pass GO pay the salary.
func (e *Engine) advance(p *Player, steps int) {
	if steps > 0 && p.Position+steps >= board.Size {
		p.Cash += board.GoSalary
		e.record("passed_go", p.ID, nil, "%s collected $%d for passing GO", p.Name, board.GoSalary)
	}
	p.Position = ((p.Position+steps)%board.Size + board.Size) % board.Size
}

// moveTo advances forward to target.
func (e *Engine) moveTo(p *Player, target int) {
	steps := (target - p.Position + board.Size) % board.Size
	e.advance(p, steps)
}

func (e *Engine) sendToJail(p *Player, reason string) {
	p.Position = board.JailPosition
	p.InJail = true
	p.JailTurns = 0
	if e.currentPlayer() == p {
		e.doublesCount = 0
		e.hasRolled = true
	}
	e.record("sent_to_jail", p.ID, nil, "%s went to jail: %s", p.Name, reason)
}

// land resolves the space p stands on.
func (e *Engine) land(p *Player, mode rentMode) {
	s := board.MustGet(p.Position)
	switch s.Type {
	case board.TypeProperty, board.TypeRailroad, board.TypeUtility:
		prop := e.properties[s.ID]
		switch {
		case prop.OwnerID == "":
			e.setPhase(state.PhaseBuying)
			e.record("offer", p.ID, map[string]any{"propertyId": s.ID}, "%s may buy %s for $%d", p.Name, s.Name, s.Price)
		case prop.OwnerID != p.ID:
			owner := e.player(prop.OwnerID)
			rent := e.rentFor(s, prop, mode)
			if rent == 0 {
				return
			}
			if e.charge(p, owner, rent, "rent") {
				e.record("rent_paid", p.ID, map[string]any{"to": owner.ID, "amount": rent, "propertyId": s.ID},
					"%s paid $%d rent to %s", p.Name, rent, owner.Name)
			}
		}
	case board.TypeTax:
		if e.charge(p, nil, s.Tax, s.Name) {
			e.record("tax_paid", p.ID, map[string]any{"amount": s.Tax}, "%s paid $%d %s", p.Name, s.Tax, s.Name)
		}
	case board.TypeChance:
		e.drawCard(p, e.chance)
	case board.TypeCommunityChest:
		e.drawCard(p, e.chest)
	case board.TypeGoToJail:
		e.sendToJail(p, "landed on Go To Jail")
	}
}

// mrMonopoly moves p to the next unowned ownable space, if any remains.
func (e *Engine) mrMonopoly(p *Player) {
	for step := 1; step < board.Size; step++ {
		id := (p.Position + step) % board.Size
		if prop, ok := e.properties[id]; ok && prop.OwnerID == "" {
			e.record("mr_monopoly", p.ID, map[string]any{"to": id}, "Mr. Monopoly sends %s ahead", p.Name)
			e.advance(p, step)
			e.land(p, rentNormal)
			return
		}
	}
}
