package game

import (
	"fmt"

	"github.com/wfunc/monopoly/state"
)

// charge moves amount from p to creditor, or to the bank when creditor is
// nil. When p cannot cover it the debt bankrupts p and charge reports false.
func (e *Engine) charge(p, creditor *Player, amount int, reason string) bool {
	if amount <= 0 {
		return true
	}
	if p.Cash >= amount {
		p.Cash -= amount
		if creditor != nil {
			creditor.Cash += amount
		}
		return true
	}
	e.record("debt", p.ID, map[string]any{"amount": amount, "reason": reason}, "%s cannot pay $%d for %s", p.Name, amount, reason)
	e.bankrupt(p, creditor, amount)
	return false
}

// bankrupt settles p's estate. A creditor inherits every dollar, property
// (buildings and mortgages intact) and jail card. Without one the bank takes
// the properties back after liquidating buildings and clearing mortgages.
func (e *Engine) bankrupt(p, creditor *Player, owed int) {
	if p.Bankrupt {
		return
	}
	if creditor != nil {
		creditor.Cash += max(p.Cash, 0)
		for _, id := range p.Properties {
			e.properties[id].OwnerID = creditor.ID
			creditor.addProperty(id)
		}
		creditor.JailCards += p.JailCards
		e.record("bankrupt", p.ID, map[string]any{"creditor": creditor.ID, "owed": owed},
			"%s is bankrupt, %s takes everything", p.Name, creditor.Name)
	} else {
		for _, id := range p.Properties {
			e.returnToBank(e.properties[id])
		}
		e.record("bankrupt", p.ID, map[string]any{"owed": owed}, "%s is bankrupt, the bank takes everything", p.Name)
	}

	p.Cash = 0
	p.Properties = nil
	p.JailCards = 0
	p.InJail = false
	p.JailTurns = 0
	p.Bankrupt = true

	e.dropTradesOf(p)
	if e.auction != nil && e.auction.BidderID == p.ID {
		e.auction.withdraw(p.ID, e.isActive)
	}

	if e.activeCount() <= 1 {
		e.finish()
		return
	}
	if e.currentPlayer() == p {
		switch {
		case e.phase.Is(state.PhaseAuction):
			// a standing bid from another player still wins
			e.settleAuction(p)
		case e.phase.Is(state.PhaseBuying):
			e.setPhase(state.PhaseRolling)
		}
		e.advanceTurn()
		e.record("turn_passed", p.ID, map[string]any{"next": e.currentPlayer().ID}, "%s is up", e.currentPlayer().Name)
	}
}

// returnToBank strips a property back to the unowned pool. Buildings go back
// to the bank inventory without a refund.
func (e *Engine) returnToBank(prop *Property) {
	if !e.settings.UnlimitedBuilding {
		if prop.Hotel {
			e.hotels++
		}
		e.houses += prop.Houses
	}
	prop.OwnerID = ""
	prop.Houses = 0
	prop.Hotel = false
	prop.Mortgaged = false
}

func (e *Engine) isActive(id string) bool {
	p := e.player(id)
	return p != nil && !p.Bankrupt
}

func (e *Engine) finish() {
	for i, p := range e.players {
		if !p.Bankrupt {
			e.winnerID = p.ID
			e.current = i
			break
		}
	}
	e.auction = nil
	e.setPhase(state.PhaseEnded)
	if w := e.player(e.winnerID); w != nil {
		e.record("game_over", w.ID, nil, "%s wins the game", w.Name)
	}
}

// Forfeit removes a departed player from play by bankrupting them to the bank.
func (e *Engine) Forfeit(id string) error {
	if !e.Started() {
		return fmt.Errorf("%w: game has not started", ErrWrongPhase)
	}
	if e.Ended() {
		return ErrGameOver
	}
	p := e.player(id)
	if p == nil {
		return fmt.Errorf("%w: player %s", ErrNotFound, id)
	}
	if p.Bankrupt {
		return nil
	}
	e.record("forfeit", p.ID, nil, "%s left the table", p.Name)
	e.bankrupt(p, nil, 0)
	return nil
}
