package game

import (
	"fmt"

	"github.com/wfunc/monopoly/board"
	"github.com/wfunc/monopoly/state"
)

// Bid is one accepted raise.
type Bid struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

// Auction is the single open auction of a room, discarded when it ends.
type Auction struct {
	PropertyID int    `json:"propertyId"`
	CurrentBid int    `json:"currentBid"`
	BidderID   string `json:"bidderId,omitempty"`
	Bids       []Bid  `json:"bids"`
}

func (a *Auction) clone() *Auction {
	c := *a
	c.Bids = append([]Bid(nil), a.Bids...)
	return &c
}

// withdraw drops the standing bid of playerID and falls back to the best
// earlier bid from a player that is still active.
func (a *Auction) withdraw(playerID string, active func(string) bool) {
	a.CurrentBid = 0
	a.BidderID = ""
	for i := len(a.Bids) - 1; i >= 0; i-- {
		b := a.Bids[i]
		if b.PlayerID != playerID && active(b.PlayerID) {
			a.CurrentBid = b.Amount
			a.BidderID = b.PlayerID
			return
		}
	}
}

func (e *Engine) buy(p *Player, propertyID int) error {
	if !e.phase.Is(state.PhaseBuying) {
		return fmt.Errorf("%w: nothing to buy right now", ErrWrongPhase)
	}
	if propertyID != p.Position {
		return fmt.Errorf("%w: you can only buy the space you are standing on", ErrRuleViolation)
	}
	s := board.MustGet(propertyID)
	prop := e.properties[propertyID]
	if prop == nil || prop.OwnerID != "" {
		return fmt.Errorf("%w: %s is not for sale", ErrRuleViolation, s.Name)
	}
	if p.Cash < s.Price {
		return fmt.Errorf("%w: %s costs $%d", ErrInsufficientFunds, s.Name, s.Price)
	}
	p.Cash -= s.Price
	prop.OwnerID = p.ID
	p.addProperty(propertyID)
	e.setPhase(state.PhaseRolling)
	e.record("property_bought", p.ID, map[string]any{"propertyId": propertyID, "price": s.Price},
		"%s bought %s for $%d", p.Name, s.Name, s.Price)
	return nil
}

func (e *Engine) decline(p *Player) error {
	if !e.phase.Is(state.PhaseBuying) {
		return fmt.Errorf("%w: nothing to decline", ErrWrongPhase)
	}
	s := board.MustGet(p.Position)
	if !e.settings.AuctionEnabled {
		e.setPhase(state.PhaseRolling)
		e.record("property_declined", p.ID, map[string]any{"propertyId": s.ID}, "%s passed on %s", p.Name, s.Name)
		return nil
	}
	e.auction = &Auction{PropertyID: s.ID}
	e.setPhase(state.PhaseAuction)
	e.record("auction_started", p.ID, map[string]any{"propertyId": s.ID}, "%s goes up for auction", s.Name)
	return nil
}

func (e *Engine) placeBid(p *Player, amount int) error {
	if !e.phase.Is(state.PhaseAuction) || e.auction == nil {
		return fmt.Errorf("%w: no auction is running", ErrWrongPhase)
	}
	if amount <= e.auction.CurrentBid {
		return fmt.Errorf("%w: bid must exceed $%d", ErrRuleViolation, e.auction.CurrentBid)
	}
	if amount > p.Cash {
		return fmt.Errorf("%w: you only have $%d", ErrInsufficientFunds, p.Cash)
	}
	e.auction.CurrentBid = amount
	e.auction.BidderID = p.ID
	e.auction.Bids = append(e.auction.Bids, Bid{PlayerID: p.ID, Amount: amount})
	e.record("bid_placed", p.ID, map[string]any{"amount": amount}, "%s bid $%d", p.Name, amount)
	return nil
}

// endAuction may be called by the host or the player whose turn it is.
func (e *Engine) endAuction(p *Player) error {
	if !e.phase.Is(state.PhaseAuction) || e.auction == nil {
		return fmt.Errorf("%w: no auction is running", ErrWrongPhase)
	}
	if p.ID != e.hostID && p != e.currentPlayer() {
		return fmt.Errorf("%w: only the host or the current player can end the auction", ErrRuleViolation)
	}
	e.settleAuction(p)
	return nil
}

// settleAuction hands the property to the standing high bidder, if they can
// still pay, and returns the table to rolling.
func (e *Engine) settleAuction(p *Player) {
	a := e.auction
	s := board.MustGet(a.PropertyID)
	winner := e.player(a.BidderID)
	switch {
	case winner == nil:
		e.record("auction_ended", p.ID, map[string]any{"propertyId": s.ID}, "no bids, %s stays with the bank", s.Name)
	case winner.Cash < a.CurrentBid:
		e.record("auction_ended", p.ID, map[string]any{"propertyId": s.ID},
			"%s can no longer cover $%d, %s stays with the bank", winner.Name, a.CurrentBid, s.Name)
	default:
		winner.Cash -= a.CurrentBid
		e.properties[s.ID].OwnerID = winner.ID
		winner.addProperty(s.ID)
		e.record("auction_ended", winner.ID, map[string]any{"propertyId": s.ID, "amount": a.CurrentBid},
			"%s won %s for $%d", winner.Name, s.Name, a.CurrentBid)
	}
	e.setPhase(state.PhaseRolling)
}
