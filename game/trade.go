package game

import (
	"fmt"

	"github.com/wfunc/monopoly/board"
)

type TradeStatus string

const (
	TradePending  TradeStatus = "pending"
	TradeAccepted TradeStatus = "accepted"
	TradeRejected TradeStatus = "rejected"
)

// Bundle is one side of a trade.
type Bundle struct {
	Cash       int   `json:"cash"`
	Properties []int `json:"properties"`
	JailCards  int   `json:"jailCards"`
}

func (b Bundle) clone() Bundle {
	b.Properties = append([]int(nil), b.Properties...)
	return b
}

// Trade is an offer from FromID to ToID. Resolved trades stay in history
// and never change again.
type Trade struct {
	ID         string      `json:"id"`
	FromID     string      `json:"fromId"`
	ToID       string      `json:"toId"`
	Offer      Bundle      `json:"offer"`
	Request    Bundle      `json:"request"`
	Status     TradeStatus `json:"status"`
	CreatedAt  int64       `json:"createdAt"`
	ResolvedAt int64       `json:"resolvedAt,omitempty"`
}

func (t *Trade) clone() Trade {
	c := *t
	c.Offer = t.Offer.clone()
	c.Request = t.Request.clone()
	return c
}

// Trades returns every trade proposed in this game, oldest first.
func (e *Engine) Trades() []Trade {
	out := make([]Trade, 0, len(e.trades))
	for _, t := range e.trades {
		out = append(out, t.clone())
	}
	return out
}

// checkBundle verifies that p could hand over b right now.
func (e *Engine) checkBundle(p *Player, b Bundle) error {
	if b.Cash < 0 || b.JailCards < 0 {
		return fmt.Errorf("%w: trade amounts cannot be negative", ErrInvalidCommand)
	}
	if p.Cash < b.Cash {
		return fmt.Errorf("%w: %s cannot cover $%d", ErrInsufficientFunds, p.Name, b.Cash)
	}
	if p.JailCards < b.JailCards {
		return fmt.Errorf("%w: %s holds only %d jail cards", ErrRuleViolation, p.Name, p.JailCards)
	}
	seen := make(map[int]bool, len(b.Properties))
	for _, id := range b.Properties {
		if seen[id] {
			return fmt.Errorf("%w: property %d listed twice", ErrInvalidCommand, id)
		}
		seen[id] = true
		s, err := board.Get(id)
		if err != nil || !s.Ownable() {
			return fmt.Errorf("%w: property %d", ErrNotFound, id)
		}
		if e.properties[id].OwnerID != p.ID {
			return fmt.Errorf("%w: %s does not own %s", ErrNotOwner, p.Name, s.Name)
		}
		if e.groupHasBuildings(s.Color) {
			return fmt.Errorf("%w: sell the buildings in the %s group before trading %s", ErrRuleViolation, s.Color, s.Name)
		}
	}
	return nil
}

func (e *Engine) proposeTrade(p *Player, toID string, offer, request Bundle) (*Trade, error) {
	to := e.player(toID)
	if to == nil {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, toID)
	}
	if to == p {
		return nil, fmt.Errorf("%w: you cannot trade with yourself", ErrRuleViolation)
	}
	if to.Bankrupt {
		return nil, fmt.Errorf("%w: %s", ErrBankrupt, to.Name)
	}
	if err := e.checkBundle(p, offer); err != nil {
		return nil, err
	}
	// The counterpart's cash is re-checked on acceptance, only ownership matters now.
	if err := e.checkBundle(to, Bundle{Properties: request.Properties, JailCards: request.JailCards}); err != nil {
		return nil, err
	}
	if request.Cash < 0 {
		return nil, fmt.Errorf("%w: trade amounts cannot be negative", ErrInvalidCommand)
	}

	t := &Trade{
		ID:        e.newID(),
		FromID:    p.ID,
		ToID:      to.ID,
		Offer:     offer.clone(),
		Request:   request.clone(),
		Status:    TradePending,
		CreatedAt: e.now().UnixMilli(),
	}
	e.trades = append(e.trades, t)
	e.record("trade_proposed", p.ID, map[string]any{"tradeId": t.ID, "to": to.ID},
		"%s proposed a trade to %s", p.Name, to.Name)
	return t, nil
}

func (e *Engine) pendingTrade(id string) (*Trade, error) {
	for _, t := range e.trades {
		if t.ID == id {
			if t.Status != TradePending {
				return nil, fmt.Errorf("%w: trade is already %s", ErrRuleViolation, t.Status)
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: trade %s", ErrNotFound, id)
}

// acceptTrade re-validates both bundles against current balances and then
// swaps everything at once. On failure nothing moves and the trade stays
// pending.
func (e *Engine) acceptTrade(p *Player, tradeID string) error {
	t, err := e.pendingTrade(tradeID)
	if err != nil {
		return err
	}
	if t.ToID != p.ID {
		return fmt.Errorf("%w: only the recipient can accept a trade", ErrRuleViolation)
	}
	from := e.player(t.FromID)
	if from == nil || from.Bankrupt {
		return fmt.Errorf("%w: the proposer is no longer playing", ErrBankrupt)
	}
	if err := e.checkBundle(from, t.Offer); err != nil {
		return err
	}
	if err := e.checkBundle(p, t.Request); err != nil {
		return err
	}

	e.transfer(from, p, t.Offer)
	e.transfer(p, from, t.Request)
	t.Status = TradeAccepted
	t.ResolvedAt = e.now().UnixMilli()
	e.record("trade_accepted", p.ID, map[string]any{"tradeId": t.ID}, "%s accepted the trade from %s", p.Name, from.Name)
	return nil
}

// rejectTrade may be issued by either party.
func (e *Engine) rejectTrade(p *Player, tradeID string) error {
	t, err := e.pendingTrade(tradeID)
	if err != nil {
		return err
	}
	if t.ToID != p.ID && t.FromID != p.ID {
		return fmt.Errorf("%w: this trade does not involve you", ErrRuleViolation)
	}
	t.Status = TradeRejected
	t.ResolvedAt = e.now().UnixMilli()
	e.record("trade_rejected", p.ID, map[string]any{"tradeId": t.ID}, "%s rejected a trade", p.Name)
	return nil
}

func (e *Engine) transfer(from, to *Player, b Bundle) {
	from.Cash -= b.Cash
	to.Cash += b.Cash
	from.JailCards -= b.JailCards
	to.JailCards += b.JailCards
	for _, id := range b.Properties {
		from.removeProperty(id)
		to.addProperty(id)
		e.properties[id].OwnerID = to.ID
	}
}

// dropTradesOf rejects every pending trade involving p.
func (e *Engine) dropTradesOf(p *Player) {
	for _, t := range e.trades {
		if t.Status == TradePending && (t.FromID == p.ID || t.ToID == p.ID) {
			t.Status = TradeRejected
			t.ResolvedAt = e.now().UnixMilli()
		}
	}
}
