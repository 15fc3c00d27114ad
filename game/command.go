package game

import (
	"encoding/json"
	"fmt"
)

// Command is the closed set of player actions understood by Apply.
type Command interface {
	Name() string
	// needsTurn reports whether only the current player may issue it.
	needsTurn() bool
}

type (
	RollDice        struct{}
	DeclineProperty struct{}
	EndAuction      struct{}
	PayJailFee      struct{}
	UseJailCard     struct{}
	EndTurn         struct{}

	BuyProperty struct {
		PropertyID int `json:"propertyId"`
	}
	BuildHouse struct {
		PropertyID int `json:"propertyId"`
	}
	BuildHotel struct {
		PropertyID int `json:"propertyId"`
	}
	SellHouse struct {
		PropertyID int `json:"propertyId"`
	}
	SellHotel struct {
		PropertyID int `json:"propertyId"`
	}
	Mortgage struct {
		PropertyID int `json:"propertyId"`
	}
	Unmortgage struct {
		PropertyID int `json:"propertyId"`
	}
	SellToBank struct {
		PropertyID int `json:"propertyId"`
	}
	PlaceBid struct {
		Amount int `json:"amount"`
	}
	ProposeTrade struct {
		ToPlayerID string `json:"toPlayerId"`
		Offer      Bundle `json:"offer"`
		Request    Bundle `json:"request"`
	}
	AcceptTrade struct {
		TradeID string `json:"tradeId"`
	}
	RejectTrade struct {
		TradeID string `json:"tradeId"`
	}
)

func (RollDice) Name() string        { return "rollDice" }
func (BuyProperty) Name() string     { return "buyProperty" }
func (DeclineProperty) Name() string { return "declineProperty" }
func (BuildHouse) Name() string      { return "buildHouse" }
func (BuildHotel) Name() string      { return "buildHotel" }
func (SellHouse) Name() string       { return "sellHouse" }
func (SellHotel) Name() string       { return "sellHotel" }
func (Mortgage) Name() string        { return "mortgage" }
func (Unmortgage) Name() string      { return "unmortgage" }
func (SellToBank) Name() string      { return "sellToBank" }
func (PlaceBid) Name() string        { return "placeBid" }
func (EndAuction) Name() string      { return "endAuction" }
func (ProposeTrade) Name() string    { return "proposeTrade" }
func (AcceptTrade) Name() string     { return "acceptTrade" }
func (RejectTrade) Name() string     { return "rejectTrade" }
func (PayJailFee) Name() string      { return "payJailFee" }
func (UseJailCard) Name() string     { return "useJailCard" }
func (EndTurn) Name() string         { return "endTurn" }

func (RollDice) needsTurn() bool        { return true }
func (BuyProperty) needsTurn() bool     { return true }
func (DeclineProperty) needsTurn() bool { return true }
func (EndTurn) needsTurn() bool         { return true }
func (BuildHouse) needsTurn() bool      { return false }
func (BuildHotel) needsTurn() bool      { return false }
func (SellHouse) needsTurn() bool       { return false }
func (SellHotel) needsTurn() bool       { return false }
func (Mortgage) needsTurn() bool        { return false }
func (Unmortgage) needsTurn() bool      { return false }
func (SellToBank) needsTurn() bool      { return false }
func (PlaceBid) needsTurn() bool        { return false }
func (EndAuction) needsTurn() bool      { return false }
func (ProposeTrade) needsTurn() bool    { return false }
func (AcceptTrade) needsTurn() bool     { return false }
func (RejectTrade) needsTurn() bool     { return false }
func (PayJailFee) needsTurn() bool      { return false }
func (UseJailCard) needsTurn() bool     { return false }

// Apply runs cmd on behalf of actorID. A returned error means nothing changed.
func (e *Engine) Apply(actorID string, cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: empty command", ErrInvalidCommand)
	}
	if e.Ended() {
		return ErrGameOver
	}
	if !e.Started() {
		return fmt.Errorf("%w: the game has not started", ErrWrongPhase)
	}
	p := e.player(actorID)
	if p == nil {
		return fmt.Errorf("%w: player %s", ErrNotFound, actorID)
	}
	if p.Bankrupt {
		return ErrBankrupt
	}
	if cmd.needsTurn() && e.currentPlayer() != p {
		return ErrNotYourTurn
	}

	switch c := cmd.(type) {
	case RollDice:
		return e.roll(p)
	case BuyProperty:
		return e.buy(p, c.PropertyID)
	case DeclineProperty:
		return e.decline(p)
	case BuildHouse:
		return e.buildHouse(p, c.PropertyID)
	case BuildHotel:
		return e.buildHotel(p, c.PropertyID)
	case SellHouse:
		return e.sellHouse(p, c.PropertyID)
	case SellHotel:
		return e.sellHotel(p, c.PropertyID)
	case Mortgage:
		return e.mortgage(p, c.PropertyID)
	case Unmortgage:
		return e.unmortgage(p, c.PropertyID)
	case SellToBank:
		return e.sellToBank(p, c.PropertyID)
	case PlaceBid:
		return e.placeBid(p, c.Amount)
	case EndAuction:
		return e.endAuction(p)
	case ProposeTrade:
		_, err := e.proposeTrade(p, c.ToPlayerID, c.Offer, c.Request)
		return err
	case AcceptTrade:
		return e.acceptTrade(p, c.TradeID)
	case RejectTrade:
		return e.rejectTrade(p, c.TradeID)
	case PayJailFee:
		return e.payJailFee(p)
	case UseJailCard:
		return e.useJailCard(p)
	case EndTurn:
		return e.endTurn(p)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidCommand, cmd.Name())
	}
}

type decoder func(json.RawMessage) (Command, error)

func decodeInto[T Command]() decoder {
	return func(raw json.RawMessage) (Command, error) {
		var c T
		if len(raw) == 0 || string(raw) == "null" {
			return c, nil
		}
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCommand, c.Name(), err)
		}
		return c, nil
	}
}

var decoders = map[string]decoder{
	RollDice{}.Name():        decodeInto[RollDice](),
	BuyProperty{}.Name():     decodeInto[BuyProperty](),
	DeclineProperty{}.Name(): decodeInto[DeclineProperty](),
	BuildHouse{}.Name():      decodeInto[BuildHouse](),
	BuildHotel{}.Name():      decodeInto[BuildHotel](),
	SellHouse{}.Name():       decodeInto[SellHouse](),
	SellHotel{}.Name():       decodeInto[SellHotel](),
	Mortgage{}.Name():        decodeInto[Mortgage](),
	Unmortgage{}.Name():      decodeInto[Unmortgage](),
	SellToBank{}.Name():      decodeInto[SellToBank](),
	PlaceBid{}.Name():        decodeInto[PlaceBid](),
	EndAuction{}.Name():      decodeInto[EndAuction](),
	ProposeTrade{}.Name():    decodeInto[ProposeTrade](),
	AcceptTrade{}.Name():     decodeInto[AcceptTrade](),
	RejectTrade{}.Name():     decodeInto[RejectTrade](),
	PayJailFee{}.Name():      decodeInto[PayJailFee](),
	UseJailCard{}.Name():     decodeInto[UseJailCard](),
	EndTurn{}.Name():         decodeInto[EndTurn](),
}

// DecodeCommand maps a wire action name and its JSON payload onto a Command.
func DecodeCommand(name string, payload json.RawMessage) (Command, error) {
	d, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, name)
	}
	return d(payload)
}

// CommandNames lists every action DecodeCommand accepts.
func CommandNames() []string {
	names := make([]string, 0, len(decoders))
	for n := range decoders {
		names = append(names, n)
	}
	return names
}
