package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/wfunc/monopoly/board"
)

// deck cycles its cards: a drawn card goes back to the bottom, so the order
// repeats with a period equal to the deck size.
type deck struct {
	cards []board.Card
}

func newDeck(cards []board.Card) *deck {
	return &deck{cards: append([]board.Card(nil), cards...)}
}

func (d *deck) shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

func (d *deck) draw() board.Card {
	c := d.cards[0]
	d.cards = append(d.cards[1:], c)
	return c
}

func (e *Engine) drawCard(p *Player, d *deck) {
	card := d.draw()
	e.lastCard = &card
	e.record("card_drawn", p.ID, map[string]any{"deck": string(card.Deck), "text": card.Text}, "%s drew: %s", p.Name, card.Text)
	e.applyCard(p, card)
}

func (e *Engine) applyCard(p *Player, card board.Card) {
	switch eff := card.Effect.(type) {
	case board.MoveTo:
		e.moveTo(p, eff.Space)
		e.land(p, rentNormal)
	case board.MoveBy:
		e.advance(p, eff.Steps)
		e.land(p, rentNormal)
	case board.MoveToNearest:
		e.moveTo(p, board.NextOfType(p.Position, eff.Kind))
		mode := rentCardRailroad
		if eff.Kind == board.TypeUtility {
			mode = rentCardUtility
		}
		e.land(p, mode)
	case board.CollectCash:
		p.Cash += eff.Amount
	case board.PayCash:
		e.charge(p, nil, eff.Amount, card.Text)
	case board.GrantJailCard:
		p.JailCards++
	case board.GoToJail:
		e.sendToJail(p, card.Text)
	case board.PayPerBuilding:
		houses, hotels := e.buildingsOf(p)
		if due := houses*eff.PerHouse + hotels*eff.PerHotel; due > 0 {
			e.charge(p, nil, due, "repairs")
		}
	case board.PayEachPlayer:
		e.payEachPlayer(p, eff.Amount)
	case board.CollectFromEachPlayer:
		for _, other := range e.players {
			if e.Ended() {
				break
			}
			if other != p && !other.Bankrupt && !p.Bankrupt {
				e.charge(other, p, eff.Amount, card.Text)
			}
		}
	default:
		panic(fmt.Sprintf("game: unhandled card effect %T", card.Effect))
	}
}

// payEachPlayer pays every other active player. A payer who cannot cover the
// whole amount goes bankrupt to the bank rather than to one of them.
func (e *Engine) payEachPlayer(p *Player, amount int) {
	var others []*Player
	for _, other := range e.players {
		if other != p && !other.Bankrupt {
			others = append(others, other)
		}
	}
	total := amount * len(others)
	if p.Cash < total {
		e.bankrupt(p, nil, total)
		return
	}
	for _, other := range others {
		p.Cash -= amount
		other.Cash += amount
	}
}

func (e *Engine) buildingsOf(p *Player) (houses, hotels int) {
	for _, id := range p.Properties {
		prop := e.properties[id]
		if prop.Hotel {
			hotels++
		} else {
			houses += prop.Houses
		}
	}
	return houses, hotels
}
