package game

import "math/rand/v2"

// Dice produces one die face in 1..6 per call.
type Dice interface {
	Roll() int
}

type randomDice struct {
	rng *rand.Rand
}

func (d randomDice) Roll() int {
	return d.rng.IntN(6) + 1
}

// SpeedFace is the outcome of the optional third die.
type SpeedFace string

const (
	SpeedBus        SpeedFace = "bus"
	SpeedMrMonopoly SpeedFace = "mr_monopoly"
)

func speedFace(n int) (SpeedFace, int) {
	switch n {
	case 1, 2, 3:
		return "", n
	case 4:
		return SpeedBus, 0
	default:
		return SpeedMrMonopoly, 0
	}
}

// DiceRoll is the last roll taken in the game.
type DiceRoll struct {
	Die1    int       `json:"die1"`
	Die2    int       `json:"die2"`
	Speed   int       `json:"speed,omitempty"`
	Face    SpeedFace `json:"speedFace,omitempty"`
	Sum     int       `json:"sum"`
	Move    int       `json:"move"`
	Doubles bool      `json:"doubles"`
}

func (e *Engine) rollDice() DiceRoll {
	r := DiceRoll{Die1: e.dice.Roll(), Die2: e.dice.Roll()}
	r.Sum = r.Die1 + r.Die2
	r.Doubles = r.Die1 == r.Die2
	r.Move = r.Sum
	if !e.settings.SpeedDie {
		return r
	}
	r.Face, r.Speed = speedFace(e.dice.Roll())
	switch r.Face {
	case SpeedBus:
		// The bus lets a player move by either die; we always take the higher one.
		r.Move = max(r.Die1, r.Die2)
	case "":
		r.Move += r.Speed
	}
	return r
}
