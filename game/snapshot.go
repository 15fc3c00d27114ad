package game

import (
	"github.com/wfunc/monopoly/board"
	"github.com/wfunc/monopoly/state"
)

// Snapshot is the complete client-visible state of a game.
type Snapshot struct {
	Phase              state.Phase `json:"phase"`
	Players            []Player    `json:"players"`
	Properties         []Property  `json:"properties"`
	CurrentPlayerIndex int         `json:"currentPlayerIndex"`
	Dice               *DiceRoll   `json:"dice"`
	HasRolled          bool        `json:"hasRolled"`
	DoublesCount       int         `json:"doublesCount"`
	Auction            *Auction    `json:"auction"`
	Trades             []Trade     `json:"trades"`
	ActionLog          []LogEntry  `json:"actionLog"`
	AvailableHouses    int         `json:"availableHouses"`
	AvailableHotels    int         `json:"availableHotels"`
	HostID             string      `json:"hostId"`
	WinnerID           string      `json:"winnerId,omitempty"`
	LastCard           *board.Card `json:"lastCard,omitempty"`
	Settings           Settings    `json:"settings"`
}

// Snapshot copies the game state. logTail bounds the action log, <= 0 keeps
// all retained entries.
func (e *Engine) Snapshot(logTail int) Snapshot {
	s := Snapshot{
		Phase:              e.phase.Current(),
		Players:            make([]Player, 0, len(e.players)),
		Properties:         make([]Property, 0, len(e.properties)),
		CurrentPlayerIndex: e.current,
		HasRolled:          e.hasRolled,
		DoublesCount:       e.doublesCount,
		Trades:             e.Trades(),
		ActionLog:          e.Log(logTail),
		AvailableHouses:    e.houses,
		AvailableHotels:    e.hotels,
		HostID:             e.hostID,
		WinnerID:           e.winnerID,
		Settings:           e.settings,
	}
	for _, p := range e.players {
		s.Players = append(s.Players, p.clone())
	}
	for _, id := range board.Ownables() {
		s.Properties = append(s.Properties, *e.properties[id])
	}
	if e.lastRoll != nil {
		r := *e.lastRoll
		s.Dice = &r
	}
	if e.auction != nil {
		s.Auction = e.auction.clone()
	}
	if e.lastCard != nil {
		c := *e.lastCard
		s.LastCard = &c
	}
	return s
}
