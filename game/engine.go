// Package game is the authoritative rules engine of one room. An Engine is
// not safe for concurrent use: the room that owns it serializes every call.
// No method blocks or performs I/O.
package game

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/monopoly/board"
	"github.com/wfunc/monopoly/state"
)

const maxLogEntries = 200

// Engine holds the complete state of one game.
type Engine struct {
	settings   Settings
	phase      *state.Machine
	players    []*Player
	properties map[int]*Property
	current    int

	dice         Dice
	rng          *rand.Rand
	lastRoll     *DiceRoll
	hasRolled    bool
	doublesCount int

	auction *Auction
	trades  []*Trade

	chance      *deck
	chest       *deck
	fixedDecks  bool
	lastCard    *board.Card
	houses      int
	hotels      int
	hostID      string
	winnerID    string
	log         []LogEntry
	now         func() time.Time
	newID       func() string
	turns       int
}

type Option func(*Engine)

// WithDice replaces the random dice, mostly for tests.
func WithDice(d Dice) Option {
	return func(e *Engine) { e.dice = d }
}

// WithSeed makes deck shuffling and the default dice reproducible.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		e.dice = randomDice{rng: e.rng}
	}
}

// WithDecks fixes the order of both decks; they are not shuffled on start.
func WithDecks(chance, communityChest []board.Card) Option {
	return func(e *Engine) {
		e.chance = newDeck(chance)
		e.chest = newDeck(communityChest)
		e.fixedDecks = true
	}
}

// WithClock overrides the timestamp source of the action log.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(settings Settings, opts ...Option) *Engine {
	seed := rand.Uint64()
	rng := rand.New(rand.NewPCG(seed, seed>>1))
	e := &Engine{
		settings:   settings,
		phase:      state.NewMachine(state.PhaseWaiting),
		properties: make(map[int]*Property),
		rng:        rng,
		dice:       randomDice{rng: rng},
		chance:     newDeck(board.ChanceCards()),
		chest:      newDeck(board.CommunityChestCards()),
		houses:     board.HousePool,
		hotels:     board.HotelPool,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, id := range board.Ownables() {
		e.properties[id] = &Property{ID: id}
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registerTransitions()
	return e
}

func (e *Engine) registerTransitions() {
	enough := func() bool { return len(e.players) >= MinPlayers }
	e.phase.AddTransition(state.PhaseWaiting, state.PhaseRolling, enough)
	e.phase.AddTransition(state.PhaseRolling, state.PhaseBuying, nil)
	e.phase.AddTransition(state.PhaseBuying, state.PhaseRolling, nil)
	e.phase.AddTransition(state.PhaseBuying, state.PhaseAuction, func() bool { return e.settings.AuctionEnabled })
	e.phase.AddTransition(state.PhaseAuction, state.PhaseRolling, nil)
	for _, from := range []state.Phase{state.PhaseRolling, state.PhaseBuying, state.PhaseAuction} {
		e.phase.AddTransition(from, state.PhaseEnded, func() bool { return e.activeCount() <= 1 })
	}
	e.phase.OnEnter(state.PhaseRolling, func(from state.Phase) {
		if from == state.PhaseAuction {
			e.auction = nil
		}
	})
}

// setPhase moves the phase machine. A refused transition means the engine
// itself is inconsistent, so it panics; the room recovers and reports it.
func (e *Engine) setPhase(p state.Phase) {
	if err := e.phase.ChangeState(p); err != nil {
		panic(fmt.Sprintf("game: %v", err))
	}
}

func (e *Engine) Phase() state.Phase {
	return e.phase.Current()
}

func (e *Engine) Settings() Settings {
	return e.settings
}

func (e *Engine) Started() bool {
	return !e.phase.Is(state.PhaseWaiting)
}

func (e *Engine) Ended() bool {
	return e.phase.Is(state.PhaseEnded)
}

func (e *Engine) WinnerID() string {
	return e.winnerID
}

func (e *Engine) HostID() string {
	return e.hostID
}

func (e *Engine) SetHost(playerID string) {
	e.hostID = playerID
}

// Player returns a copy of the player's current state.
func (e *Engine) Player(id string) (Player, bool) {
	p := e.player(id)
	if p == nil {
		return Player{}, false
	}
	return p.clone(), true
}

// Property returns a copy of the record of an ownable space.
func (e *Engine) Property(id int) (Property, bool) {
	prop, ok := e.properties[id]
	if !ok {
		return Property{}, false
	}
	return *prop, true
}

func (e *Engine) CurrentPlayerID() string {
	if len(e.players) == 0 {
		return ""
	}
	return e.players[e.current].ID
}

func (e *Engine) PlayerCount() int {
	return len(e.players)
}

// SetConnected mirrors the room's connection state into snapshots.
func (e *Engine) SetConnected(id string, connected bool) {
	if p := e.player(id); p != nil {
		p.Connected = connected
	}
}

func (e *Engine) UpdateSettings(s Settings) error {
	if e.Started() {
		return fmt.Errorf("%w: settings are locked once the game starts", ErrWrongPhase)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if s.MaxPlayers < len(e.players) {
		return fmt.Errorf("%w: %d players already joined", ErrInvalidSettings, len(e.players))
	}
	e.settings = s
	return nil
}

// AddPlayer seats a new player in the lobby.
func (e *Engine) AddPlayer(id, name string) (Player, error) {
	if e.Started() {
		return Player{}, fmt.Errorf("%w: game already started", ErrWrongPhase)
	}
	if e.player(id) != nil {
		return Player{}, fmt.Errorf("%w: player %s already joined", ErrRuleViolation, id)
	}
	if len(e.players) >= e.settings.MaxPlayers {
		return Player{}, fmt.Errorf("%w: room is full", ErrRuleViolation)
	}
	p := &Player{
		ID:        id,
		Name:      name,
		Cash:      e.settings.StartingCash,
		Color:     e.freeColor(),
		Connected: true,
	}
	e.players = append(e.players, p)
	e.record("player_joined", id, nil, "%s joined the game", name)
	return p.clone(), nil
}

// RemovePlayer drops a player from the lobby. Once the game runs players are
// forfeited instead.
func (e *Engine) RemovePlayer(id string) error {
	if e.Started() {
		return fmt.Errorf("%w: players cannot leave a running game, forfeit instead", ErrWrongPhase)
	}
	for i, p := range e.players {
		if p.ID == id {
			e.players = append(e.players[:i], e.players[i+1:]...)
			e.record("player_left", id, nil, "%s left the game", p.Name)
			return nil
		}
	}
	return fmt.Errorf("%w: player %s", ErrNotFound, id)
}

// Start deals starting cash, shuffles both decks once and hands the first
// turn to the first player who joined.
func (e *Engine) Start() error {
	if e.Started() {
		return fmt.Errorf("%w: game already started", ErrWrongPhase)
	}
	if len(e.players) < MinPlayers {
		return fmt.Errorf("%w: need at least %d players", ErrRuleViolation, MinPlayers)
	}
	for _, p := range e.players {
		p.Cash = e.settings.StartingCash
	}
	if !e.fixedDecks {
		e.chance.shuffle(e.rng)
		e.chest.shuffle(e.rng)
	}
	e.current = 0
	e.setPhase(state.PhaseRolling)
	e.record("game_started", e.hostID, nil, "the game has started, %s goes first", e.players[0].Name)
	return nil
}

func (e *Engine) freeColor() string {
	used := make(map[string]bool, len(e.players))
	for _, p := range e.players {
		used[p.Color] = true
	}
	for _, c := range palette {
		if !used[c] {
			return c
		}
	}
	return palette[len(e.players)%len(palette)]
}

func (e *Engine) player(id string) *Player {
	for _, p := range e.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (e *Engine) currentPlayer() *Player {
	return e.players[e.current]
}

func (e *Engine) activeCount() int {
	n := 0
	for _, p := range e.players {
		if !p.Bankrupt {
			n++
		}
	}
	return n
}

// advanceTurn hands the turn to the next non-bankrupt player.
func (e *Engine) advanceTurn() {
	n := len(e.players)
	for i := 1; i <= n; i++ {
		idx := (e.current + i) % n
		if !e.players[idx].Bankrupt {
			e.current = idx
			break
		}
	}
	e.hasRolled = false
	e.doublesCount = 0
	e.turns++
}

func (e *Engine) endTurn(p *Player) error {
	if !e.phase.Is(state.PhaseRolling) {
		return fmt.Errorf("%w: resolve the pending %s first", ErrWrongPhase, e.phase.Current())
	}
	if !e.hasRolled {
		return fmt.Errorf("%w: you must roll before ending your turn", ErrRuleViolation)
	}
	e.advanceTurn()
	next := e.currentPlayer()
	e.record("turn_ended", p.ID, map[string]any{"next": next.ID}, "%s ended their turn, %s is up", p.Name, next.Name)
	return nil
}

// Turns counts completed turn handovers.
func (e *Engine) Turns() int {
	return e.turns
}
