package game

import "errors"

// Precondition and not-found failures. Callers wrap them with detail using
// fmt.Errorf("%w: ...") so errors.Is keeps working across the room layer.
var (
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrWrongPhase        = errors.New("action not allowed in this phase")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotOwner          = errors.New("you do not own this property")
	ErrRuleViolation     = errors.New("rule violation")
	ErrNotFound          = errors.New("not found")
	ErrGameOver          = errors.New("game is already finished")
	ErrInvalidCommand    = errors.New("invalid command")
	ErrBankrupt          = errors.New("player is bankrupt")
	ErrInvalidSettings   = errors.New("invalid settings")
)
