package room

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrGameStarted      = errors.New("game already started")
	ErrNotHost          = errors.New("only the host can do that")
	ErrUnknownSession   = errors.New("unknown session")
	ErrNotInRoom        = errors.New("player is not in this room")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrRateLimited      = errors.New("slow down")
	ErrKickSelf         = errors.New("you cannot kick yourself")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrMessageTooLong   = errors.New("message is too long")
	ErrInternal         = errors.New("internal error")
)
