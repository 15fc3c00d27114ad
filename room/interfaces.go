package room

import (
	"context"
	"time"
)

// Broadcaster delivers frames to connections by id. It is defined here to
// break the import cycle between room and broadcast.
type Broadcaster interface {
	Send(connID string, msgID uint16, data []byte) error
	Broadcast(connIDs []string, msgID uint16, data []byte) error
}

// Scheduler runs delayed callbacks; timer.TimerManager implements it.
type Scheduler interface {
	AddTimer(delay time.Duration, callback func()) int64
	RemoveTimer(timerID int64) bool
}

// Recorder archives the outcome of a finished game.
type Recorder interface {
	RecordGame(ctx context.Context, result GameResult) error
}
