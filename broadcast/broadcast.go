// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/monopoly/logger"
	"github.com/wfunc/monopoly/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// 广播接口
type Broadcaster interface {
	Send(connID string, msgID uint16, data []byte) error
	Broadcast(connIDs []string, msgID uint16, data []byte) error
	BroadcastToAll(msgID uint16, data []byte) error
}

// SessionBroadcaster delivers frames to live sessions by connection id.
type SessionBroadcaster struct {
	sessionManager *session.Manager
}

func NewSessionBroadcaster(sessionManager *session.Manager) *SessionBroadcaster {
	return &SessionBroadcaster{sessionManager: sessionManager}
}

func (b *SessionBroadcaster) Send(connID string, msgID uint16, data []byte) error {
	s, ok := b.sessionManager.Get(connID)
	if !ok {
		return ErrSessionNotFound
	}
	return s.Send(msgID, data)
}

// Broadcast sends to every listed connection. A failed or vanished
// connection does not stop delivery to the others; the reader loop of that
// connection notices and reports the disconnect.
func (b *SessionBroadcaster) Broadcast(connIDs []string, msgID uint16, data []byte) error {
	var errs []error
	for _, id := range connIDs {
		if err := b.Send(id, msgID, data); err != nil {
			logger.Log.Debugf("broadcast %d to %s failed: %v", msgID, id, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *SessionBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	var errs []error
	for _, s := range b.sessionManager.All() {
		if err := s.Send(msgID, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
