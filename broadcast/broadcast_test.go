package broadcast

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/monopoly/network"
	"github.com/wfunc/monopoly/session"
)

type MockConnection struct {
	frames []uint16
	fail   bool
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	if m.fail {
		return errors.New("broken pipe")
	}
	m.frames = append(m.frames, msgID)
	return nil
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestBroadcastSkipsBrokenConnections(t *testing.T) {
	sessions := session.NewManager()
	good := &MockConnection{}
	bad := &MockConnection{fail: true}
	sessions.Add(session.NewSession("good", good))
	sessions.Add(session.NewSession("bad", bad))

	b := NewSessionBroadcaster(sessions)
	err := b.Broadcast([]string{"bad", "gone", "good"}, network.MsgTypeRoomState, []byte("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, []uint16{network.MsgTypeRoomState}, good.frames)
}

func TestBroadcastToAll(t *testing.T) {
	sessions := session.NewManager()
	c1, c2 := &MockConnection{}, &MockConnection{}
	sessions.Add(session.NewSession("1", c1))
	sessions.Add(session.NewSession("2", c2))

	require.NoError(t, NewSessionBroadcaster(sessions).BroadcastToAll(network.MsgTypeRoomClosed, nil))
	assert.Len(t, c1.frames, 1)
	assert.Len(t, c2.frames, 1)
}
