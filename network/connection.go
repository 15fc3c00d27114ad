// network/connection.go
package network

import (
	"encoding/binary"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// HeaderSize is the frame header: 2 bytes message id + 4 bytes body length.
const HeaderSize = 6

var ErrShortFrame = errors.New("frame shorter than its header")

type Packet struct {
	MsgID  uint16
	Data   []byte
	Length uint32
}

type Connection interface {
	Send(msgID uint16, data []byte) error
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
	ReadPacket() (*Packet, error)
}

// Encode frames data behind a big endian header.
func Encode(msgID uint16, data []byte) []byte {
	frame := make([]byte, HeaderSize+len(data))
	binary.BigEndian.PutUint16(frame[0:2], msgID)
	binary.BigEndian.PutUint32(frame[2:6], uint32(len(data)))
	copy(frame[HeaderSize:], data)
	return frame
}

// Decode splits one frame. Trailing bytes beyond the declared length are ignored.
func Decode(frame []byte) (*Packet, error) {
	if len(frame) < HeaderSize {
		return nil, ErrShortFrame
	}
	msgID := binary.BigEndian.Uint16(frame[0:2])
	length := binary.BigEndian.Uint32(frame[2:6])
	if uint64(len(frame)) < HeaderSize+uint64(length) {
		return nil, ErrShortFrame
	}
	return &Packet{
		MsgID:  msgID,
		Length: length,
		Data:   frame[HeaderSize : HeaderSize+int(length)],
	}, nil
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

func (c *WSConnection) Send(msgID uint16, data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if c.heartbeat > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.heartbeat))
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, Encode(msgID, data))
}

func (c *WSConnection) ReadPacket() (*Packet, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if c.heartbeat > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.heartbeat * 2))
	}
	return Decode(data)
}

// SetHeartbeat sets the idle timeout: a connection that sends nothing for two
// intervals is dropped.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
