package network

import "encoding/json"

// Client requests.
const (
	MsgTypeHeartbeat      = 1
	MsgTypeJoinRoom       = 101
	MsgTypeLeaveRoom      = 102
	MsgTypeCreateRoom     = 103
	MsgTypeQuickPlay      = 104
	MsgTypeListRooms      = 105
	MsgTypeUpdateSettings = 106
	MsgTypeStartGame      = 107
	MsgTypeKickPlayer     = 108
	MsgTypeChat           = 109
	MsgTypeGameAction     = 201
)

// Server pushes.
const (
	MsgTypeResult     = 300
	MsgTypeRoomState  = 301
	MsgTypeChatPush   = 302
	MsgTypeRoomClosed = 303
	MsgTypeKicked     = 304
)

// Request is the common header of every client message; the rest of the
// body depends on the message id.
type Request struct {
	RequestID string `json:"requestId"`
	RoomID    string `json:"roomId"`
}

type JoinRequest struct {
	Request
	Name  string `json:"name"`
	Token string `json:"token"`
}

type CreateRequest struct {
	Request
	Name     string          `json:"name"`
	Settings json.RawMessage `json:"settings"`
}

type QuickPlayRequest struct {
	Request
	Name     string          `json:"name"`
	Settings json.RawMessage `json:"settings"`
}

type SettingsRequest struct {
	Request
	Settings json.RawMessage `json:"settings"`
}

type KickRequest struct {
	Request
	PlayerID string `json:"playerId"`
}

type ChatRequest struct {
	Request
	Text string `json:"text"`
}

type ActionRequest struct {
	Request
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// Result answers exactly one request, and only to its sender.
type Result struct {
	RequestID string `json:"requestId"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func Success(requestID string, data any) Result {
	return Result{RequestID: requestID, OK: true, Data: data}
}

func Failure(requestID string, err error) Result {
	return Result{RequestID: requestID, Error: err.Error()}
}
