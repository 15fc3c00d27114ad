package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/monopoly/network"
)

const usage = `commands:
  create <name>            create a room and sit down
  join <room> <name>       join a room
  resume <room> <token>    take back a seat after a drop
  quick <name> [max]       quick play, max seats for a new room
  list                     list rooms
  start                    start the game (host)
  kick <playerId>          kick a player (host)
  chat <text>              say something
  leave                    leave the room
  roll | buy <id> | decline | end | bid <amount>
  act <action> [json]      any other game action, e.g. act buildHouse {"propertyId":1}`

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, body map[string]any) error {
	body["requestId"] = uuid.NewString()[:8]
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.BinaryMessage, network.Encode(msgID, data))
}

func action(name string, payload any) map[string]any {
	return map[string]any{"action": name, "payload": payload}
}

// parse turns one input line into a request.
func parse(line string) (uint16, map[string]any, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil, fmt.Errorf("empty command")
	}
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	switch fields[0] {
	case "create":
		return network.MsgTypeCreateRoom, map[string]any{"name": arg(1)}, nil
	case "join":
		return network.MsgTypeJoinRoom, map[string]any{"roomId": arg(1), "name": arg(2)}, nil
	case "resume":
		return network.MsgTypeJoinRoom, map[string]any{"roomId": arg(1), "token": arg(2)}, nil
	case "quick":
		body := map[string]any{"name": arg(1)}
		if arg(2) != "" {
			seats, err := strconv.Atoi(arg(2))
			if err != nil {
				return 0, nil, fmt.Errorf("quick takes a seat count")
			}
			body["settings"] = map[string]int{"maxPlayers": seats}
		}
		return network.MsgTypeQuickPlay, body, nil
	case "list":
		return network.MsgTypeListRooms, map[string]any{}, nil
	case "start":
		return network.MsgTypeStartGame, map[string]any{}, nil
	case "kick":
		return network.MsgTypeKickPlayer, map[string]any{"playerId": arg(1)}, nil
	case "leave":
		return network.MsgTypeLeaveRoom, map[string]any{}, nil
	case "chat":
		return network.MsgTypeChat, map[string]any{"text": strings.TrimSpace(strings.TrimPrefix(line, "chat"))}, nil
	case "roll":
		return network.MsgTypeGameAction, action("rollDice", nil), nil
	case "decline":
		return network.MsgTypeGameAction, action("declineProperty", nil), nil
	case "end":
		return network.MsgTypeGameAction, action("endTurn", nil), nil
	case "buy":
		id, err := strconv.Atoi(arg(1))
		if err != nil {
			return 0, nil, fmt.Errorf("buy needs a property id")
		}
		return network.MsgTypeGameAction, action("buyProperty", map[string]int{"propertyId": id}), nil
	case "bid":
		amount, err := strconv.Atoi(arg(1))
		if err != nil {
			return 0, nil, fmt.Errorf("bid needs an amount")
		}
		return network.MsgTypeGameAction, action("placeBid", map[string]int{"amount": amount}), nil
	case "act":
		var payload json.RawMessage
		if raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "act"), " "+arg(1))); raw != "" {
			payload = json.RawMessage(raw)
			if !json.Valid(payload) {
				return 0, nil, fmt.Errorf("payload is not valid JSON")
			}
		}
		return network.MsgTypeGameAction, action(arg(1), payload), nil
	}
	return 0, nil, fmt.Errorf("unknown command %q", fields[0])
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			p, err := network.Decode(message)
			if err != nil {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			log.Printf("<- RECV (ID: %d): %s", p.MsgID, string(p.Data))
		}
	}()

	lines := make(chan string)
	go func() {
		reader := bufio.NewScanner(os.Stdin)
		for reader.Scan() {
			lines <- reader.Text()
		}
		close(lines)
	}()

	heartbeat := time.NewTicker(10 * time.Second)
	defer heartbeat.Stop()

	log.Println(usage)
	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if err := c.WriteMessage(websocket.BinaryMessage, network.Encode(network.MsgTypeHeartbeat, nil)); err != nil {
				log.Println("Write error:", err)
				return
			}
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			msgID, body, err := parse(line)
			if err != nil {
				log.Println(err)
				continue
			}
			if err := send(c, msgID, body); err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT (ID: %d)", msgID)
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
