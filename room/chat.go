package room

// MaxChatLength is the longest accepted chat message, in runes.
const MaxChatLength = 200

type ChatMessage struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// chatLog keeps the most recent messages in a fixed ring.
type chatLog struct {
	buf   []ChatMessage
	start int
	size  int
}

func newChatLog(capacity int) *chatLog {
	if capacity <= 0 {
		capacity = 1
	}
	return &chatLog{buf: make([]ChatMessage, capacity)}
}

func (c *chatLog) push(m ChatMessage) {
	if c.size < len(c.buf) {
		c.buf[(c.start+c.size)%len(c.buf)] = m
		c.size++
		return
	}
	c.buf[c.start] = m
	c.start = (c.start + 1) % len(c.buf)
}

// list returns the retained messages, oldest first.
func (c *chatLog) list() []ChatMessage {
	out := make([]ChatMessage, 0, c.size)
	for i := 0; i < c.size; i++ {
		out = append(out, c.buf[(c.start+i)%len(c.buf)])
	}
	return out
}
