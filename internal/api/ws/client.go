package ws

import (
	"encoding/json"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is one websocket connection. The relay keeps no other state: it
// re-broadcasts payloads into rooms and never touches storage.
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
	Log    *logrus.Logger

	// rooms is guarded by the hub's mutex.
	rooms map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint, log *logrus.Logger) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    hub,
		Log:    log,
		rooms:  make(map[string]bool),
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		close(c.Send)
		c.Conn.Close()
	}()

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		c.handle(ev)
	}
}

func (c *Client) WritePump() {
	defer c.Conn.Close()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *Client) handle(ev Event) {
	switch ev.Event {
	case EventSetup:
		c.Hub.Join(PersonalRoom(c.UserID), c)
		c.Send <- newEvent(EventConnected, nil)

	case EventJoinChat:
		if room := roomID(ev.Data); room != "" {
			c.Hub.Join(room, c)
		}

	case EventNewMessage:
		// The payload is the message as returned by the send endpoint; the
		// room is its chat id.
		var msg struct {
			Chat struct {
				ID uint `json:"id"`
			} `json:"chat"`
		}
		if err := json.Unmarshal(ev.Data, &msg); err != nil || msg.Chat.ID == 0 {
			return
		}
		room := strconv.FormatUint(uint64(msg.Chat.ID), 10)
		c.Hub.Broadcast(room, newEvent(EventMessageReceived, ev.Data), c)

	case EventTyping, EventStopTyping:
		if room := roomID(ev.Data); room != "" {
			c.Hub.Broadcast(room, newEvent(ev.Event, nil), c)
		}

	case EventCreateChat:
		// Deliver to each member's personal room so only participants learn
		// about the new chat.
		var chat struct {
			Users []struct {
				ID uint `json:"id"`
			} `json:"users"`
		}
		if err := json.Unmarshal(ev.Data, &chat); err != nil {
			return
		}
		for _, u := range chat.Users {
			if u.ID == c.UserID {
				continue
			}
			c.Hub.Broadcast(PersonalRoom(u.ID), newEvent(EventCreateChat, ev.Data), c)
		}

	default:
		c.Log.WithField("event", ev.Event).Debug("ignoring unknown socket event")
	}
}

// roomID accepts the room either as a bare JSON number/string or as an
// object with an id field, matching what the web client sends.
func roomID(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var n uint
	if err := json.Unmarshal(data, &n); err == nil && n > 0 {
		return strconv.FormatUint(uint64(n), 10)
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s != "" {
		return s
	}
	var obj struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.ID > 0 {
		return strconv.FormatUint(uint64(obj.ID), 10)
	}
	return ""
}
