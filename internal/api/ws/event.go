package ws

import "encoding/json"

// Client-to-server event names.
const (
	EventSetup      = "setup"
	EventJoinChat   = "join chat"
	EventNewMessage = "new message"
	EventTyping     = "typing"
	EventStopTyping = "stop typing"
	EventCreateChat = "createChat"
)

// Server-to-client event names.
const (
	EventConnected       = "connected"
	EventMessageReceived = "message received"
)

// Event is the wire frame for both directions. Data is kept raw: the relay
// re-broadcasts payloads, it does not interpret them.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func newEvent(name string, data json.RawMessage) []byte {
	b, _ := json.Marshal(Event{Event: name, Data: data})
	return b
}
