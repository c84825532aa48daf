package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

// Event is pushed to a single connected user: payout status changes and
// task completion credits.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type userEvent struct {
	userID uuid.UUID
	event  *Event
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var events = make(chan userEvent, 64)

// Notify delivers an event to the user's live connection, if any. Users
// without an open socket simply miss the push and catch up via the REST
// history endpoints.
func Notify(userID uuid.UUID, eventType string, payload interface{}) {
	ue := userEvent{
		userID: userID,
		event:  &Event{Type: eventType, Payload: payload, Timestamp: time.Now()},
	}
	select {
	case events <- ue:
	default:
		log.Printf("Event queue full, dropping %s event for user %s", eventType, userID)
	}
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case ue := <-events:
			clientsMu.RLock()
			conn, ok := clients[ue.userID]
			clientsMu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(ue.event); err != nil {
				log.Printf("Error sending event to client %s: %v", ue.userID, err)
				conn.Close()
				clientsMu.Lock()
				if current, ok := clients[ue.userID]; ok && current == conn {
					delete(clients, ue.userID)
				}
				clientsMu.Unlock()
			}
		}
	}
}
