package ws

import (
	"sync"

	"github.com/puzpuzpuz/xsync"
)

type userClients struct {
	clients map[string]*Client
	removed bool
	mutex   sync.RWMutex
}

// Hub indexes the open clients by user.
type Hub struct {
	users *xsync.MapOf[string, *userClients]
}

func NewHub() *Hub {
	return &Hub{users: xsync.NewMapOf[*userClients]()}
}

// Register adds the client and removes it again once the client stops.
func (h *Hub) Register(c *Client) {
	for {
		uc, _ := h.users.LoadOrStore(c.UserID, &userClients{clients: map[string]*Client{}})
		uc.mutex.Lock()
		if uc.removed {
			// Lost the race against the last unregister of this user.
			uc.mutex.Unlock()
			continue
		}

		uc.clients[c.ID] = c
		uc.mutex.Unlock()
		break
	}

	go func() {
		<-c.Done()
		h.unregister(c)
	}()
}

func (h *Hub) unregister(c *Client) {
	uc, ok := h.users.Load(c.UserID)
	if !ok {
		return
	}

	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	delete(uc.clients, c.ID)
	if len(uc.clients) == 0 && !uc.removed {
		uc.removed = true
		h.users.Delete(c.UserID)
	}
}

// Send writes the message to every client of the user and returns how many
// clients accepted it.
func (h *Hub) Send(userID string, msg Message) int {
	uc, ok := h.users.Load(userID)
	if !ok {
		return 0
	}

	uc.mutex.RLock()
	clients := make([]*Client, 0, len(uc.clients))
	for _, c := range uc.clients {
		clients = append(clients, c)
	}
	uc.mutex.RUnlock()

	sent := 0
	for _, c := range clients {
		if err := c.Write(msg); err == nil {
			sent++
		}
	}

	return sent
}

func (h *Hub) Count(userID string) int {
	uc, ok := h.users.Load(userID)
	if !ok {
		return 0
	}

	uc.mutex.RLock()
	defer uc.mutex.RUnlock()
	return len(uc.clients)
}
