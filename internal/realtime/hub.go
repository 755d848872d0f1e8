// Package realtime pushes room events to connected browsers over
// websockets. Events enter through the redis "broadcast" channel, so every
// server instance fans the same stream out to its own connections.
package realtime

// Hub owns the client set and relays each broadcast message to all of them.
type Hub struct {
	clients map[*Client]bool

	// Inbound messages from redis, fanned out to every client.
	broadcast chan []byte

	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				_ = client.conn.Close()
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// A client that can't keep up gets dropped rather than
					// stalling the fan-out.
					delete(h.clients, client)
					close(client.send)
					_ = client.conn.Close()
				}
			}
		}
	}
}
