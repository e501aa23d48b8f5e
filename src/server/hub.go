package server

import (
	"encoding/json"
	"net/http"

	"stock-watchlist/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub owns the client set. Every viewer gets its own projection of the
// shared engine state.
func (s *WatchlistServer) runHub() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))
			s.push(client)

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.connections.Store(int64(len(s.clients)))
			}

		case client := <-s.viewChanged:
			if _, ok := s.clients[client]; ok {
				s.push(client)
			}

		case <-s.changed:
			for client := range s.clients {
				s.push(client)
			}

		case <-s.quit:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.connections.Store(0)
			return
		}
	}
}

// -----------------------------------------------------------------------------

// push must only be called from the hub loop
func (s *WatchlistServer) push(client *Client) {
	sortOption, filterText := client.view()
	snap := s.Watch.Snapshot(sortOption, filterText)

	select {
	case client.send <- snap:
	default:
		// too slow; drop it so the hub never blocks
		delete(s.clients, client)
		close(client.send)
		s.connections.Store(int64(len(s.clients)))
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *WatchlistServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warning("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:    s,
		conn:   conn,
		send:   make(chan interface{}, 16),
		sort:   c.Query("sort"),
		filter: c.Query("filter"),
	}

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *WatchlistServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MViewCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Warning("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "view" {
		return
	}

	client.setView(cmd.Sort, cmd.Filter)
	select {
	case s.viewChanged <- client:
	case <-s.quit:
	}
}
