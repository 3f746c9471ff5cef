package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the agent connection with the hub and blocks until it
// closes.
func ServeWs(hub *Hub, c *websocket.Conn, userID, orgID string) {
	if orgID == "" {
		orgID = allOrgs
	}
	client := &Client{Hub: hub, Conn: c, UserID: userID, OrgID: orgID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
