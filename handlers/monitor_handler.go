package handlers

import (
	ws "github.com/bkoskei/classroom_exams/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ServeMonitor keeps a teacher's websocket open and registered with the
// hub so attempt lifecycle events stream in live. The read loop only
// exists to detect the close.
func ServeMonitor(c *websocket.Conn) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	teacherID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		c.Close()
		return
	}

	client := &ws.Client{UserID: teacherID, Conn: c}
	ws.Register <- client
	defer func() {
		ws.Unregister <- client
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
