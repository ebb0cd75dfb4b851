package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"polling-service/pkg/jwtutil"
	"polling-service/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection joined to its tenant room and its
// personal room.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	rooms  []string
	userID string
}

// ServeWS returns the websocket handshake handler. The token comes from the
// ?token query parameter or a bearer Authorization header; only the signature
// is checked here, matching the HTTP surface's first authentication step.
func ServeWS(hub *Hub, allowedOrigin string) echo.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		},
	}

	return func(c echo.Context) error {
		log := logger.FromContext(c)

		token := c.QueryParam("token")
		if token == "" {
			if parts := strings.SplitN(c.Request().Header.Get("Authorization"), " ", 2); len(parts) == 2 {
				token = parts[1]
			}
		}
		if token == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Authentication required"})
		}

		claims, err := jwtutil.ValidateToken(token)
		if err != nil {
			log.Warn("websocket handshake rejected", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid token"})
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			// Upgrade has already written its own error response.
			return nil
		}

		client := &Client{
			hub:    hub,
			conn:   conn,
			send:   make(chan []byte, 64),
			rooms:  []string{claims.TenantKey, "user:" + claims.UserID},
			userID: claims.UserID,
		}
		hub.join(client)

		go client.writePump()
		go client.readPump()
		return nil
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		// The only inbound client message is an application-level ping.
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Event == "ping" {
			pong, _ := json.Marshal(Message{
				Event: "pong",
				Data:  map[string]int64{"timestamp": time.Now().UnixMilli()},
			})
			select {
			case c.send <- pong:
			default:
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
