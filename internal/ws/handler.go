package ws

import (
	"net/http"
	"strings"

	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TokenResolver maps a bearer token to a user id.
type TokenResolver interface {
	ResolveToken(token string) (string, error)
}

// HandleWS upgrades GET /ws?token=... and subscribes the connection to the
// user's task events. allowedOrigins empty means any origin.
func HandleWS(hub *Hub, auth TokenResolver, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "No token provided."})
			return
		}

		userID, err := auth.ResolveToken(token)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token."})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "user_id", userID, "error", err)
			return
		}

		client := NewClient(userID, conn, hub)
		go client.Run()
	}
}
