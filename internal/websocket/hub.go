package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub delivers transcript and structure events to connected browsers. Events
// travel over Redis pub/sub so any instance can serve any engineer.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*websocket.Conn
	redisClient *redis.Client
	jwtSecret   []byte
	cancelFuncs map[uuid.UUID]context.CancelFunc
}

func NewHub(redisClient *redis.Client, jwtSecret string) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*websocket.Conn),
		redisClient: redisClient,
		jwtSecret:   []byte(jwtSecret),
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	engineerIDStr, _ := claims["engineer_id"].(string)
	engineerID, err := uuid.Parse(engineerIDStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(engineerID, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(engineerID, conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(engineerID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[engineerID] = append(h.connections[engineerID], conn)

	// First connection for this engineer starts the pub/sub subscription
	if len(h.connections[engineerID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[engineerID] = cancel
		go h.subscribeToPubSub(ctx, engineerID)
	}

	log.Printf("WebSocket connected: engineer %s (total: %d)", engineerID, len(h.connections[engineerID]))
}

func (h *Hub) unregisterConnection(engineerID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[engineerID]
	for i, c := range conns {
		if c == conn {
			h.connections[engineerID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[engineerID]) == 0 {
		delete(h.connections, engineerID)
		if cancel, ok := h.cancelFuncs[engineerID]; ok {
			cancel()
			delete(h.cancelFuncs, engineerID)
		}
	}

	log.Printf("WebSocket disconnected: engineer %s", engineerID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, engineerID uuid.UUID) {
	channel := "engineer_updates:" + engineerID.String()
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(engineerID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(engineerID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[engineerID] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}

// SendToEngineer sends a message directly to an engineer (for use outside pub/sub)
func (h *Hub) SendToEngineer(engineerID uuid.UUID, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.broadcast(engineerID, data)
}
