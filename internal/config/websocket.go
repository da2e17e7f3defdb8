package config

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader     websocket.Upgrader
	WriteTimeout time.Duration
	// PongWait is how long a connection may stay silent, pongs included,
	// before it is dropped. Pings go out every PingPeriod.
	PongWait   time.Duration
	PingPeriod time.Duration
	// MaxMessageSize bounds a single client frame of move commands.
	MaxMessageSize int64
}

func NewWebSocket() (*WebSocket, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	ws := &WebSocket{
		Upgrader:       upgrader,
		WriteTimeout:   10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 4096,
	}

	return ws, nil
}
