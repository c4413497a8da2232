package statusapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/NotCoffee418/p1_telegram_bridge/pkg/telegram"
)

// Reading is the last verified telegram's decoded points, as served by the
// status API.
type Reading struct {
	ReceivedAt time.Time            `json:"received_at"`
	Points     []telegram.DataPoint `json:"points"`
}

// Server exposes a read-only diagnostics surface next to the MQTT sink:
// the latest verified reading over HTTP and a live feed over websocket.
type Server struct {
	latestReading  *Reading
	readingMutex   sync.RWMutex
	wsClients      map[*websocket.Conn]bool
	wsClientsMutex sync.RWMutex
	log            *logrus.Logger
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Local diagnostics endpoint, no origin restrictions
	},
}

func NewServer(logger *logrus.Logger) *Server {
	return &Server{
		wsClients: make(map[*websocket.Conn]bool),
		log:       logger,
	}
}

// HandleTelegram records the telegram's points as the latest reading and
// broadcasts them to connected websocket clients. Wired as bridge.OnTelegram.
func (s *Server) HandleTelegram(points []telegram.DataPoint) {
	reading := &Reading{
		ReceivedAt: time.Now(),
		Points:     points,
	}
	s.readingMutex.Lock()
	s.latestReading = reading
	s.readingMutex.Unlock()

	s.broadcast(reading)
}

func (s *Server) Latest() *Reading {
	s.readingMutex.RLock()
	defer s.readingMutex.RUnlock()
	return s.latestReading
}

func (s *Server) broadcast(reading *Reading) {
	s.wsClientsMutex.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for client := range s.wsClients {
		clients = append(clients, client)
	}
	s.wsClientsMutex.RUnlock()

	data, err := json.Marshal(reading)
	if err != nil {
		s.log.WithError(err).Error("error marshaling reading")
		return
	}

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.removeClient(client)
		}
	}
}

func (s *Server) addClient(conn *websocket.Conn) {
	s.wsClientsMutex.Lock()
	s.wsClients[conn] = true
	s.wsClientsMutex.Unlock()
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.wsClientsMutex.Lock()
	delete(s.wsClients, conn)
	s.wsClientsMutex.Unlock()
	conn.Close()
}

// Handler returns the status API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "P1 Telegram Bridge",
			"status":  "running",
		})
	})

	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		reading := s.Latest()
		w.Header().Set("Content-Type", "application/json")
		if reading == nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "No readings available yet",
			})
			return
		}
		json.NewEncoder(w).Encode(reading)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.WithError(err).Error("websocket upgrade error")
			return
		}

		s.addClient(conn)

		// Send current reading immediately if available
		if reading := s.Latest(); reading != nil {
			if data, err := json.Marshal(reading); err == nil {
				conn.WriteMessage(websocket.TextMessage, data)
			}
		}

		// Keep connection alive until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.removeClient(conn)
				break
			}
		}
	})

	return mux
}

// Serve blocks listening on addr. Only started when a status listen address
// is configured.
func (s *Server) Serve(addr string) error {
	s.log.WithField("address", addr).Info("starting status API")
	return http.ListenAndServe(addr, s.Handler())
}
