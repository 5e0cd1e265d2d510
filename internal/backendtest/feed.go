package backendtest

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/bidngo-client/internal/models"
	"github.com/example/bidngo-client/internal/stream"
)

// feedRegistry tracks connected feed clients so emitted events reach all of
// them. Writes are serialized per session.
type feedRegistry struct {
	mu       sync.Mutex
	nextID   int
	sessions map[int]*feedSession
}

type feedSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (fs *feedSession) send(payload []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.conn.WriteMessage(websocket.TextMessage, payload)
}

func newFeedRegistry() *feedRegistry {
	return &feedRegistry{sessions: make(map[int]*feedSession)}
}

func (f *feedRegistry) add(conn *websocket.Conn) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.sessions[id] = &feedSession{conn: conn}
	return id
}

func (f *feedRegistry) remove(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
}

func (f *feedRegistry) broadcast(payload []byte) {
	f.mu.Lock()
	sessions := make([]*feedSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		sessions = append(sessions, s)
	}
	f.mu.Unlock()
	for _, s := range sessions {
		_ = s.send(payload)
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	id := s.feed.add(conn)
	// drain until the client goes away; the feed is one-directional
	go func() {
		defer func() {
			s.feed.remove(id)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Emit pushes one event frame to every connected feed client.
func (s *Server) Emit(ev stream.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	s.feed.broadcast(payload)
}

// EmitRaw pushes an arbitrary payload, useful for exercising the client's
// raw-frame passthrough.
func (s *Server) EmitRaw(payload []byte) {
	s.feed.broadcast(payload)
}

// FeedClients reports how many feed connections are currently open.
func (s *Server) FeedClients() int {
	s.feed.mu.Lock()
	defer s.feed.mu.Unlock()
	return len(s.feed.sessions)
}

func bidEvent(eventType string, b models.Bid) stream.Event {
	return stream.Event{Type: eventType, TripID: b.TripID, BidID: b.ID, Bid: &b}
}
