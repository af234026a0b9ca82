package service

import (
	"sync"
	"time"

	"github.com/benbeisheim/chess-engine/internal/model"
	"github.com/benbeisheim/chess-engine/internal/openings"
	"github.com/benbeisheim/chess-engine/internal/ws"
	"go.uber.org/zap"
)

// Conn is the write side of a websocket connection.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// The connections watching a specific session
type sessionConnections struct {
	connections map[string]Conn // connection ID -> connection
	mu          sync.RWMutex
	writeMu     sync.Mutex
}

// Session is one analysis board. All access to the game goes through mu;
// a running search holds it too, so nothing interleaves with the search.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu sync.Mutex
	// game is guarded by mu.
	game *model.Game
	// standardStart is set while the game began from the initial position,
	// which is when opening names apply.
	standardStart bool

	connections *sessionConnections
}

// State is the JSON view of a session pushed to clients.
type State struct {
	ID       string             `json:"id"`
	Position model.Position     `json:"position"`
	FEN      string             `json:"fen"`
	History  []model.MoveRecord `json:"history"`
	CanUndo  bool               `json:"canUndo"`
	CanRedo  bool               `json:"canRedo"`
	Result   string             `json:"result"`
	Opening  *openings.Opening  `json:"opening,omitempty"`
	LastMove *model.MoveRecord  `json:"lastMove,omitempty"`
}

func newSession(id string) *Session {
	return &Session{
		ID:            id,
		CreatedAt:     time.Now(),
		game:          model.NewGame(),
		standardStart: true,
		connections:   &sessionConnections{connections: make(map[string]Conn)},
	}
}

// stateLocked builds a snapshot. The caller holds s.mu.
func (s *Session) stateLocked(labeler *openings.Labeler, logger *zap.Logger) State {
	pos := s.game.Position()
	st := State{
		ID:       s.ID,
		Position: *pos,
		FEN:      pos.FEN(),
		History:  s.game.History(),
		CanUndo:  s.game.CanUndo(),
		CanRedo:  s.game.CanRedo(),
		Result:   pos.Result(),
	}
	if rec, ok := s.game.LastMove(); ok {
		st.LastMove = &rec
	}
	if s.standardStart && labeler != nil && len(st.History) > 0 {
		moves := make([]string, len(st.History))
		for i := range st.History {
			moves[i] = st.History[i].Move().String()
		}
		o, ok, err := labeler.Label(moves)
		switch {
		case err != nil:
			logger.Debug("opening label failed", zap.String("session", s.ID), zap.Error(err))
		case ok:
			st.Opening = &o
		}
	}
	return st
}

func (s *Session) addConnection(connID string, conn Conn) {
	s.connections.mu.Lock()
	defer s.connections.mu.Unlock()
	s.connections.connections[connID] = conn
}

func (s *Session) removeConnection(connID string) {
	s.connections.mu.Lock()
	defer s.connections.mu.Unlock()
	delete(s.connections.connections, connID)
}

func (s *Session) connectionCount() int {
	s.connections.mu.RLock()
	defer s.connections.mu.RUnlock()
	return len(s.connections.connections)
}

// broadcast writes msg to every connection and drops the ones that fail.
func (s *Session) broadcast(msg ws.Message, logger *zap.Logger) {
	// Get a snapshot of connections under the connections mutex
	s.connections.mu.RLock()
	active := make(map[string]Conn, len(s.connections.connections))
	for id, conn := range s.connections.connections {
		active[id] = conn
	}
	s.connections.mu.RUnlock()

	s.connections.writeMu.Lock()
	defer s.connections.writeMu.Unlock()
	for id, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			logger.Warn("dropping websocket connection",
				zap.String("session", s.ID),
				zap.String("conn", id),
				zap.Error(err),
			)
			s.removeConnection(id)
			conn.Close()
		}
	}
}

// send writes msg to a single connection, serialised with broadcasts.
func (s *Session) send(conn Conn, msg ws.Message) error {
	s.connections.writeMu.Lock()
	defer s.connections.writeMu.Unlock()
	return conn.WriteJSON(msg)
}
