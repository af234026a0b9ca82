package service

import (
	"context"
	"fmt"
	"time"

	"github.com/benbeisheim/chess-engine/internal/model"
	"github.com/benbeisheim/chess-engine/internal/openings"
	"github.com/benbeisheim/chess-engine/internal/ws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MoveRequest is either coordinate notation in Move or explicit squares.
type MoveRequest struct {
	Move      string `json:"move,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
}

func (r MoveRequest) parse() (model.Move, error) {
	if r.Move != "" {
		return model.ParseCoordinateMove(r.Move)
	}
	from, err := model.ParseSquare(r.From)
	if err != nil {
		return model.NullMove, err
	}
	to, err := model.ParseSquare(r.To)
	if err != nil {
		return model.NullMove, err
	}
	promo, err := model.ParsePromotion(r.Promotion)
	if err != nil {
		return model.NullMove, err
	}
	return model.Move{From: from, To: to, Promotion: promo}, nil
}

// Observation is a physical board reading: either a ready occupancy grid or
// raw square classifications.
type Observation struct {
	Occupancy *model.Occupancy             `json:"occupancy,omitempty"`
	Squares   []model.ClassificationResult `json:"squares,omitempty"`
}

type GameService struct {
	sessions      *SessionManager
	queue         *SearchQueue
	labeler       *openings.Labeler
	defaultBudget time.Duration
	logger        *zap.Logger
}

func NewGameService(sessions *SessionManager, queue *SearchQueue, labeler *openings.Labeler, defaultBudget time.Duration, logger *zap.Logger) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	gs := &GameService{
		sessions:      sessions,
		queue:         queue,
		labeler:       labeler,
		defaultBudget: defaultBudget,
		logger:        logger,
	}
	queue.onApplied = gs.broadcastState
	return gs
}

// CreateSession starts a session at the initial position, or at fen when
// one is given.
func (gs *GameService) CreateSession(fen string) (State, error) {
	s := gs.sessions.Create()
	if fen == "" {
		return gs.GetState(s.ID)
	}
	st, err := gs.LoadFEN(s.ID, fen)
	if err != nil {
		gs.sessions.Delete(s.ID)
		return State{}, err
	}
	return st, nil
}

func (gs *GameService) DeleteSession(id string) error {
	return gs.sessions.Delete(id)
}

func (gs *GameService) SessionExists(id string) bool {
	return gs.sessions.Exists(id)
}

func (gs *GameService) GetState(id string) (State, error) {
	s, err := gs.sessions.Get(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(gs.labeler, gs.logger), nil
}

// LegalMoves lists destinations, in square notation, for the piece on square.
func (gs *GameService) LegalMoves(id, square string) ([]string, error) {
	sq, err := model.ParseSquare(square)
	if err != nil {
		return nil, err
	}
	s, err := gs.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dests := s.game.Position().LegalMoves(sq)
	out := make([]string, len(dests))
	for i, d := range dests {
		out[i] = d.String()
	}
	return out, nil
}

// update runs fn on the session's game under its lock, then pushes the new
// state to watchers.
func (gs *GameService) update(id string, fn func(s *Session) error) (State, error) {
	s, err := gs.sessions.Get(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	if err := fn(s); err != nil {
		s.mu.Unlock()
		return State{}, err
	}
	st := s.stateLocked(gs.labeler, gs.logger)
	s.mu.Unlock()

	gs.push(s, st)
	return st, nil
}

func (gs *GameService) Move(id string, req MoveRequest) (State, error) {
	m, err := req.parse()
	if err != nil {
		return State{}, err
	}
	return gs.update(id, func(s *Session) error {
		rec, err := s.game.Move(m)
		if err != nil {
			return err
		}
		gs.logger.Debug("move played", zap.String("session", id), zap.String("move", rec.Notation))
		return nil
	})
}

func (gs *GameService) Undo(id string) (State, error) {
	return gs.update(id, func(s *Session) error {
		return s.game.UndoMove()
	})
}

func (gs *GameService) Redo(id string) (State, error) {
	return gs.update(id, func(s *Session) error {
		return s.game.RedoMove()
	})
}

func (gs *GameService) Reset(id string) (State, error) {
	return gs.update(id, func(s *Session) error {
		s.game.Reset()
		s.standardStart = true
		return nil
	})
}

func (gs *GameService) Clear(id string) (State, error) {
	return gs.update(id, func(s *Session) error {
		s.game.ClearBoard()
		s.standardStart = false
		return nil
	})
}

func (gs *GameService) LoadFEN(id, fen string) (State, error) {
	return gs.update(id, func(s *Session) error {
		if err := s.game.LoadFEN(fen); err != nil {
			return err
		}
		s.standardStart = fen == model.StartFEN
		return nil
	})
}

// Place puts piece (a FEN letter) on square in setup mode.
func (gs *GameService) Place(id, square, piece string) (State, error) {
	sq, err := model.ParseSquare(square)
	if err != nil {
		return State{}, err
	}
	if len(piece) != 1 {
		return State{}, fmt.Errorf("%w: %q", model.ErrUnknownPiece, piece)
	}
	pc, ok := model.PieceFromLetter(piece[0])
	if !ok {
		return State{}, fmt.Errorf("%w: %q", model.ErrUnknownPiece, piece)
	}
	return gs.update(id, func(s *Session) error {
		s.standardStart = false
		return s.game.Place(sq, pc)
	})
}

func (gs *GameService) Remove(id, square string) (State, error) {
	sq, err := model.ParseSquare(square)
	if err != nil {
		return State{}, err
	}
	return gs.update(id, func(s *Session) error {
		s.standardStart = false
		return s.game.Remove(sq)
	})
}

func (gs *GameService) SetSideToMove(id string, c model.Color) (State, error) {
	return gs.update(id, func(s *Session) error {
		s.standardStart = false
		s.game.SetSideToMove(c)
		return nil
	})
}

// Suggest asks the engine for a move within budget, or the service default
// when budget is zero, and plays it when apply is set.
func (gs *GameService) Suggest(ctx context.Context, id string, budget time.Duration, apply bool) (Suggestion, State, error) {
	s, err := gs.sessions.Get(id)
	if err != nil {
		return Suggestion{}, State{}, err
	}
	if budget <= 0 {
		budget = gs.defaultBudget
	}
	sug, err := gs.queue.Submit(ctx, s, budget, apply)
	if err != nil {
		return Suggestion{}, State{}, err
	}
	gs.logger.Info("engine suggestion",
		zap.String("session", id),
		zap.String("move", sug.Result.Move.String()),
		zap.String("source", string(sug.Result.Source)),
		zap.Int("score", sug.Result.Score),
		zap.Int("depth", sug.Result.Depth),
		zap.Bool("applied", sug.Applied != nil),
	)
	st, err := gs.GetState(id)
	return sug, st, err
}

// Observe plays the unique legal move that explains a physical board reading.
func (gs *GameService) Observe(id string, obs Observation) (State, error) {
	var occ model.Occupancy
	switch {
	case obs.Occupancy != nil:
		occ = *obs.Occupancy
	case len(obs.Squares) > 0:
		occ = model.OccupancyFromClassification(obs.Squares)
	default:
		return State{}, fmt.Errorf("%w: empty observation", model.ErrNoMatchingMove)
	}
	return gs.update(id, func(s *Session) error {
		m, err := s.game.Position().InferMove(occ)
		if err != nil {
			return err
		}
		_, err = s.game.Move(m)
		return err
	})
}

// SetupFromClassification replaces the board with one read from typed
// square classifications.
func (gs *GameService) SetupFromClassification(id string, squares []model.ClassificationResult, toMove model.Color) (State, error) {
	p, err := model.PositionFromClassification(squares, toMove)
	if err != nil {
		return State{}, err
	}
	return gs.update(id, func(s *Session) error {
		s.standardStart = false
		s.game.LoadPosition(p)
		return nil
	})
}

// RegisterConnection adds a websocket watcher and sends it the current
// state. It returns the connection ID to unregister with.
func (gs *GameService) RegisterConnection(id string, conn Conn) (string, error) {
	s, err := gs.sessions.Get(id)
	if err != nil {
		return "", err
	}
	connID := uuid.New().String()
	s.addConnection(connID, conn)
	gs.logger.Info("websocket connected",
		zap.String("session", id),
		zap.String("conn", connID),
		zap.Int("watchers", s.connectionCount()),
	)

	s.mu.Lock()
	st := s.stateLocked(gs.labeler, gs.logger)
	s.mu.Unlock()
	msg, err := ws.NewMessage(ws.MessageTypeState, st)
	if err != nil {
		return connID, err
	}
	if err := s.send(conn, msg); err != nil {
		s.removeConnection(connID)
		return "", err
	}
	return connID, nil
}

func (gs *GameService) UnregisterConnection(id, connID string) {
	s, err := gs.sessions.Get(id)
	if err != nil {
		return
	}
	s.removeConnection(connID)
	gs.logger.Info("websocket disconnected", zap.String("session", id), zap.String("conn", connID))
}

func (gs *GameService) broadcastState(s *Session) {
	s.mu.Lock()
	st := s.stateLocked(gs.labeler, gs.logger)
	s.mu.Unlock()
	gs.push(s, st)
}

func (gs *GameService) push(s *Session, st State) {
	if s.connectionCount() == 0 {
		return
	}
	msg, err := ws.NewMessage(ws.MessageTypeState, st)
	if err != nil {
		gs.logger.Error("marshal state", zap.String("session", s.ID), zap.Error(err))
		return
	}
	s.broadcast(msg, gs.logger)
}

// Send writes msg to one watcher of session id, serialised with broadcasts.
func (gs *GameService) Send(id string, conn Conn, msg ws.Message) error {
	s, err := gs.sessions.Get(id)
	if err != nil {
		return err
	}
	return s.send(conn, msg)
}
