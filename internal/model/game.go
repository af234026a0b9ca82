package model

import "fmt"

// History owns every applied MoveRecord plus the redo stack.
type History struct {
	done   []MoveRecord
	undone []MoveRecord
}

func (h *History) push(rec MoveRecord) {
	h.done = append(h.done, rec)
	h.undone = h.undone[:0]
}

func (h *History) clear() {
	h.done = h.done[:0]
	h.undone = h.undone[:0]
}

// Game couples a live Position with its History. It does no locking; callers
// that share a Game between goroutines must serialise access themselves.
type Game struct {
	pos     *Position
	history History
}

func NewGame() *Game {
	g := &Game{pos: NewPosition()}
	g.pos.UpdateGameState()
	return g
}

// NewGameFromPosition takes ownership of p and starts an empty history from it.
func NewGameFromPosition(p *Position) *Game {
	g := &Game{pos: p}
	g.pos.UpdateGameState()
	return g
}

// Position returns the live position. Callers must not mutate it outside of
// a MakeMove/UnmakeMove pair.
func (g *Game) Position() *Position {
	return g.pos
}

// Apply plays from->to and reports whether the move was accepted. Rejected
// moves leave every field unchanged.
func (g *Game) Apply(from, to Square, promotion PieceKind) bool {
	_, err := g.Move(Move{From: from, To: to, Promotion: promotion})
	return err == nil
}

// Move validates and plays m, returning the record pushed to history.
func (g *Game) Move(m Move) (MoveRecord, error) {
	if !m.From.Valid() || !m.To.Valid() {
		return MoveRecord{}, fmt.Errorf("%w: %s", ErrInvalidNotation, m)
	}
	p := g.pos
	pc := p.At(m.From)
	if pc.Empty() {
		return MoveRecord{}, fmt.Errorf("%w: %s", ErrNoPiece, m.From)
	}
	if pc.Color != p.SideToMove {
		return MoveRecord{}, fmt.Errorf("%w: %s to move", ErrNotYourTurn, p.SideToMove)
	}
	if !p.IsLegal(m.From, m.To) && !g.acceptsPromotion(m) {
		return MoveRecord{}, fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}

	if p.IsPromotion(m.From, m.To) {
		switch m.Promotion {
		case Queen, Rook, Bishop, Knight:
		default:
			m.Promotion = Queen
		}
	} else {
		m.Promotion = NoKind
	}

	rec := p.MakeMove(m)
	p.MoveCount++
	p.UpdateGameState()
	rec.Notation = notate(&rec, p)
	g.history.push(rec)
	return rec, nil
}

// acceptsPromotion is the lenient path for promotions written by an external
// engine: a pawn step or diagonal capture onto the last rank with an explicit
// piece. It still refuses anything that leaves the mover in check.
func (g *Game) acceptsPromotion(m Move) bool {
	p := g.pos
	pc := p.At(m.From)
	if m.Promotion == NoKind || !p.IsPromotion(m.From, m.To) {
		return false
	}
	if m.To.Row-m.From.Row != pc.Color.forward() {
		return false
	}
	target := p.At(m.To)
	switch abs(m.To.Col - m.From.Col) {
	case 0:
		if !target.Empty() {
			return false
		}
	case 1:
		if target.Empty() || target.Color == pc.Color {
			return false
		}
	default:
		return false
	}
	return !p.leavesKingInCheck(m.From, m.To)
}

// ApplyCoordinate plays a move written as "e2e4" or "e7e8q".
func (g *Game) ApplyCoordinate(s string) (MoveRecord, error) {
	m, err := ParseCoordinateMove(s)
	if err != nil {
		return MoveRecord{}, err
	}
	return g.Move(m)
}

func (g *Game) Undo() bool {
	return g.UndoMove() == nil
}

// UndoMove pops the last record, reverses it and parks it on the redo stack.
func (g *Game) UndoMove() error {
	n := len(g.history.done)
	if n == 0 {
		return ErrNothingToUndo
	}
	rec := g.history.done[n-1]
	g.history.done = g.history.done[:n-1]

	g.pos.UnmakeMove(&rec)
	g.pos.MoveCount--
	g.pos.UpdateGameState()
	g.history.undone = append(g.history.undone, rec)
	return nil
}

func (g *Game) Redo() bool {
	return g.RedoMove() == nil
}

// RedoMove replays the most recently undone record without re-validating it.
func (g *Game) RedoMove() error {
	n := len(g.history.undone)
	if n == 0 {
		return ErrNothingToRedo
	}
	rec := g.history.undone[n-1]
	g.history.undone = g.history.undone[:n-1]

	g.pos.playForward(&rec)
	g.pos.MoveCount++
	g.pos.UpdateGameState()
	g.history.done = append(g.history.done, rec)
	return nil
}

func (g *Game) CanUndo() bool {
	return len(g.history.done) > 0
}

func (g *Game) CanRedo() bool {
	return len(g.history.undone) > 0
}

// History returns a copy of the applied records, oldest first.
func (g *Game) History() []MoveRecord {
	out := make([]MoveRecord, len(g.history.done))
	copy(out, g.history.done)
	return out
}

// LastMove returns the most recent record, if any.
func (g *Game) LastMove() (MoveRecord, bool) {
	if len(g.history.done) == 0 {
		return MoveRecord{}, false
	}
	return g.history.done[len(g.history.done)-1], true
}

// Reset restores the starting position and drops all history.
func (g *Game) Reset() {
	g.pos.setup()
	g.history.clear()
	g.pos.UpdateGameState()
}

// ClearBoard empties the board for setup mode. Castling rights stay set so a
// king and rook placed on their home squares can still castle.
func (g *Game) ClearBoard() {
	*g.pos = *NewEmptyPosition()
	g.history.clear()
	g.pos.UpdateGameState()
}

// LoadFEN replaces the position. On error the game is unchanged.
func (g *Game) LoadFEN(fen string) error {
	p, err := ParseFEN(fen)
	if err != nil {
		return err
	}
	g.LoadPosition(p)
	return nil
}

// LoadPosition copies p into the game and drops all history.
func (g *Game) LoadPosition(p *Position) {
	*g.pos = *p
	g.pos.MoveCount = 0
	g.history.clear()
	g.pos.UpdateGameState()
}

// Place puts an unmoved piece on sq, replacing whatever was there.
func (g *Game) Place(sq Square, pc Piece) error {
	if !sq.Valid() {
		return fmt.Errorf("%w: square %s", ErrInvalidNotation, sq)
	}
	if pc.Empty() {
		return ErrUnknownPiece
	}
	pc.HasMoved = false
	g.pos.set(sq, pc)
	g.history.clear()
	g.pos.UpdateGameState()
	return nil
}

func (g *Game) Remove(sq Square) error {
	if !sq.Valid() {
		return fmt.Errorf("%w: square %s", ErrInvalidNotation, sq)
	}
	g.pos.set(sq, Piece{})
	g.history.clear()
	g.pos.UpdateGameState()
	return nil
}

// SetSideToMove is a setup-mode edit; en passant is dropped with it.
func (g *Game) SetSideToMove(c Color) {
	g.pos.SideToMove = c
	g.pos.EnPassant = NoSquare
	g.history.clear()
	g.pos.UpdateGameState()
}
