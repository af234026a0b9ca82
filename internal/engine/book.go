package engine

import (
	"fmt"

	"github.com/benbeisheim/chess-engine/internal/model"
)

// DefaultLine is the opening the engine plays while the game follows it.
var DefaultLine = []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "d2d3", "f8c5"}

// Book maps positions along a fixed line to the next move of that line.
// Positions are keyed by the first four FEN fields.
type Book struct {
	moves map[string]model.Move
	plies int
}

// NewBook replays line from the starting position. Every move must be legal.
func NewBook(line []string) (*Book, error) {
	b := &Book{moves: make(map[string]model.Move, len(line)), plies: len(line)}
	g := model.NewGame()
	for i, s := range line {
		m, err := model.ParseCoordinateMove(s)
		if err != nil {
			return nil, fmt.Errorf("book move %d: %w", i+1, err)
		}
		key := g.Position().Fingerprint()
		if _, err := g.Move(m); err != nil {
			return nil, fmt.Errorf("book move %d %s: %w", i+1, s, err)
		}
		b.moves[key] = m
	}
	return b, nil
}

// DefaultBook is the book built from DefaultLine.
func DefaultBook() *Book {
	b, err := NewBook(DefaultLine)
	if err != nil {
		panic(err)
	}
	return b
}

// Plies is the number of half-moves the book covers.
func (b *Book) Plies() int {
	return b.plies
}

// Lookup returns the book move for p while the game is inside the book's
// ply window and the move is still legal.
func (b *Book) Lookup(p *model.Position) (model.Move, bool) {
	if b == nil || p.MoveCount >= b.plies {
		return model.NullMove, false
	}
	m, ok := b.moves[p.Fingerprint()]
	if !ok || !p.IsLegal(m.From, m.To) {
		return model.NullMove, false
	}
	return m, true
}
