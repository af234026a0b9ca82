package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Labels written by the square classifier.
const (
	LabelOccupied = "accepted"
	LabelEmpty    = "rejected"
	LabelError    = "error"
)

// ClassificationResult is one classified square image as produced by the
// vision pipeline. Square is the image name, "square_<row>_<col>.png".
// Piece is an optional FEN letter when the classifier knows the piece type.
type ClassificationResult struct {
	Square     string  `json:"square"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Piece      string  `json:"piece,omitempty"`
}

// Location parses the row and column out of the image name.
func (r ClassificationResult) Location() (Square, bool) {
	name, ok := strings.CutPrefix(r.Square, "square_")
	if !ok {
		return NoSquare, false
	}
	name, ok = strings.CutSuffix(name, ".png")
	if !ok {
		return NoSquare, false
	}
	rowStr, colStr, ok := strings.Cut(name, "_")
	if !ok {
		return NoSquare, false
	}
	row, err := strconv.Atoi(rowStr)
	if err != nil {
		return NoSquare, false
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return NoSquare, false
	}
	sq := Square{Row: row, Col: col}
	return sq, sq.Valid()
}

func (r ClassificationResult) Occupied() bool {
	return r.Label == LabelOccupied
}

// Occupancy is an occupied/empty grid indexed like Position.Board.
type Occupancy [8][8]bool

// OccupancyFromClassification builds the grid. Results with unparseable
// names are skipped; squares without a result count as empty.
func OccupancyFromClassification(results []ClassificationResult) Occupancy {
	var occ Occupancy
	for _, r := range results {
		sq, ok := r.Location()
		if !ok {
			continue
		}
		occ[sq.Row][sq.Col] = r.Occupied()
	}
	return occ
}

// BoardStateFromClassification returns FEN letters per square, "" for empty.
// Occupied squares without a known piece type hold "?".
func BoardStateFromClassification(results []ClassificationResult) [8][8]string {
	var state [8][8]string
	for _, r := range results {
		sq, ok := r.Location()
		if !ok || !r.Occupied() {
			continue
		}
		if _, known := pieceFromResult(r); known {
			state[sq.Row][sq.Col] = r.Piece
		} else {
			state[sq.Row][sq.Col] = "?"
		}
	}
	return state
}

func pieceFromResult(r ClassificationResult) (Piece, bool) {
	if len(r.Piece) != 1 {
		return Piece{}, false
	}
	return PieceFromLetter(r.Piece[0])
}

// PositionFromClassification builds a position from fully typed results.
// Castling rights are granted wherever king and rook stand on their home
// squares; HasMoved is inferred the same way ParseFEN does.
func PositionFromClassification(results []ClassificationResult, toMove Color) (*Position, error) {
	p := NewEmptyPosition()
	for _, r := range results {
		sq, ok := r.Location()
		if !ok || !r.Occupied() {
			continue
		}
		pc, known := pieceFromResult(r)
		if !known {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPiece, sq)
		}
		p.set(sq, pc)
	}
	p.SideToMove = toMove
	p.Castling = CastlingRights{}
	for _, c := range [2]Color{White, Black} {
		row := c.homeRow()
		if k := p.Board[row][4]; k.Kind != King || k.Color != c {
			continue
		}
		if r := p.Board[row][7]; r.Kind == Rook && r.Color == c {
			if c == White {
				p.Castling.WhiteKingside = true
			} else {
				p.Castling.BlackKingside = true
			}
		}
		if r := p.Board[row][0]; r.Kind == Rook && r.Color == c {
			if c == White {
				p.Castling.WhiteQueenside = true
			} else {
				p.Castling.BlackQueenside = true
			}
		}
	}
	p.inferHasMoved()
	return p, nil
}

func (p *Position) Occupancy() Occupancy {
	var occ Occupancy
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			occ[row][col] = !p.Board[row][col].Empty()
		}
	}
	return occ
}

// InferMove finds the single legal move that turns the current occupancy
// into observed. Promotions resolve to a queen.
func (p *Position) InferMove(observed Occupancy) (Move, error) {
	if p.Occupancy() == observed {
		return NullMove, fmt.Errorf("%w: board unchanged", ErrNoMatchingMove)
	}
	var matches []Move
	for _, m := range p.AllLegalMoves() {
		rec := p.MakeMove(m)
		if p.Occupancy() == observed {
			matches = append(matches, m)
		}
		p.UnmakeMove(&rec)
	}
	switch len(matches) {
	case 0:
		return NullMove, ErrNoMatchingMove
	case 1:
		return matches[0], nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.String()
	}
	return NullMove, fmt.Errorf("%w: %s", ErrAmbiguousMove, strings.Join(names, ", "))
}
