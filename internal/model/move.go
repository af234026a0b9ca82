package model

import (
	"fmt"
	"strings"
)

// Move is a request to move a piece. Promotion is NoKind unless a pawn reaches the last rank.
type Move struct {
	From      Square    `json:"from"`
	To        Square    `json:"to"`
	Promotion PieceKind `json:"promotion,omitempty"`
}

var NullMove = Move{From: NoSquare, To: NoSquare}

func (m Move) IsNull() bool {
	return !m.From.Valid() || !m.To.Valid()
}

// String renders coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if l := m.Promotion.Letter(); l != 0 && m.Promotion != Pawn && m.Promotion != King {
		s += string(l + 'a' - 'A')
	}
	return s
}

// ParseCoordinateMove parses "<file><rank><file><rank>[qrbn]".
func ParseCoordinateMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NullMove, fmt.Errorf("%w: move %q", ErrInvalidNotation, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NullMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NullMove, err
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			m.Promotion = Queen
		case 'r':
			m.Promotion = Rook
		case 'b':
			m.Promotion = Bishop
		case 'n':
			m.Promotion = Knight
		default:
			return NullMove, fmt.Errorf("%w: promotion %q", ErrInvalidNotation, s[4:])
		}
	}
	return m, nil
}

// ParsePromotion maps a promotion name or letter ("queen", "q") to a kind.
func ParsePromotion(s string) (PieceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return NoKind, nil
	case "q", "queen":
		return Queen, nil
	case "r", "rook":
		return Rook, nil
	case "b", "bishop":
		return Bishop, nil
	case "n", "knight":
		return Knight, nil
	}
	return NoKind, fmt.Errorf("%w: promotion %q", ErrInvalidNotation, s)
}

type CastleRookMove struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

// MoveRecord holds everything needed to reverse one applied move.
// Records are never mutated once pushed to History.
type MoveRecord struct {
	From             Square         `json:"from"`
	To               Square         `json:"to"`
	Piece            Piece          `json:"piece"`
	Captured         Piece          `json:"capturedPiece"`
	CapturedAt       Square         `json:"capturedAt"`
	Promotion        PieceKind      `json:"promotion,omitempty"`
	IsCastle         bool           `json:"isCastle"`
	CastleRook       CastleRookMove `json:"castleRookMove"`
	EnPassantCapture bool           `json:"enPassant"`
	EnPassantBefore  Square         `json:"enPassantBefore"`
	CastlingBefore   CastlingRights `json:"castlingBefore"`
	Notation         string         `json:"notation"`
}

func (r *MoveRecord) Move() Move {
	return Move{From: r.From, To: r.To, Promotion: r.Promotion}
}

func (r *MoveRecord) IsCapture() bool {
	return !r.Captured.Empty()
}

func (r *MoveRecord) String() string {
	name := r.Piece.Kind
	if r.Promotion != NoKind {
		name = r.Promotion
	}
	return fmt.Sprintf("%s %s %s to %s", r.Piece.Color, name, r.From, r.To)
}
