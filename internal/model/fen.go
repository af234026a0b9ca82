package model

import (
	"fmt"
	"strings"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FEN encodes the position. Halfmove and fullmove counters are fixed at "0 1".
func (p *Position) FEN() string {
	return p.Fingerprint() + " 0 1"
}

// Fingerprint is the first four FEN fields: placement, side, castling, en passant.
func (p *Position) Fingerprint() string {
	var sb strings.Builder
	sb.Grow(80)
	p.writePlacement(&sb)
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(p.castlingField())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	return sb.String()
}

func (p *Position) writePlacement(sb *strings.Builder) {
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			pc := p.Board[row][col]
			if pc.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.FENLetter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}
}

// castlingField lists a right only while the king and rook still stand on their home squares.
func (p *Position) castlingField() string {
	var s string
	homeKing := func(c Color) bool {
		k := p.Board[c.homeRow()][4]
		return k.Kind == King && k.Color == c
	}
	homeRook := func(c Color, col int) bool {
		r := p.Board[c.homeRow()][col]
		return r.Kind == Rook && r.Color == c
	}
	if p.Castling.WhiteKingside && homeKing(White) && homeRook(White, 7) {
		s += "K"
	}
	if p.Castling.WhiteQueenside && homeKing(White) && homeRook(White, 0) {
		s += "Q"
	}
	if p.Castling.BlackKingside && homeKing(Black) && homeRook(Black, 7) {
		s += "k"
	}
	if p.Castling.BlackQueenside && homeKing(Black) && homeRook(Black, 0) {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}

// ParseFEN builds a position from a FEN string. The counters are optional and ignored.
// HasMoved is inferred from placement and castling rights.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 || len(fields) > 6 {
		return nil, fmt.Errorf("%w: expected 4-6 fields, got %d", ErrInvalidFEN, len(fields))
	}
	p := NewEmptyPosition()
	p.Castling = CastlingRights{}

	if err := p.parsePlacement(fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
	default:
		return nil, fmt.Errorf("%w: active color %q", ErrInvalidFEN, fields[1])
	}

	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				p.Castling.WhiteKingside = true
			case 'Q':
				p.Castling.WhiteQueenside = true
			case 'k':
				p.Castling.BlackKingside = true
			case 'q':
				p.Castling.BlackQueenside = true
			default:
				return nil, fmt.Errorf("%w: castling %q", ErrInvalidFEN, fields[2])
			}
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil || (sq.Row != 2 && sq.Row != 5) {
			return nil, fmt.Errorf("%w: en passant %q", ErrInvalidFEN, fields[3])
		}
		p.EnPassant = sq
	}

	p.inferHasMoved()
	return p, nil
}

func (p *Position) parsePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for row, rank := range ranks {
		col := 0
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			pc, ok := PieceFromLetter(c)
			if !ok {
				return fmt.Errorf("%w: piece %q", ErrInvalidFEN, string(c))
			}
			if col > 7 {
				return fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, 8-row)
			}
			p.Board[row][col] = pc
			col++
		}
		if col != 8 {
			return fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, 8-row, col)
		}
	}
	return nil
}

func (p *Position) inferHasMoved() {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pc := &p.Board[row][col]
			switch pc.Kind {
			case Pawn:
				pc.HasMoved = row != pawnStartRow(pc.Color)
			case King:
				home := row == pc.Color.homeRow() && col == 4
				pc.HasMoved = !home || (!p.Castling.kingside(pc.Color) && !p.Castling.queenside(pc.Color))
			case Rook:
				switch {
				case row == pc.Color.homeRow() && col == 7:
					pc.HasMoved = !p.Castling.kingside(pc.Color)
				case row == pc.Color.homeRow() && col == 0:
					pc.HasMoved = !p.Castling.queenside(pc.Color)
				default:
					pc.HasMoved = true
				}
			case NoKind:
			default:
				pc.HasMoved = false
			}
		}
	}
}
