package model

import "fmt"

// notate renders a short algebraic label for a played move, e.g. "Nf3",
// "exd5", "O-O", "e8=Q+". It reads the position after the move.
func notate(rec *MoveRecord, p *Position) string {
	var s string
	switch {
	case rec.IsCastle && rec.To.Col == 6:
		s = "O-O"
	case rec.IsCastle:
		s = "O-O-O"
	default:
		prefix := ""
		if rec.Piece.Kind != Pawn {
			prefix = string(rec.Piece.Kind.Letter())
		}
		capture := ""
		if rec.IsCapture() {
			capture = "x"
			if rec.Piece.Kind == Pawn {
				prefix = rec.From.String()[:1]
			}
		}
		s = fmt.Sprintf("%s%s%s", prefix, capture, rec.To)
		if rec.Promotion != NoKind {
			s += "=" + string(rec.Promotion.Letter())
		}
	}
	switch {
	case p.Checkmate:
		s += "#"
	case p.Check:
		s += "+"
	}
	return s
}
