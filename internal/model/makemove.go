package model

// MakeMove plays m on the board without validating it and returns the record
// that reverses it. Terminal flags, move count and history are untouched, so
// search and legality checks can call it freely and pair it with UnmakeMove.
func (p *Position) MakeMove(m Move) MoveRecord {
	pc := p.At(m.From)
	rec := MoveRecord{
		From:            m.From,
		To:              m.To,
		Piece:           pc,
		Captured:        p.At(m.To),
		CapturedAt:      m.To,
		EnPassantBefore: p.EnPassant,
		CastlingBefore:  p.Castling,
	}

	switch pc.Kind {
	case Pawn:
		if m.To == p.EnPassant && m.From.Col != m.To.Col && rec.Captured.Empty() {
			rec.EnPassantCapture = true
			rec.CapturedAt = Square{Row: m.From.Row, Col: m.To.Col}
			rec.Captured = p.At(rec.CapturedAt)
		}
		if m.To.Row == pc.Color.Opponent().homeRow() {
			rec.Promotion = m.Promotion
			if rec.Promotion == NoKind || rec.Promotion == Pawn || rec.Promotion == King {
				rec.Promotion = Queen
			}
		}
	case King:
		if abs(m.To.Col-m.From.Col) == 2 {
			rec.IsCastle = true
			row := m.From.Row
			if m.To.Col > m.From.Col {
				rec.CastleRook = CastleRookMove{From: Square{Row: row, Col: 7}, To: Square{Row: row, Col: 5}}
			} else {
				rec.CastleRook = CastleRookMove{From: Square{Row: row, Col: 0}, To: Square{Row: row, Col: 3}}
			}
		}
	}
	if rec.Captured.Empty() {
		rec.CapturedAt = NoSquare
	}

	p.playForward(&rec)
	return rec
}

// playForward applies the forward effects described by an already built record.
// Redo uses it directly so the original record returns to history unchanged.
func (p *Position) playForward(rec *MoveRecord) {
	pc := rec.Piece

	if rec.IsCastle {
		rook := p.At(rec.CastleRook.From)
		p.set(rec.CastleRook.From, Piece{})
		rook.HasMoved = true
		p.set(rec.CastleRook.To, rook)
	}
	if rec.EnPassantCapture {
		p.set(rec.CapturedAt, Piece{})
	}

	p.set(rec.From, Piece{})
	pc.HasMoved = true
	if rec.Promotion != NoKind {
		pc.Kind = rec.Promotion
	}
	p.set(rec.To, pc)

	switch rec.Piece.Kind {
	case King:
		p.Castling.clear(rec.Piece.Color)
	case Rook:
		p.Castling.clearRookCorner(rec.From, rec.Piece.Color)
	}
	if rec.Captured.Kind == Rook {
		p.Castling.clearRookCorner(rec.CapturedAt, rec.Captured.Color)
	}

	p.EnPassant = NoSquare
	if rec.Piece.Kind == Pawn && abs(rec.To.Row-rec.From.Row) == 2 {
		p.EnPassant = Square{Row: (rec.From.Row + rec.To.Row) / 2, Col: rec.From.Col}
	}
	p.SideToMove = p.SideToMove.Opponent()
}

// UnmakeMove reverses MakeMove exactly: board, has-moved flags, rights,
// en passant target and side to move.
func (p *Position) UnmakeMove(rec *MoveRecord) {
	p.set(rec.To, Piece{})
	p.set(rec.From, rec.Piece)
	if !rec.Captured.Empty() {
		p.set(rec.CapturedAt, rec.Captured)
	}
	if rec.IsCastle {
		rook := p.At(rec.CastleRook.To)
		p.set(rec.CastleRook.To, Piece{})
		rook.HasMoved = false
		p.set(rec.CastleRook.From, rook)
	}
	p.EnPassant = rec.EnPassantBefore
	p.Castling = rec.CastlingBefore
	p.SideToMove = p.SideToMove.Opponent()
}
