package model

var (
	rookDirs      = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs    = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightOffsets = [8][2]int{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingOffsets   = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// PseudoLegalMoves lists destinations for the piece on from, ignoring whether
// the move exposes its own king.
func (p *Position) PseudoLegalMoves(from Square) []Square {
	if !from.Valid() {
		return nil
	}
	pc := p.At(from)
	switch pc.Kind {
	case Pawn:
		return p.pawnMoves(from, pc, nil)
	case Knight:
		return p.stepMoves(from, pc, knightOffsets[:], nil)
	case Bishop:
		return p.slideMoves(from, pc, bishopDirs[:], nil)
	case Rook:
		return p.slideMoves(from, pc, rookDirs[:], nil)
	case Queen:
		return p.slideMoves(from, pc, rookDirs[:], p.slideMoves(from, pc, bishopDirs[:], nil))
	case King:
		return p.castleMoves(from, pc, p.stepMoves(from, pc, kingOffsets[:], nil))
	}
	return nil
}

func pawnStartRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

func (p *Position) pawnMoves(from Square, pc Piece, dst []Square) []Square {
	dir := pc.Color.forward()
	one := from.offset(dir, 0)
	if one.Valid() && p.At(one).Empty() {
		dst = append(dst, one)
		two := from.offset(2*dir, 0)
		if !pc.HasMoved && from.Row == pawnStartRow(pc.Color) && two.Valid() && p.At(two).Empty() {
			dst = append(dst, two)
		}
	}
	for _, dc := range [2]int{-1, 1} {
		diag := from.offset(dir, dc)
		if !diag.Valid() {
			continue
		}
		target := p.At(diag)
		if !target.Empty() && target.Color != pc.Color {
			dst = append(dst, diag)
			continue
		}
		if diag == p.EnPassant && target.Empty() {
			victim := p.At(Square{Row: from.Row, Col: diag.Col})
			if victim.Kind == Pawn && victim.Color != pc.Color {
				dst = append(dst, diag)
			}
		}
	}
	return dst
}

func (p *Position) stepMoves(from Square, pc Piece, offsets [][2]int, dst []Square) []Square {
	for _, off := range offsets {
		to := from.offset(off[0], off[1])
		if !to.Valid() {
			continue
		}
		if target := p.At(to); target.Empty() || target.Color != pc.Color {
			dst = append(dst, to)
		}
	}
	return dst
}

func (p *Position) slideMoves(from Square, pc Piece, dirs [][2]int, dst []Square) []Square {
	for _, dir := range dirs {
		to := from.offset(dir[0], dir[1])
		for to.Valid() {
			target := p.At(to)
			if target.Empty() {
				dst = append(dst, to)
			} else {
				if target.Color != pc.Color {
					dst = append(dst, to)
				}
				break
			}
			to = to.offset(dir[0], dir[1])
		}
	}
	return dst
}

// castleMoves adds the two-square king destinations. Rights are the
// authoritative gate; piece placement and attacks are checked on top.
func (p *Position) castleMoves(from Square, pc Piece, dst []Square) []Square {
	row := pc.Color.homeRow()
	if pc.HasMoved || from != (Square{Row: row, Col: 4}) {
		return dst
	}
	opp := pc.Color.Opponent()
	if p.IsSquareAttacked(from, opp) {
		return dst
	}
	if p.Castling.kingside(pc.Color) && p.castlePathClear(pc.Color, row, 7, []int{5, 6}, []int{5, 6}) {
		dst = append(dst, Square{Row: row, Col: 6})
	}
	if p.Castling.queenside(pc.Color) && p.castlePathClear(pc.Color, row, 0, []int{1, 2, 3}, []int{3, 2}) {
		dst = append(dst, Square{Row: row, Col: 2})
	}
	return dst
}

func (p *Position) castlePathClear(c Color, row, rookCol int, between, kingPath []int) bool {
	rook := p.Board[row][rookCol]
	if rook.Kind != Rook || rook.Color != c || rook.HasMoved {
		return false
	}
	for _, col := range between {
		if !p.Board[row][col].Empty() {
			return false
		}
	}
	opp := c.Opponent()
	for _, col := range kingPath {
		if p.IsSquareAttacked(Square{Row: row, Col: col}, opp) {
			return false
		}
	}
	return true
}

// Attacks reports whether the piece on from attacks target. Pawns attack only
// their two forward diagonals; sliders need a clear ray.
func (p *Position) Attacks(from, target Square) bool {
	if from == target {
		return false
	}
	pc := p.At(from)
	dr, dc := target.Row-from.Row, target.Col-from.Col
	switch pc.Kind {
	case Pawn:
		return dr == pc.Color.forward() && abs(dc) == 1
	case Knight:
		return (abs(dr) == 2 && abs(dc) == 1) || (abs(dr) == 1 && abs(dc) == 2)
	case King:
		return abs(dr) <= 1 && abs(dc) <= 1
	case Rook:
		return (dr == 0 || dc == 0) && p.rayClear(from, target)
	case Bishop:
		return abs(dr) == abs(dc) && p.rayClear(from, target)
	case Queen:
		return (dr == 0 || dc == 0 || abs(dr) == abs(dc)) && p.rayClear(from, target)
	}
	return false
}

// rayClear checks the squares strictly between from and to on a straight line.
func (p *Position) rayClear(from, to Square) bool {
	sr, sc := sign(to.Row-from.Row), sign(to.Col-from.Col)
	for sq := from.offset(sr, sc); sq != to; sq = sq.offset(sr, sc) {
		if !p.At(sq).Empty() {
			return false
		}
	}
	return true
}

// IsSquareAttacked scans every piece of color by for an attack on sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pc := p.Board[row][col]
			if pc.Empty() || pc.Color != by {
				continue
			}
			if p.Attacks(Square{Row: row, Col: col}, sq) {
				return true
			}
		}
	}
	return false
}

// InCheck reports whether the king of color c is attacked. A missing king is never in check.
func (p *Position) InCheck(c Color) bool {
	king, ok := p.KingSquare(c)
	if !ok {
		return false
	}
	return p.IsSquareAttacked(king, c.Opponent())
}

// leavesKingInCheck plays the move on the live board, tests the mover's king
// and takes the move back.
func (p *Position) leavesKingInCheck(from, to Square) bool {
	mover := p.At(from).Color
	rec := p.MakeMove(Move{From: from, To: to})
	inCheck := p.InCheck(mover)
	p.UnmakeMove(&rec)
	return inCheck
}

// LegalMoves lists legal destinations for the piece on from. Pieces not
// belonging to the side to move have none.
func (p *Position) LegalMoves(from Square) []Square {
	if !from.Valid() {
		return nil
	}
	pc := p.At(from)
	if pc.Empty() || pc.Color != p.SideToMove {
		return nil
	}
	pseudo := p.PseudoLegalMoves(from)
	legal := pseudo[:0]
	for _, to := range pseudo {
		if !p.leavesKingInCheck(from, to) {
			legal = append(legal, to)
		}
	}
	return legal
}

func (p *Position) IsLegal(from, to Square) bool {
	for _, sq := range p.LegalMoves(from) {
		if sq == to {
			return true
		}
	}
	return false
}

// IsPromotion reports whether moving the piece on from to to promotes a pawn.
func (p *Position) IsPromotion(from, to Square) bool {
	pc := p.At(from)
	return pc.Kind == Pawn && to.Row == pc.Color.Opponent().homeRow()
}

// AllLegalMoves lists every legal move for the side to move. Promotions are
// listed once, as a queen.
func (p *Position) AllLegalMoves() []Move {
	moves := make([]Move, 0, 48)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{Row: row, Col: col}
			pc := p.Board[row][col]
			if pc.Empty() || pc.Color != p.SideToMove {
				continue
			}
			for _, to := range p.LegalMoves(from) {
				m := Move{From: from, To: to}
				if p.IsPromotion(from, to) {
					m.Promotion = Queen
				}
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// HasLegalMove stops at the first piece with a legal move.
func (p *Position) HasLegalMove() bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pc := p.Board[row][col]
			if pc.Empty() || pc.Color != p.SideToMove {
				continue
			}
			if len(p.LegalMoves(Square{Row: row, Col: col})) > 0 {
				return true
			}
		}
	}
	return false
}
