package model

// UpdateGameState recomputes check, checkmate and stalemate for the side to
// move. It runs once per apply/undo/redo and never inside search.
func (p *Position) UpdateGameState() {
	p.clearTerminal()
	king, ok := p.KingSquare(p.SideToMove)
	if !ok {
		return
	}
	p.Check = p.IsSquareAttacked(king, p.SideToMove.Opponent())
	if p.HasLegalMove() {
		return
	}
	p.GameOver = true
	if p.Check {
		p.Checkmate = true
	} else {
		p.Stalemate = true
	}
}

// Result describes the finished game from White's point of view, or "" while play continues.
func (p *Position) Result() string {
	switch {
	case p.Checkmate && p.SideToMove == White:
		return "0-1"
	case p.Checkmate:
		return "1-0"
	case p.Stalemate:
		return "1/2-1/2"
	}
	return ""
}
