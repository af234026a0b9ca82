package engine

import (
	"slices"

	"github.com/benbeisheim/chess-engine/internal/model"
)

// candidateMoves is the move set every search walks: all legal moves, with
// each promotion tried as a queen and as a knight.
func candidateMoves(p *model.Position) []model.Move {
	moves := p.AllLegalMoves()
	for _, m := range moves {
		if m.Promotion == model.Queen {
			under := m
			under.Promotion = model.Knight
			moves = append(moves, under)
		}
	}
	return moves
}

func isCapture(p *model.Position, m model.Move) bool {
	if !p.At(m.To).Empty() {
		return true
	}
	return p.At(m.From).Kind == model.Pawn && m.To == p.EnPassant && m.From.Col != m.To.Col
}

// captureMoves keeps the captures from a legal move list, in place.
func captureMoves(p *model.Position, moves []model.Move) []model.Move {
	out := moves[:0]
	for _, m := range moves {
		if isCapture(p, m) {
			out = append(out, m)
		}
	}
	return out
}

// orderScore ranks captures by victim value, then destination centrality,
// then pawn advancement.
func orderScore(p *model.Position, m model.Move) int {
	score := 0
	if isCapture(p, m) {
		victim := p.At(m.To).Kind
		if victim == model.NoKind {
			victim = model.Pawn
		}
		score += 1000 + PieceValue(victim)
	}
	score += centrality(m.To) * 5
	if pc := p.At(m.From); pc.Kind == model.Pawn {
		if pc.Color == model.White {
			score += (7 - m.To.Row) * 5
		} else {
			score += m.To.Row * 5
		}
	}
	if m.Promotion != model.NoKind {
		score += PieceValue(m.Promotion)
	}
	return score
}

// orderMoves sorts moves best first and puts first, when present, in front.
func orderMoves(p *model.Position, moves []model.Move, first model.Move) {
	type scored struct {
		move  model.Move
		score int
	}
	list := make([]scored, len(moves))
	for i, m := range moves {
		list[i] = scored{move: m, score: orderScore(p, m)}
		if m == first {
			list[i].score = 1 << 30
		}
	}
	slices.SortStableFunc(list, func(a, b scored) int {
		return b.score - a.score
	})
	for i := range list {
		moves[i] = list[i].move
	}
}
