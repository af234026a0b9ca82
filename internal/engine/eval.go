package engine

import (
	"github.com/benbeisheim/chess-engine/internal/model"
)

// Material values in centipawns. The king weight only biases ordering; a
// legal search never captures it.
var pieceValues = [...]int{
	model.NoKind: 0,
	model.Pawn:   100,
	model.Knight: 320,
	model.Bishop: 330,
	model.Rook:   500,
	model.Queen:  900,
	model.King:   20000,
}

func PieceValue(k model.PieceKind) int {
	if int(k) < len(pieceValues) {
		return pieceValues[k]
	}
	return 0
}

const (
	centerBonus         = 15
	developmentBonus    = 20
	castledBonus        = 30
	advancedKingPenalty = 20
	openFilePenalty     = 10
	passedPawnBonus     = 40
	doubledPawnPenalty  = 20
	isolatedPawnPenalty = 15
	connectedPawnBonus  = 10
	bishopPairBonus     = 40
	rookOnSeventhBonus  = 30
	endgamePieceCount   = 12
)

// Piece-square tables are written from White's side: row 0 is rank 8.
// Black reads them mirrored, table[7-row][col].
var pawnTable = [8][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{50, 50, 50, 50, 50, 50, 50, 50},
	{10, 10, 20, 30, 30, 20, 10, 10},
	{5, 5, 10, 25, 25, 10, 5, 5},
	{0, 0, 0, 20, 20, 0, 0, 0},
	{5, -5, -10, 0, 0, -10, -5, 5},
	{5, 10, 10, -20, -20, 10, 10, 5},
	{0, 0, 0, 0, 0, 0, 0, 0},
}

var knightTable = [8][8]int{
	{-50, -40, -30, -30, -30, -30, -40, -50},
	{-40, -20, 0, 0, 0, 0, -20, -40},
	{-30, 0, 10, 15, 15, 10, 0, -30},
	{-30, 5, 15, 20, 20, 15, 5, -30},
	{-30, 0, 15, 20, 20, 15, 0, -30},
	{-30, 5, 10, 15, 15, 10, 5, -30},
	{-40, -20, 0, 5, 5, 0, -20, -40},
	{-50, -40, -30, -30, -30, -30, -40, -50},
}

var bishopTable = [8][8]int{
	{-20, -10, -10, -10, -10, -10, -10, -20},
	{-10, 0, 0, 0, 0, 0, 0, -10},
	{-10, 0, 5, 10, 10, 5, 0, -10},
	{-10, 5, 5, 10, 10, 5, 5, -10},
	{-10, 0, 10, 10, 10, 10, 0, -10},
	{-10, 10, 10, 10, 10, 10, 10, -10},
	{-10, 5, 0, 0, 0, 0, 5, -10},
	{-20, -10, -10, -10, -10, -10, -10, -20},
}

var rookTable = [8][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{5, 10, 10, 10, 10, 10, 10, 5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{0, 0, 0, 5, 5, 0, 0, 0},
}

var queenTable = [8][8]int{
	{-20, -10, -10, -5, -5, -10, -10, -20},
	{-10, 0, 0, 0, 0, 0, 0, -10},
	{-10, 0, 5, 5, 5, 5, 0, -10},
	{-5, 0, 5, 5, 5, 5, 0, -5},
	{0, 0, 5, 5, 5, 5, 0, -5},
	{-10, 5, 5, 5, 5, 5, 0, -10},
	{-10, 0, 5, 0, 0, 0, 0, -10},
	{-20, -10, -10, -5, -5, -10, -10, -20},
}

var kingMiddleTable = [8][8]int{
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-20, -30, -30, -40, -40, -30, -30, -20},
	{-10, -20, -20, -20, -20, -20, -20, -10},
	{20, 20, 0, 0, 0, 0, 20, 20},
	{20, 30, 10, 0, 0, 10, 30, 20},
}

var kingEndTable = [8][8]int{
	{-50, -40, -30, -20, -20, -30, -40, -50},
	{-30, -20, -10, 0, 0, -10, -20, -30},
	{-30, -10, 20, 30, 30, 20, -10, -30},
	{-30, -10, 30, 40, 40, 30, -10, -30},
	{-30, -10, 30, 40, 40, 30, -10, -30},
	{-30, -10, 20, 30, 30, 20, -10, -30},
	{-30, -30, 0, 0, 0, 0, -30, -30},
	{-50, -30, -30, -30, -30, -30, -30, -50},
}

var centerSquares = [4]model.Square{{Row: 3, Col: 3}, {Row: 3, Col: 4}, {Row: 4, Col: 3}, {Row: 4, Col: 4}}

func sideSign(c model.Color) int {
	if c == model.White {
		return 1
	}
	return -1
}

func homeRow(c model.Color) int {
	if c == model.White {
		return 7
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// centrality is 12 on the four center squares and 0 in the corners.
func centrality(sq model.Square) int {
	return 14 - abs(7-2*sq.Row) - abs(7-2*sq.Col)
}

// forEachPiece visits every occupied square.
func forEachPiece(p *model.Position, fn func(sq model.Square, pc model.Piece)) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if pc := p.Board[row][col]; !pc.Empty() {
				fn(model.Square{Row: row, Col: col}, pc)
			}
		}
	}
}

// Material is the signed sum of piece values.
func Material(p *model.Position) int {
	score := 0
	forEachPiece(p, func(_ model.Square, pc model.Piece) {
		score += sideSign(pc.Color) * PieceValue(pc.Kind)
	})
	return score
}

// IsEndgame reports twelve or fewer non-king pieces on the board.
func IsEndgame(p *model.Position) bool {
	n := 0
	forEachPiece(p, func(_ model.Square, pc model.Piece) {
		if pc.Kind != model.King {
			n++
		}
	})
	return n <= endgamePieceCount
}

// PieceSquare sums the table bonus of every piece. Kings switch to the
// endgame table once IsEndgame holds.
func PieceSquare(p *model.Position) int {
	kingTable := &kingMiddleTable
	if IsEndgame(p) {
		kingTable = &kingEndTable
	}
	score := 0
	forEachPiece(p, func(sq model.Square, pc model.Piece) {
		var table *[8][8]int
		switch pc.Kind {
		case model.Pawn:
			table = &pawnTable
		case model.Knight:
			table = &knightTable
		case model.Bishop:
			table = &bishopTable
		case model.Rook:
			table = &rookTable
		case model.Queen:
			table = &queenTable
		case model.King:
			table = kingTable
		default:
			return
		}
		row := sq.Row
		if pc.Color == model.Black {
			row = 7 - row
		}
		score += sideSign(pc.Color) * table[row][sq.Col]
	})
	return score
}

// CenterControl scores d4, e4, d5 and e5 by which side attacks them.
func CenterControl(p *model.Position) int {
	score := 0
	for _, sq := range centerSquares {
		if p.IsSquareAttacked(sq, model.White) {
			score += centerBonus
		}
		if p.IsSquareAttacked(sq, model.Black) {
			score -= centerBonus
		}
	}
	return score
}

// Development rewards knights and bishops that have left their back rank.
func Development(p *model.Position) int {
	score := 0
	forEachPiece(p, func(sq model.Square, pc model.Piece) {
		if (pc.Kind == model.Knight || pc.Kind == model.Bishop) && sq.Row != homeRow(pc.Color) {
			score += sideSign(pc.Color) * developmentBonus
		}
	})
	return score
}

// KingSafety rewards a king on a castled square and penalises one that has
// walked three or more ranks up the board or sits beside files with no
// friendly pawn. It fails when either king is missing.
func KingSafety(p *model.Position) (int, error) {
	score := 0
	for _, c := range [2]model.Color{model.White, model.Black} {
		king, ok := p.KingSquare(c)
		if !ok {
			return 0, model.ErrMissingKing
		}
		score += sideSign(c) * kingSafety(p, king, c)
	}
	return score, nil
}

func kingSafety(p *model.Position, king model.Square, c model.Color) int {
	score := 0
	home := homeRow(c)
	if king.Row == home && (king.Col == 6 || king.Col == 2) {
		score += castledBonus
	}
	if abs(king.Row-home) >= 3 {
		score -= advancedKingPenalty
	}
	for dc := -1; dc <= 1; dc++ {
		col := king.Col + dc
		if col < 0 || col > 7 {
			continue
		}
		if !hasPawnOnFile(p, col, c) {
			score -= openFilePenalty
		}
	}
	return score
}

func hasPawnOnFile(p *model.Position, col int, c model.Color) bool {
	for row := 0; row < 8; row++ {
		if pc := p.Board[row][col]; pc.Kind == model.Pawn && pc.Color == c {
			return true
		}
	}
	return false
}

// PawnStructure scores passed, doubled, isolated and connected pawns.
func PawnStructure(p *model.Position) int {
	score := 0
	forEachPiece(p, func(sq model.Square, pc model.Piece) {
		if pc.Kind != model.Pawn {
			return
		}
		s := 0
		if isPassedPawn(p, sq, pc.Color) {
			s += passedPawnBonus
		}
		if isDoubledPawn(p, sq, pc.Color) {
			s -= doubledPawnPenalty
		}
		if isIsolatedPawn(p, sq, pc.Color) {
			s -= isolatedPawnPenalty
		}
		for _, dc := range [2]int{-1, 1} {
			col := sq.Col + dc
			if col < 0 || col > 7 {
				continue
			}
			if n := p.Board[sq.Row][col]; n.Kind == model.Pawn && n.Color == pc.Color {
				s += connectedPawnBonus
			}
		}
		score += sideSign(pc.Color) * s
	})
	return score
}

// isPassedPawn: no enemy pawn ahead on the same or an adjacent file.
func isPassedPawn(p *model.Position, sq model.Square, c model.Color) bool {
	dir := -1
	if c == model.Black {
		dir = 1
	}
	for row := sq.Row + dir; row >= 0 && row < 8; row += dir {
		for dc := -1; dc <= 1; dc++ {
			col := sq.Col + dc
			if col < 0 || col > 7 {
				continue
			}
			if pc := p.Board[row][col]; pc.Kind == model.Pawn && pc.Color != c {
				return false
			}
		}
	}
	return true
}

func isDoubledPawn(p *model.Position, sq model.Square, c model.Color) bool {
	for row := 0; row < 8; row++ {
		if row == sq.Row {
			continue
		}
		if pc := p.Board[row][sq.Col]; pc.Kind == model.Pawn && pc.Color == c {
			return true
		}
	}
	return false
}

func isIsolatedPawn(p *model.Position, sq model.Square, c model.Color) bool {
	for _, dc := range [2]int{-1, 1} {
		col := sq.Col + dc
		if col >= 0 && col < 8 && hasPawnOnFile(p, col, c) {
			return false
		}
	}
	return true
}

func BishopPair(p *model.Position) int {
	var bishops [2]int
	forEachPiece(p, func(_ model.Square, pc model.Piece) {
		if pc.Kind == model.Bishop {
			bishops[pc.Color]++
		}
	})
	score := 0
	if bishops[model.White] >= 2 {
		score += bishopPairBonus
	}
	if bishops[model.Black] >= 2 {
		score -= bishopPairBonus
	}
	return score
}

// RookOnSeventh rewards rooks on the opponent's second rank.
func RookOnSeventh(p *model.Position) int {
	score := 0
	forEachPiece(p, func(sq model.Square, pc model.Piece) {
		if pc.Kind != model.Rook {
			return
		}
		if (pc.Color == model.White && sq.Row == 1) || (pc.Color == model.Black && sq.Row == 6) {
			score += sideSign(pc.Color) * rookOnSeventhBonus
		}
	})
	return score
}

// Activity scores knights, bishops, rooks and queens by how central they
// stand.
func Activity(p *model.Position) int {
	score := 0
	forEachPiece(p, func(sq model.Square, pc model.Piece) {
		switch pc.Kind {
		case model.Knight, model.Bishop, model.Rook, model.Queen:
			score += sideSign(pc.Color) * centrality(sq)
		}
	})
	return score
}

// Hanging penalises every non-king piece that is attacked and undefended by
// seventy percent of its value.
func Hanging(p *model.Position) int {
	score := 0
	forEachPiece(p, func(sq model.Square, pc model.Piece) {
		if pc.Kind == model.King {
			return
		}
		opp := pc.Color.Opponent()
		if p.IsSquareAttacked(sq, opp) && !p.IsSquareAttacked(sq, pc.Color) {
			score -= sideSign(pc.Color) * PieceValue(pc.Kind) * 7 / 10
		}
	})
	return score
}

// Evaluate is the full static evaluation, positive for White.
func Evaluate(p *model.Position) (int, error) {
	safety, err := KingSafety(p)
	if err != nil {
		return 0, err
	}
	return Material(p) +
		PieceSquare(p) +
		CenterControl(p) +
		Development(p) +
		safety +
		PawnStructure(p) +
		BishopPair(p) +
		RookOnSeventh(p) +
		Activity(p) +
		Hanging(p), nil
}

// SimpleEvaluate is material, pawn advancement and minor piece centrality.
// It accepts any board.
func SimpleEvaluate(p *model.Position) int {
	score := 0
	forEachPiece(p, func(sq model.Square, pc model.Piece) {
		s := PieceValue(pc.Kind)
		switch pc.Kind {
		case model.Pawn:
			s += abs(sq.Row-homeRow(pc.Color)) * 5
		case model.Knight, model.Bishop:
			s += centrality(sq)
		}
		score += sideSign(pc.Color) * s
	})
	return score
}

// Score returns Evaluate, or SimpleEvaluate when the full evaluation cannot
// run on this board.
func Score(p *model.Position) int {
	if s, err := Evaluate(p); err == nil {
		return s
	}
	return SimpleEvaluate(p)
}
