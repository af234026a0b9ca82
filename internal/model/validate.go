package model

import "fmt"

// ValidateForEngine checks the constraints an external engine places on a
// position: one king per side, at most eight pawns per side and no pawn on
// the first or last rank. The returned error is an *InvalidPositionError.
func (p *Position) ValidateForEngine() error {
	var kings, pawns [2]int
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pc := p.Board[row][col]
			switch pc.Kind {
			case King:
				kings[pc.Color]++
			case Pawn:
				pawns[pc.Color]++
				if row == 0 || row == 7 {
					return &InvalidPositionError{
						Rule:   RulePawnOnEdge,
						Detail: fmt.Sprintf("%s pawn on %s", pc.Color, Square{Row: row, Col: col}),
					}
				}
			}
		}
	}
	for _, c := range [2]Color{White, Black} {
		if kings[c] != 1 {
			return &InvalidPositionError{
				Rule:   RuleKingCount,
				Detail: fmt.Sprintf("%s has %d kings", c, kings[c]),
			}
		}
		if pawns[c] > 8 {
			return &InvalidPositionError{
				Rule:   RulePawnCount,
				Detail: fmt.Sprintf("%s has %d pawns", c, pawns[c]),
			}
		}
	}
	return nil
}
