package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidateForEngine(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		rule PositionRule
	}{
		{name: "start", fen: StartFEN},
		{name: "missing black king", fen: "8/8/8/8/8/8/8/4K3 w - - 0 1", rule: RuleKingCount},
		{name: "two white kings", fen: "4k3/8/8/8/8/8/8/3KK3 w - - 0 1", rule: RuleKingCount},
		{name: "pawn on last rank", fen: "P3k3/8/8/8/8/8/8/4K3 w - - 0 1", rule: RulePawnOnEdge},
		{name: "pawn on first rank", fen: "4k3/8/8/8/8/8/8/p3K3 w - - 0 1", rule: RulePawnOnEdge},
		{name: "nine pawns", fen: "4k3/8/8/8/8/P7/PPPPPPPP/4K3 w - - 0 1", rule: RulePawnCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseFEN(tt.fen)
			if err != nil {
				t.Fatal(err)
			}
			err = p.ValidateForEngine()
			if tt.rule == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var invalid *InvalidPositionError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want *InvalidPositionError", err)
			}
			if invalid.Rule != tt.rule {
				t.Fatalf("rule = %s, want %s", invalid.Rule, tt.rule)
			}
		})
	}
}

func classify(p *Position, typed bool) []ClassificationResult {
	var out []ClassificationResult
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			r := ClassificationResult{
				Square:     fmt.Sprintf("square_%d_%d.png", row, col),
				Label:      LabelEmpty,
				Confidence: 0.9,
			}
			if pc := p.Board[row][col]; !pc.Empty() {
				r.Label = LabelOccupied
				if typed {
					r.Piece = string(pc.FENLetter())
				}
			}
			out = append(out, r)
		}
	}
	return out
}

func TestClassificationLocation(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want Square
	}{
		{"square_0_0.png", true, Square{Row: 0, Col: 0}},
		{"square_7_3.png", true, Square{Row: 7, Col: 3}},
		{"square_8_0.png", false, NoSquare},
		{"square_1.png", false, NoSquare},
		{"tile_1_1.png", false, NoSquare},
		{"square_a_1.png", false, NoSquare},
	}
	for _, tt := range tests {
		sq, ok := ClassificationResult{Square: tt.name}.Location()
		if ok != tt.ok || (ok && sq != tt.want) {
			t.Errorf("Location(%q) = %v, %v", tt.name, sq, ok)
		}
	}
}

func TestPositionFromClassification(t *testing.T) {
	start := NewPosition()
	p, err := PositionFromClassification(classify(start, true), White)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.FEN(); got != StartFEN {
		t.Fatalf("FEN = %q, want %q", got, StartFEN)
	}

	_, err = PositionFromClassification(classify(start, false), White)
	if !errors.Is(err, ErrUnknownPiece) {
		t.Fatalf("err = %v, want ErrUnknownPiece", err)
	}

	state := BoardStateFromClassification(classify(start, false))
	if state[0][0] != "?" || state[4][4] != "" {
		t.Fatalf("untyped board state = %v", state)
	}
	occ := OccupancyFromClassification(classify(start, false))
	if occ != start.Occupancy() {
		t.Fatal("occupancy mismatch")
	}
}

func TestInferMove(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		setup []string
		move  string
	}{
		{name: "pawn push", fen: StartFEN, move: "e2e4"},
		{name: "knight", fen: StartFEN, setup: []string{"e2e4"}, move: "g8f6"},
		{name: "capture", fen: StartFEN, setup: []string{"e2e4", "d7d5"}, move: "e4d5"},
		{name: "castle", fen: "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", move: "e1g1"},
		{name: "en passant", fen: StartFEN, setup: []string{"e2e4", "a7a6", "e4e5", "d7d5"}, move: "e5d6"},
		{name: "promotion", fen: "4k3/1P6/8/8/8/8/8/4K3 w - - 0 1", move: "b7b8q"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gameFromFEN(t, tt.fen)
			play(t, g, tt.setup...)

			shadow := gameFromFEN(t, g.Position().FEN())
			play(t, shadow, tt.move)
			observed := shadow.Position().Occupancy()

			before := *g.Position()
			m, err := g.Position().InferMove(observed)
			if err != nil {
				t.Fatalf("InferMove: %v", err)
			}
			if m.String() != tt.move {
				t.Fatalf("InferMove = %s, want %s", m, tt.move)
			}
			if *g.Position() != before {
				t.Fatal("InferMove changed the position")
			}
		})
	}
}

func TestInferMoveErrors(t *testing.T) {
	p := NewPosition()
	if _, err := p.InferMove(p.Occupancy()); !errors.Is(err, ErrNoMatchingMove) {
		t.Fatalf("unchanged board: err = %v", err)
	}
	occ := p.Occupancy()
	occ[6][4] = false
	occ[3][3] = true
	if _, err := p.InferMove(occ); !errors.Is(err, ErrNoMatchingMove) {
		t.Fatalf("impossible change: err = %v", err)
	}
}
