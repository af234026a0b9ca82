package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbeisheim/chess-engine/internal/model"
)

func searchOnly(depth int) *Engine {
	return New(Options{MaxDepth: depth, QuiescenceDepth: 4}, nil)
}

func TestBestMoveFindsMateInOne(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want string
	}{
		{"white back rank", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8"},
		{"black back rank", "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", "a8a1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := searchOnly(3).BestMove(context.Background(), mustFEN(t, tt.fen), 0)
			if err != nil {
				t.Fatalf("BestMove: %v", err)
			}
			if res.Move.String() != tt.want {
				t.Fatalf("expected %s, got %s (score %d)", tt.want, res.Move, res.Score)
			}
			if res.Score < Mate {
				t.Fatalf("expected a mate score, got %d", res.Score)
			}
			if res.Source != SourceSearch {
				t.Fatalf("expected search source, got %s", res.Source)
			}
		})
	}
}

func TestBestMoveCapturesHangingQueen(t *testing.T) {
	p := mustFEN(t, "4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
	res, err := searchOnly(2).BestMove(context.Background(), p, 0)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if res.Move.String() != "d1d5" {
		t.Fatalf("expected d1d5, got %s", res.Move)
	}
	if res.Score <= 0 {
		t.Fatalf("expected a winning score, got %d", res.Score)
	}
}

func TestBestMovePromotesToQueen(t *testing.T) {
	p := mustFEN(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
	res, err := searchOnly(2).BestMove(context.Background(), p, 0)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if res.Move.String() != "a7a8q" {
		t.Fatalf("expected a7a8q, got %s", res.Move)
	}
}

func TestCandidateMovesIncludeKnightPromotion(t *testing.T) {
	p := mustFEN(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
	var queen, knight bool
	for _, m := range candidateMoves(p) {
		if m.From == model.Sq("a7") && m.To == model.Sq("a8") {
			switch m.Promotion {
			case model.Queen:
				queen = true
			case model.Knight:
				knight = true
			default:
				t.Fatalf("unexpected promotion %s", m.Promotion)
			}
		}
	}
	if !queen || !knight {
		t.Fatalf("expected queen and knight promotions, got queen=%v knight=%v", queen, knight)
	}
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	fens := []string{
		"4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1",
		"4k3/8/2n5/3p4/4P3/5N2/8/4K3 w - - 0 1",
		"4k3/8/2n5/3p4/4P3/5N2/8/4K3 b - - 0 1",
		"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
	}
	for _, fen := range fens {
		for depth := 1; depth <= 2; depth++ {
			p := mustFEN(t, fen)
			e := New(Options{MaxDepth: depth, QuiescenceDepth: 2}, nil)
			res, err := e.BestMove(context.Background(), p, 0)
			if err != nil {
				t.Fatalf("BestMove(%q): %v", fen, err)
			}
			// Mates end the deepening early, so compare at the depth reached.
			if want := Minimax(p, res.Depth, 2); res.Score != want {
				t.Errorf("%s depth %d: alpha-beta %d, minimax %d", fen, res.Depth, res.Score, want)
			}
		}
	}
}

func TestSearchRestoresPosition(t *testing.T) {
	fens := []string{
		model.StartFEN,
		"r3k2r/pppq1ppp/2npbn2/2b1p3/2B1P3/2NPBN2/PPPQ1PPP/R3K2R w KQkq - 0 1",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
	}
	for _, fen := range fens {
		p := mustFEN(t, fen)
		before := *p
		if _, err := searchOnly(2).BestMove(context.Background(), p, time.Second); err != nil {
			t.Fatalf("BestMove(%q): %v", fen, err)
		}
		if *p != before {
			t.Fatalf("%s: search left the position changed:\n%+v\n%+v", fen, before, *p)
		}
		Minimax(p, 1, 1)
		if *p != before {
			t.Fatalf("%s: Minimax left the position changed", fen)
		}
	}
}

func TestBestMoveWithoutLegalMoves(t *testing.T) {
	p := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if _, err := searchOnly(2).BestMove(context.Background(), p, 0); !errors.Is(err, ErrNoLegalMoves) {
		t.Fatalf("expected ErrNoLegalMoves, got %v", err)
	}
}

func TestBestMoveHonoursDeadline(t *testing.T) {
	p := model.NewPosition()
	e := New(Options{MaxDepth: 6, QuiescenceDepth: 8}, nil)

	start := time.Now()
	res, err := e.BestMove(context.Background(), p, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("search ran for %s", elapsed)
	}
	if !p.IsLegal(res.Move.From, res.Move.To) {
		t.Fatalf("returned illegal move %s", res.Move)
	}
}

func TestBestMoveCancelledContext(t *testing.T) {
	p := model.NewPosition()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := searchOnly(3).BestMove(ctx, p, 0)
	if err != nil {
		t.Fatalf("BestMove: %v", err)
	}
	if res.Depth != 0 {
		t.Fatalf("expected no completed iteration, got depth %d", res.Depth)
	}
	if !p.IsLegal(res.Move.From, res.Move.To) {
		t.Fatalf("returned illegal move %s", res.Move)
	}
}
