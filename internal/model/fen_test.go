package model

import (
	"errors"
	"testing"
)

func TestStartingFEN(t *testing.T) {
	if got := NewPosition().FEN(); got != StartFEN {
		t.Fatalf("FEN() = %q, want %q", got, StartFEN)
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/8/8/8/8/8/8/R3K2R w Kq - 0 1",
		"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 1",
		"8/8/8/8/8/1q6/2k5/K7 w - - 0 1",
		"4k3/1P6/8/8/8/8/8/4K3 b - - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			p, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			if got := p.FEN(); got != fen {
				t.Fatalf("round trip = %q", got)
			}
		})
	}
}

func TestFENAfterMoves(t *testing.T) {
	g := NewGame()
	play(t, g, "e2e4")
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if got := g.Position().FEN(); got != want {
		t.Fatalf("FEN() = %q, want %q", got, want)
	}
	if got := g.Position().Fingerprint(); got+" 0 1" != want {
		t.Fatalf("Fingerprint() = %q", got)
	}
}

func TestFENCastlingNeedsHomeSquares(t *testing.T) {
	p, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	p.Board[7][7] = Piece{}
	p.Board[0][4], p.Board[0][5] = Piece{}, Piece{Kind: King, Color: Black}
	if got, want := p.FEN(), "r4k1r/8/8/8/8/8/8/R3K3 w Q - 0 1"; got != want {
		t.Fatalf("FEN() = %q, want %q", got, want)
	}
}

func TestParseFENInfersHasMoved(t *testing.T) {
	p, err := ParseFEN("r3k2r/8/8/4P3/8/8/P7/R3K2R w Kq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		sq    string
		moved bool
	}{
		{"a2", false},
		{"e5", true},
		{"e1", false},
		{"h1", false},
		{"a1", true},
		{"a8", false},
		{"h8", true},
	}
	for _, tt := range tests {
		if got := p.At(Sq(tt.sq)).HasMoved; got != tt.moved {
			t.Errorf("%s HasMoved = %v, want %v", tt.sq, got, tt.moved)
		}
	}
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"too few fields", "8/8/8/8/8/8/8/8 w"},
		{"seven ranks", "8/8/8/8/8/8/8 w - - 0 1"},
		{"long rank", "9/8/8/8/8/8/8/8 w - - 0 1"},
		{"short rank", "7/8/8/8/8/8/8/8 w - - 0 1"},
		{"bad piece", "x7/8/8/8/8/8/8/8 w - - 0 1"},
		{"bad color", "8/8/8/8/8/8/8/8 x - - 0 1"},
		{"bad castling", "8/8/8/8/8/8/8/8 w X - 0 1"},
		{"bad en passant", "8/8/8/8/8/8/8/8 w - e4 0 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFEN(tt.fen); !errors.Is(err, ErrInvalidFEN) {
				t.Fatalf("err = %v, want ErrInvalidFEN", err)
			}
		})
	}
}

func TestCoordinateNotation(t *testing.T) {
	m, err := ParseCoordinateMove("e7e8q")
	if err != nil {
		t.Fatal(err)
	}
	if m.From != (Square{Row: 1, Col: 4}) || m.To != (Square{Row: 0, Col: 4}) || m.Promotion != Queen {
		t.Fatalf("parsed %+v", m)
	}
	if m.String() != "e7e8q" {
		t.Fatalf("String() = %q", m.String())
	}
	if sq := Sq("a1"); sq.Row != 7 || sq.Col != 0 {
		t.Fatalf("a1 = %+v", sq)
	}
	for _, bad := range []string{"", "e2", "e2e9", "i2e4", "e7e8k", "e2e4e5"} {
		if _, err := ParseCoordinateMove(bad); !errors.Is(err, ErrInvalidNotation) {
			t.Errorf("ParseCoordinateMove(%q) err = %v", bad, err)
		}
	}
}
