package model

import "fmt"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	switch string(b) {
	case "white", "w":
		*c = White
	case "black", "b":
		*c = Black
	default:
		return fmt.Errorf("unknown color %q", string(b))
	}
	return nil
}

// forward is the row delta a pawn of this color advances by.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

// homeRow is the back rank row for the color.
func (c Color) homeRow() int {
	if c == White {
		return 7
	}
	return 0
}

type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (k PieceKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return ""
}

// Letter returns the uppercase FEN letter for the kind.
func (k PieceKind) Letter() byte {
	switch k {
	case King:
		return 'K'
	case Queen:
		return 'Q'
	case Rook:
		return 'R'
	case Bishop:
		return 'B'
	case Knight:
		return 'N'
	case Pawn:
		return 'P'
	}
	return 0
}

func (k PieceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PieceKind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = PieceKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece kind %q", string(b))
}

// kindFromLetter accepts either case.
func kindFromLetter(c byte) PieceKind {
	switch c {
	case 'k', 'K':
		return King
	case 'q', 'Q':
		return Queen
	case 'r', 'R':
		return Rook
	case 'b', 'B':
		return Bishop
	case 'n', 'N':
		return Knight
	case 'p', 'P':
		return Pawn
	}
	return NoKind
}

// Piece is stored by value in the board grid. The zero value is an empty square.
type Piece struct {
	Kind     PieceKind `json:"type"`
	Color    Color     `json:"color"`
	HasMoved bool      `json:"hasMoved"`
}

func (p Piece) Empty() bool {
	return p.Kind == NoKind
}

// FENLetter returns the piece letter, uppercase for White.
func (p Piece) FENLetter() byte {
	l := p.Kind.Letter()
	if l != 0 && p.Color == Black {
		l += 'a' - 'A'
	}
	return l
}

// PieceFromLetter builds an unmoved piece from a FEN letter.
func PieceFromLetter(c byte) (Piece, bool) {
	kind := kindFromLetter(c)
	if kind == NoKind {
		return Piece{}, false
	}
	color := White
	if c >= 'a' && c <= 'z' {
		color = Black
	}
	return Piece{Kind: kind, Color: color}, true
}

// Square is a (row, col) pair. Row 0 is rank 8, col 0 is file a.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

var NoSquare = Square{Row: -1, Col: -1}

func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col, 8-s.Row)
}

func (s Square) offset(dr, dc int) Square {
	return Square{Row: s.Row + dr, Col: s.Col + dc}
}

// ParseSquare converts algebraic notation ("e4") to a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: square %q", ErrInvalidNotation, s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, fmt.Errorf("%w: square %q", ErrInvalidNotation, s)
	}
	return Square{Row: int('8' - rank), Col: int(file - 'a')}, nil
}

func Sq(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}

type CastlingRights struct {
	WhiteKingside  bool `json:"whiteKingside"`
	WhiteQueenside bool `json:"whiteQueenside"`
	BlackKingside  bool `json:"blackKingside"`
	BlackQueenside bool `json:"blackQueenside"`
}

func AllCastlingRights() CastlingRights {
	return CastlingRights{WhiteKingside: true, WhiteQueenside: true, BlackKingside: true, BlackQueenside: true}
}

func (r CastlingRights) kingside(c Color) bool {
	if c == White {
		return r.WhiteKingside
	}
	return r.BlackKingside
}

func (r CastlingRights) queenside(c Color) bool {
	if c == White {
		return r.WhiteQueenside
	}
	return r.BlackQueenside
}

func (r *CastlingRights) clear(c Color) {
	if c == White {
		r.WhiteKingside, r.WhiteQueenside = false, false
	} else {
		r.BlackKingside, r.BlackQueenside = false, false
	}
}

// clearRookCorner drops the right tied to a rook corner square when the rook
// belongs to the side that castles from that corner.
func (r *CastlingRights) clearRookCorner(sq Square, owner Color) {
	if sq.Row != owner.homeRow() {
		return
	}
	switch sq {
	case Square{Row: 7, Col: 7}:
		r.WhiteKingside = false
	case Square{Row: 7, Col: 0}:
		r.WhiteQueenside = false
	case Square{Row: 0, Col: 7}:
		r.BlackKingside = false
	case Square{Row: 0, Col: 0}:
		r.BlackQueenside = false
	}
}

// Position is the live game state. Terminal flags are only written by UpdateGameState.
type Position struct {
	Board      [8][8]Piece    `json:"board"`
	SideToMove Color          `json:"toMove"`
	Castling   CastlingRights `json:"castling"`
	EnPassant  Square         `json:"enPassantTarget"`
	Check      bool           `json:"isCheck"`
	Checkmate  bool           `json:"isCheckmate"`
	Stalemate  bool           `json:"isStalemate"`
	GameOver   bool           `json:"gameOver"`
	MoveCount  int            `json:"moveCount"`
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	p := &Position{}
	p.setup()
	return p
}

// NewEmptyPosition returns a board with no pieces, White to move and all rights set.
func NewEmptyPosition() *Position {
	return &Position{
		SideToMove: White,
		Castling:   AllCastlingRights(),
		EnPassant:  NoSquare,
	}
}

var backRank = [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func (p *Position) setup() {
	*p = *NewEmptyPosition()
	for col := 0; col < 8; col++ {
		p.Board[0][col] = Piece{Kind: backRank[col], Color: Black}
		p.Board[1][col] = Piece{Kind: Pawn, Color: Black}
		p.Board[6][col] = Piece{Kind: Pawn, Color: White}
		p.Board[7][col] = Piece{Kind: backRank[col], Color: White}
	}
}

func (p *Position) At(sq Square) Piece {
	return p.Board[sq.Row][sq.Col]
}

func (p *Position) set(sq Square, pc Piece) {
	p.Board[sq.Row][sq.Col] = pc
}

// KingSquare scans for the king of the given color.
func (p *Position) KingSquare(c Color) (Square, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pc := p.Board[row][col]
			if pc.Kind == King && pc.Color == c {
				return Square{Row: row, Col: col}, true
			}
		}
	}
	return NoSquare, false
}

// SameBoard reports whether two positions agree on every field a move can change.
func (p *Position) SameBoard(o *Position) bool {
	return p.Board == o.Board &&
		p.SideToMove == o.SideToMove &&
		p.Castling == o.Castling &&
		p.EnPassant == o.EnPassant
}

func (p *Position) clearTerminal() {
	p.Check, p.Checkmate, p.Stalemate, p.GameOver = false, false, false, false
}
