package model

import (
	"errors"
	"fmt"
)

var (
	ErrNoPiece         = errors.New("no piece at from square")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrIllegalMove     = errors.New("illegal move")
	ErrNothingToUndo   = errors.New("no move to undo")
	ErrNothingToRedo   = errors.New("no move to redo")
	ErrInvalidFEN      = errors.New("invalid fen")
	ErrInvalidNotation = errors.New("invalid move notation")
	ErrMissingKing     = errors.New("king not on board")
	ErrNoMatchingMove  = errors.New("no legal move matches observation")
	ErrAmbiguousMove   = errors.New("observation matches more than one move")
	ErrUnknownPiece    = errors.New("occupied square without piece type")
)

// PositionRule names a constraint an external engine places on a position.
type PositionRule string

const (
	RuleKingCount  PositionRule = "king_count"
	RulePawnCount  PositionRule = "pawn_count"
	RulePawnOnEdge PositionRule = "pawn_on_edge_rank"
)

// InvalidPositionError reports which rule made a position unusable for an external engine.
type InvalidPositionError struct {
	Rule   PositionRule
	Detail string
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("position invalid for external engine (%s): %s", e.Rule, e.Detail)
}
