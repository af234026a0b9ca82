package engine

import (
	"context"
	"errors"
	"time"

	"github.com/benbeisheim/chess-engine/internal/model"
	"go.uber.org/zap"
)

// Mate is the base score of a checkmate. Mates found with more depth left
// score higher so the search prefers the quickest one.
const Mate = 100000

const (
	infinity          = 1 << 30
	nodeCheckInterval = 1024
)

var ErrNoLegalMoves = errors.New("no legal moves")

type Source string

const (
	SourceBook     Source = "book"
	SourceSearch   Source = "search"
	SourceExternal Source = "external"
)

// Result describes one suggestion. Score is from the point of view of the
// side to move; Depth is the deepest iteration that contributed.
type Result struct {
	Move    model.Move    `json:"move"`
	Score   int           `json:"score"`
	Depth   int           `json:"depth"`
	Nodes   int           `json:"nodes"`
	Elapsed time.Duration `json:"elapsed"`
	Source  Source        `json:"source"`
}

type Options struct {
	MaxDepth        int
	QuiescenceDepth int
	// Book is consulted before searching. Nil disables it.
	Book *Book
}

func DefaultOptions() Options {
	return Options{
		MaxDepth:        3,
		QuiescenceDepth: 8,
		Book:            DefaultBook(),
	}
}

// Engine runs single-threaded searches. One Engine may serve many
// positions, but a position must not be mutated while a search on it runs.
type Engine struct {
	opts   Options
	logger *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 3
	}
	if opts.QuiescenceDepth < 0 {
		opts.QuiescenceDepth = 0
	}
	return &Engine{opts: opts, logger: logger}
}

// BestMove picks a move for the side to move within budget. The position is
// searched in place and is bit-identical on return.
func (e *Engine) BestMove(ctx context.Context, pos *model.Position, budget time.Duration) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	clock := NewClock(budget)
	clock.Start()
	defer clock.Stop()

	if m, ok := e.opts.Book.Lookup(pos); ok {
		e.logger.Info("book move", zap.String("move", m.String()), zap.Int("ply", pos.MoveCount))
		return Result{Move: m, Source: SourceBook, Elapsed: clock.Elapsed()}, nil
	}

	moves := candidateMoves(pos)
	if len(moves) == 0 {
		return Result{}, ErrNoLegalMoves
	}
	orderMoves(pos, moves, model.NullMove)

	s := &searcher{
		ctx:    ctx,
		pos:    pos,
		root:   pos.SideToMove,
		clock:  clock,
		qdepth: e.opts.QuiescenceDepth,
		tt:     make(map[ttKey]ttEntry),
	}
	res := Result{Move: moves[0], Source: SourceSearch}

	for depth := 1; depth <= e.opts.MaxDepth; depth++ {
		if clock.Expired() || ctx.Err() != nil {
			break
		}
		orderMoves(pos, moves, res.Move)

		best, bestScore, completed := model.NullMove, -infinity, 0
		alpha := -infinity
		for _, m := range moves {
			if clock.Expired() || ctx.Err() != nil {
				s.aborted = true
				break
			}
			rec := pos.MakeMove(m)
			score := s.minimax(depth-1, alpha, infinity)
			pos.UnmakeMove(&rec)
			if s.aborted {
				break
			}
			completed++
			if score > bestScore {
				best, bestScore = m, score
			}
			if score > alpha {
				alpha = score
			}
		}

		if completed > 0 {
			res.Move, res.Score, res.Depth = best, bestScore, depth
		}
		e.logger.Debug("search depth done",
			zap.Int("depth", depth),
			zap.String("best", res.Move.String()),
			zap.Int("score", res.Score),
			zap.Int("nodes", s.nodes),
			zap.Int("completed", completed),
			zap.Bool("aborted", s.aborted),
		)
		if s.aborted || bestScore >= Mate {
			break
		}
	}

	res.Nodes = s.nodes
	res.Elapsed = clock.Elapsed()
	return res, nil
}

type ttFlag uint8

const (
	ttExact ttFlag = iota
	ttLower
	ttUpper
)

type ttKey struct {
	fen        string
	depth      int
	maximizing bool
}

type ttEntry struct {
	score int
	flag  ttFlag
}

// searcher holds the scratch state of one top-level search call.
type searcher struct {
	ctx     context.Context
	pos     *model.Position
	root    model.Color
	clock   *Clock
	qdepth  int
	tt      map[ttKey]ttEntry
	nodes   int
	aborted bool
}

// tick counts a node and polls the clock every nodeCheckInterval nodes.
func (s *searcher) tick() bool {
	s.nodes++
	if s.nodes%nodeCheckInterval == 0 && s.clock != nil {
		if s.clock.Expired() || (s.ctx != nil && s.ctx.Err() != nil) {
			s.aborted = true
		}
	}
	return s.aborted
}

// static scores the board from the root side's point of view.
func (s *searcher) static() int {
	score := Score(s.pos)
	if s.root == model.Black {
		return -score
	}
	return score
}

// terminal scores a node without legal moves.
func (s *searcher) terminal(depth int) int {
	if !s.pos.InCheck(s.pos.SideToMove) {
		return 0
	}
	if s.pos.SideToMove == s.root {
		return -(Mate + depth)
	}
	return Mate + depth
}

func (s *searcher) minimax(depth, alpha, beta int) int {
	if s.tick() {
		return 0
	}
	if depth == 0 {
		return s.quiescence(alpha, beta, 0)
	}
	maximizing := s.pos.SideToMove == s.root
	key := ttKey{fen: s.pos.Fingerprint(), depth: depth, maximizing: maximizing}
	if e, ok := s.tt[key]; ok {
		switch {
		case e.flag == ttExact,
			e.flag == ttLower && e.score >= beta,
			e.flag == ttUpper && e.score <= alpha:
			return e.score
		}
	}

	moves := candidateMoves(s.pos)
	if len(moves) == 0 {
		score := s.terminal(depth)
		s.tt[key] = ttEntry{score: score, flag: ttExact}
		return score
	}
	orderMoves(s.pos, moves, model.NullMove)

	alphaOrig, betaOrig := alpha, beta
	best := infinity
	if maximizing {
		best = -infinity
	}
	for _, m := range moves {
		rec := s.pos.MakeMove(m)
		score := s.minimax(depth-1, alpha, beta)
		s.pos.UnmakeMove(&rec)
		if s.aborted {
			return 0
		}
		if maximizing {
			best = max(best, score)
			alpha = max(alpha, best)
		} else {
			best = min(best, score)
			beta = min(beta, best)
		}
		if alpha >= beta {
			break
		}
	}

	flag := ttExact
	switch {
	case best <= alphaOrig:
		flag = ttUpper
	case best >= betaOrig:
		flag = ttLower
	}
	s.tt[key] = ttEntry{score: best, flag: flag}
	return best
}

// quiescence follows captures only. Either side may stand pat on the static
// score instead of capturing.
func (s *searcher) quiescence(alpha, beta, qdepth int) int {
	if s.tick() {
		return 0
	}
	moves := s.pos.AllLegalMoves()
	if len(moves) == 0 {
		return s.terminal(0)
	}
	best := s.static()
	if qdepth >= s.qdepth {
		return best
	}
	maximizing := s.pos.SideToMove == s.root
	if maximizing {
		if best >= beta {
			return best
		}
		alpha = max(alpha, best)
	} else {
		if best <= alpha {
			return best
		}
		beta = min(beta, best)
	}

	captures := captureMoves(s.pos, moves)
	orderMoves(s.pos, captures, model.NullMove)
	for _, m := range captures {
		rec := s.pos.MakeMove(m)
		score := s.quiescence(alpha, beta, qdepth+1)
		s.pos.UnmakeMove(&rec)
		if s.aborted {
			return 0
		}
		if maximizing {
			best = max(best, score)
			alpha = max(alpha, best)
		} else {
			best = min(best, score)
			beta = min(beta, best)
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// Minimax is the plain reference search: the same move set, leaf scoring
// and quiescence horizon as BestMove, without pruning or caching. The score
// is from the side to move's point of view.
func Minimax(pos *model.Position, depth, quiescenceDepth int) int {
	s := &searcher{pos: pos, root: pos.SideToMove, qdepth: quiescenceDepth}
	return s.plain(depth)
}

func (s *searcher) plain(depth int) int {
	if depth == 0 {
		return s.plainQuiescence(0)
	}
	moves := candidateMoves(s.pos)
	if len(moves) == 0 {
		return s.terminal(depth)
	}
	maximizing := s.pos.SideToMove == s.root
	best := infinity
	if maximizing {
		best = -infinity
	}
	for _, m := range moves {
		rec := s.pos.MakeMove(m)
		score := s.plain(depth - 1)
		s.pos.UnmakeMove(&rec)
		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}
	return best
}

func (s *searcher) plainQuiescence(qdepth int) int {
	moves := s.pos.AllLegalMoves()
	if len(moves) == 0 {
		return s.terminal(0)
	}
	best := s.static()
	if qdepth >= s.qdepth {
		return best
	}
	maximizing := s.pos.SideToMove == s.root
	for _, m := range captureMoves(s.pos, moves) {
		rec := s.pos.MakeMove(m)
		score := s.plainQuiescence(qdepth + 1)
		s.pos.UnmakeMove(&rec)
		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}
	return best
}
