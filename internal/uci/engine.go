// Package uci drives an external UCI engine such as Stockfish.
package uci

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"go.uber.org/zap"
)

var (
	ErrNoBestMove = errors.New("engine returned no best move")
	ErrClosed     = errors.New("engine closed")
)

// runner is the part of *uci.Engine this package uses.
type runner interface {
	Run(cmds ...uci.Cmd) error
	SearchResults() uci.SearchResults
	Close() error
}

// Engine is safe for concurrent use; requests to the process are serialised.
type Engine struct {
	mu  sync.Mutex
	eng runner
	// maxMoveTime caps the think time of a single request when positive.
	maxMoveTime time.Duration
	logger      *zap.Logger
}

// New starts the engine binary at path and runs the UCI handshake.
func New(path string, logger *zap.Logger) (*Engine, error) {
	eng, err := uci.New(path)
	if err != nil {
		return nil, fmt.Errorf("start engine %s: %w", path, err)
	}
	e, err := newEngine(eng, logger)
	if err != nil {
		eng.Close()
		return nil, err
	}
	return e, nil
}

func newEngine(eng runner, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		return nil, fmt.Errorf("uci handshake: %w", err)
	}
	return &Engine{eng: eng, logger: logger}, nil
}

// LimitMoveTime caps the think time BestMove hands the engine. Zero lifts
// the cap.
func (e *Engine) LimitMoveTime(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxMoveTime = d
}

// BestMove asks the engine to think for budget on the position described by
// fen and returns its answer in coordinate notation.
func (e *Engine) BestMove(ctx context.Context, fen string, budget time.Duration) (string, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("parse fen: %w", err)
	}
	game := chess.NewGame(opt)
	pos := game.Position()

	type answer struct {
		move string
		err  error
	}
	done := make(chan answer, 1)
	go func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.eng == nil {
			done <- answer{err: ErrClosed}
			return
		}

		if e.maxMoveTime > 0 && budget > e.maxMoveTime {
			budget = e.maxMoveTime
		}
		cmdPos := uci.CmdPosition{Position: pos}
		cmdGo := uci.CmdGo{MoveTime: budget}
		if err := e.eng.Run(cmdPos, cmdGo); err != nil {
			done <- answer{err: fmt.Errorf("engine search: %w", err)}
			return
		}
		best := e.eng.SearchResults().BestMove
		if best == nil {
			done <- answer{err: ErrNoBestMove}
			return
		}
		done <- answer{move: chess.UCINotation{}.Encode(pos, best)}
	}()

	select {
	case a := <-done:
		if a.err == nil {
			e.logger.Debug("external engine move", zap.String("fen", fen), zap.String("move", a.move))
		}
		return a.move, a.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.eng == nil {
		return nil
	}
	err := e.eng.Close()
	e.eng = nil
	return err
}
