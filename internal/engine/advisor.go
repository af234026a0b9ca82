package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbeisheim/chess-engine/internal/model"
	"go.uber.org/zap"
)

// ExternalEngine asks an out-of-process engine for a move in coordinate
// notation.
type ExternalEngine interface {
	BestMove(ctx context.Context, fen string, budget time.Duration) (string, error)
}

// Advisor prefers the external engine and falls back to the built-in search
// whenever the external one is absent, refuses the position or answers with
// something unusable.
type Advisor struct {
	engine   *Engine
	external ExternalEngine
	logger   *zap.Logger
}

func NewAdvisor(engine *Engine, external ExternalEngine, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{engine: engine, external: external, logger: logger}
}

// Suggest returns a legal move for the side to move.
func (a *Advisor) Suggest(ctx context.Context, pos *model.Position, budget time.Duration) (Result, error) {
	if a.external != nil {
		res, err := a.askExternal(ctx, pos, budget)
		if err == nil {
			return res, nil
		}
		var invalid *model.InvalidPositionError
		if errors.As(err, &invalid) {
			a.logger.Warn("position rejected for external engine",
				zap.String("rule", string(invalid.Rule)),
				zap.String("detail", invalid.Detail),
			)
		} else {
			a.logger.Warn("external engine failed, using internal search", zap.Error(err))
		}
	}
	return a.engine.BestMove(ctx, pos, budget)
}

func (a *Advisor) askExternal(ctx context.Context, pos *model.Position, budget time.Duration) (Result, error) {
	if err := pos.ValidateForEngine(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	answer, err := a.external.BestMove(ctx, pos.FEN(), budget)
	if err != nil {
		return Result{}, err
	}
	m, err := model.ParseCoordinateMove(answer)
	if err != nil {
		return Result{}, err
	}
	if !pos.IsLegal(m.From, m.To) {
		return Result{}, fmt.Errorf("%w: external engine answered %s", model.ErrIllegalMove, answer)
	}
	switch {
	case !pos.IsPromotion(m.From, m.To):
		m.Promotion = model.NoKind
	case m.Promotion == model.NoKind:
		m.Promotion = model.Queen
	}
	return Result{Move: m, Source: SourceExternal, Elapsed: time.Since(start)}, nil
}
