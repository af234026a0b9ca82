package controller

import (
	"context"
	"errors"
	"time"

	"github.com/benbeisheim/chess-engine/internal/engine"
	"github.com/benbeisheim/chess-engine/internal/model"
	"github.com/benbeisheim/chess-engine/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type GameController struct {
	gameService *service.GameService
	logger      *zap.Logger
	maxBudget   time.Duration
}

func NewGameController(gameService *service.GameService, maxBudget time.Duration, logger *zap.Logger) *GameController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameController{gameService: gameService, maxBudget: maxBudget, logger: logger}
}

type createRequest struct {
	FEN string `json:"fen"`
}

type fenRequest struct {
	FEN string `json:"fen"`
}

type placeRequest struct {
	Square string `json:"square"`
	Piece  string `json:"piece"`
}

type sideRequest struct {
	Color model.Color `json:"color"`
}

type aiRequest struct {
	BudgetMs int  `json:"budgetMs"`
	Apply    bool `json:"apply"`
}

type setupRequest struct {
	Squares []model.ClassificationResult `json:"squares"`
	ToMove  model.Color                  `json:"toMove"`
}

// statusFor maps service and rules errors onto HTTP status codes.
func statusFor(err error) int {
	var invalid *model.InvalidPositionError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNothingToUndo),
		errors.Is(err, model.ErrNothingToRedo),
		errors.Is(err, service.ErrSearchPending),
		errors.Is(err, engine.ErrNoLegalMoves):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrNoPiece),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrInvalidNotation),
		errors.Is(err, model.ErrInvalidFEN),
		errors.Is(err, model.ErrUnknownPiece),
		errors.Is(err, model.ErrNoMatchingMove),
		errors.Is(err, model.ErrAmbiguousMove),
		errors.As(err, &invalid):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fiber.StatusRequestTimeout
	case errors.Is(err, service.ErrQueueClosed):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func (gc *GameController) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		gc.logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("session", c.Params("sessionId")),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateSession(c *fiber.Ctx) error {
	var req createRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, err)
		}
	}
	state, err := gc.gameService.CreateSession(req.FEN)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(state)
}

func (gc *GameController) GetState(c *fiber.Ctx) error {
	state, err := gc.gameService.GetState(c.Params("sessionId"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) DeleteSession(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteSession(c.Params("sessionId")); err != nil {
		return gc.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	dests, err := gc.gameService.LegalMoves(c.Params("sessionId"), c.Params("square"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"square":       c.Params("square"),
		"destinations": dests,
	})
}

func (gc *GameController) Move(c *fiber.Ctx) error {
	var req service.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	state, err := gc.gameService.Move(c.Params("sessionId"), req)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

// transition wraps the body-less session operations.
func (gc *GameController) transition(op func(id string) (service.State, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := op(c.Params("sessionId"))
		if err != nil {
			return gc.fail(c, err)
		}
		return c.JSON(state)
	}
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	return gc.transition(gc.gameService.Undo)(c)
}

func (gc *GameController) Redo(c *fiber.Ctx) error {
	return gc.transition(gc.gameService.Redo)(c)
}

func (gc *GameController) Reset(c *fiber.Ctx) error {
	return gc.transition(gc.gameService.Reset)(c)
}

func (gc *GameController) Clear(c *fiber.Ctx) error {
	return gc.transition(gc.gameService.Clear)(c)
}

func (gc *GameController) LoadFEN(c *fiber.Ctx) error {
	var req fenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	state, err := gc.gameService.LoadFEN(c.Params("sessionId"), req.FEN)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Place(c *fiber.Ctx) error {
	var req placeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	state, err := gc.gameService.Place(c.Params("sessionId"), req.Square, req.Piece)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Remove(c *fiber.Ctx) error {
	var req placeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	state, err := gc.gameService.Remove(c.Params("sessionId"), req.Square)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) SetSideToMove(c *fiber.Ctx) error {
	var req sideRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	state, err := gc.gameService.SetSideToMove(c.Params("sessionId"), req.Color)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

// budget turns a requested millisecond budget into a duration capped at
// maxBudget. Zero keeps the service default.
func (gc *GameController) budget(ms int) time.Duration {
	d := time.Duration(ms) * time.Millisecond
	if d < 0 {
		d = 0
	}
	if gc.maxBudget > 0 && d > gc.maxBudget {
		d = gc.maxBudget
	}
	return d
}

func (gc *GameController) Suggest(c *fiber.Ctx) error {
	var req aiRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, err)
		}
	}
	suggestion, state, err := gc.gameService.Suggest(c.UserContext(), c.Params("sessionId"), gc.budget(req.BudgetMs), req.Apply)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"suggestion": suggestion,
		"move":       suggestion.Result.Move.String(),
		"state":      state,
	})
}

func (gc *GameController) Observe(c *fiber.Ctx) error {
	var req service.Observation
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	state, err := gc.gameService.Observe(c.Params("sessionId"), req)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Setup(c *fiber.Ctx) error {
	var req setupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	state, err := gc.gameService.SetupFromClassification(c.Params("sessionId"), req.Squares, req.ToMove)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}
