package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benbeisheim/chess-engine/internal/service"
	"github.com/benbeisheim/chess-engine/internal/ws"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type WebSocketController struct {
	gameService *service.GameService
	maxBudget   time.Duration
	logger      *zap.Logger
}

func NewWebSocketController(gameService *service.GameService, maxBudget time.Duration, logger *zap.Logger) *WebSocketController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketController{
		gameService: gameService,
		maxBudget:   maxBudget,
		logger:      logger,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	sessionID, _ := c.Locals("sessionID").(string)
	if sessionID == "" {
		sessionID = c.Params("sessionId")
	}

	connID, err := wsc.gameService.RegisterConnection(sessionID, c)
	if err != nil {
		wsc.logger.Warn("failed to register connection", zap.String("session", sessionID), zap.Error(err))
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(sessionID, connID)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			wsc.logger.Debug("websocket read ended", zap.String("conn", connID), zap.Error(err))
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.reply(sessionID, c, ws.ErrorMessage(fmt.Errorf("parse message: %w", err)))
			continue
		}

		reply, err := wsc.dispatch(context.Background(), sessionID, msg)
		if err != nil {
			wsc.logger.Debug("websocket message rejected",
				zap.String("session", sessionID),
				zap.String("type", string(msg.Type)),
				zap.Error(err),
			)
			wsc.reply(sessionID, c, ws.ErrorMessage(err))
			continue
		}
		if reply != nil {
			wsc.reply(sessionID, c, *reply)
		}
	}
}

func (wsc *WebSocketController) reply(sessionID string, c *websocket.Conn, msg ws.Message) {
	if err := wsc.gameService.Send(sessionID, c, msg); err != nil {
		wsc.logger.Warn("websocket write failed", zap.String("session", sessionID), zap.Error(err))
	}
}

// dispatch applies one client message. State changes reach every watcher
// through the session broadcast, so only a suggestion produces a direct reply.
func (wsc *WebSocketController) dispatch(ctx context.Context, sessionID string, msg ws.Message) (*ws.Message, error) {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return nil, err
		}
		_, err := wsc.gameService.Move(sessionID, service.MoveRequest(move))
		return nil, err

	case ws.MessageTypeUndo:
		_, err := wsc.gameService.Undo(sessionID)
		return nil, err

	case ws.MessageTypeRedo:
		_, err := wsc.gameService.Redo(sessionID)
		return nil, err

	case ws.MessageTypeAI:
		var req ws.AIPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				return nil, err
			}
		}
		budget := time.Duration(req.BudgetMs) * time.Millisecond
		if wsc.maxBudget > 0 && budget > wsc.maxBudget {
			budget = wsc.maxBudget
		}
		sug, _, err := wsc.gameService.Suggest(ctx, sessionID, budget, req.Apply)
		if err != nil {
			return nil, err
		}
		out, err := ws.NewMessage(ws.MessageTypeSuggestion, sug)
		if err != nil {
			return nil, err
		}
		return &out, nil

	default:
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
