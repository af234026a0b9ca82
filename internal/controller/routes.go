package controller

import (
	"github.com/benbeisheim/chess-engine/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Register mounts the REST and websocket routes on app.
func Register(app *fiber.App, gc *GameController, wsc *WebSocketController, origins []string) {
	// Set up WebSocket routes
	app.Use("/ws/*", middleware.EnsureClientID())
	app.Get("/ws/session/:sessionId",
		middleware.WebSocketUpgrade(gc.gameService.SessionExists),
		websocket.New(wsc.HandleConnection, websocket.Config{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Origins:         origins,
		}),
	)

	// Set up REST routes
	api := app.Group("/api", middleware.EnsureClientID())

	sessions := api.Group("/session")
	sessions.Post("/", gc.CreateSession)
	sessions.Get("/:sessionId", gc.GetState)
	sessions.Delete("/:sessionId", gc.DeleteSession)
	sessions.Get("/:sessionId/moves/:square", gc.LegalMoves)
	sessions.Post("/:sessionId/move", gc.Move)
	sessions.Post("/:sessionId/undo", gc.Undo)
	sessions.Post("/:sessionId/redo", gc.Redo)
	sessions.Post("/:sessionId/reset", gc.Reset)
	sessions.Post("/:sessionId/clear", gc.Clear)
	sessions.Post("/:sessionId/fen", gc.LoadFEN)
	sessions.Post("/:sessionId/place", gc.Place)
	sessions.Post("/:sessionId/remove", gc.Remove)
	sessions.Post("/:sessionId/side", gc.SetSideToMove)
	sessions.Post("/:sessionId/ai", gc.Suggest)
	sessions.Post("/:sessionId/observe", gc.Observe)
	sessions.Post("/:sessionId/setup", gc.Setup)
}
