package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benbeisheim/chess-engine/internal/config"
	"github.com/benbeisheim/chess-engine/internal/controller"
	"github.com/benbeisheim/chess-engine/internal/engine"
	"github.com/benbeisheim/chess-engine/internal/middleware"
	"github.com/benbeisheim/chess-engine/internal/openings"
	"github.com/benbeisheim/chess-engine/internal/service"
	"github.com/benbeisheim/chess-engine/internal/uci"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg config.Config, logger *zap.Logger) error {
	// Initialize the search stack
	search := engine.New(engine.Options{
		MaxDepth:        cfg.MaxDepth,
		QuiescenceDepth: cfg.QuiescenceDepth,
		Book:            engine.DefaultBook(),
	}, logger.Named("search"))

	var external engine.ExternalEngine
	if cfg.EnginePath != "" {
		ext, err := uci.New(cfg.EnginePath, logger.Named("uci"))
		if err != nil {
			logger.Warn("external engine unavailable, using internal search only",
				zap.String("path", cfg.EnginePath),
				zap.Error(err),
			)
		} else {
			ext.LimitMoveTime(cfg.EngineBudget)
			defer ext.Close()
			external = ext
		}
	}
	advisor := engine.NewAdvisor(search, external, logger.Named("advisor"))

	// Initialize services
	queue := service.NewSearchQueue(advisor, cfg.SearchWorkers, logger.Named("queue"))
	defer queue.Close()
	sessions := service.NewSessionManager(logger.Named("sessions"))
	gameService := service.NewGameService(sessions, queue, openings.NewLabeler(), cfg.SearchBudget, logger.Named("service"))

	// Initialize controllers
	gameController := controller.NewGameController(gameService, cfg.MaxBudget, logger.Named("http"))
	wsController := controller.NewWebSocketController(gameService, cfg.MaxBudget, logger.Named("ws"))

	app := fiber.New(fiber.Config{DisableStartupMessage: !cfg.Dev})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, " + middleware.ClientIDHeader,
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestLogger(logger.Named("access")))

	controller.Register(app, gameController, wsController, splitOrigins(cfg.AllowOrigins))

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		app.Shutdown()
	}()

	logger.Info("listening",
		zap.String("addr", cfg.Addr),
		zap.Int("max_depth", cfg.MaxDepth),
		zap.Duration("search_budget", cfg.SearchBudget),
		zap.Bool("external_engine", external != nil),
	)
	return app.Listen(cfg.Addr)
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
