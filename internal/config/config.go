// Package config reads server settings from flags with CHESS_* environment
// fallbacks.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr         string
	AllowOrigins string
	SearchBudget time.Duration
	// MaxBudget caps the budget a client may request per search.
	MaxBudget       time.Duration
	MaxDepth        int
	QuiescenceDepth int
	SearchWorkers   int
	// EnginePath is the UCI binary to consult first. Empty disables it.
	EnginePath   string
	EngineBudget time.Duration
	Dev          bool
}

func Default() Config {
	return Config{
		Addr:            ":3000",
		AllowOrigins:    "http://localhost:5173",
		SearchBudget:    2 * time.Second,
		MaxBudget:       10 * time.Second,
		MaxDepth:        3,
		QuiescenceDepth: 8,
		SearchWorkers:   2,
		EngineBudget:    time.Second,
	}
}

// Load parses args (without the program name). Flags win over the
// environment, which wins over Default.
func Load(args []string) (Config, error) {
	def := Default()
	fs := flag.NewFlagSet("chess-server", flag.ContinueOnError)

	addr := fs.String("addr", getenv("CHESS_ADDR", def.Addr), "listen address")
	origins := fs.String("allow-origins", getenv("CHESS_ALLOW_ORIGINS", def.AllowOrigins), "comma-separated CORS origins")
	enginePath := fs.String("engine-path", getenv("CHESS_ENGINE_PATH", def.EnginePath), "UCI engine binary, empty to disable")
	dev := fs.Bool("dev", getenb("CHESS_DEV", def.Dev), "development logging")

	budget, err := getenvDuration("CHESS_SEARCH_BUDGET", def.SearchBudget)
	if err != nil {
		return Config{}, err
	}
	maxBudget, err := getenvDuration("CHESS_MAX_BUDGET", def.MaxBudget)
	if err != nil {
		return Config{}, err
	}
	engineBudget, err := getenvDuration("CHESS_ENGINE_BUDGET", def.EngineBudget)
	if err != nil {
		return Config{}, err
	}
	maxDepth, err := getenvInt("CHESS_MAX_DEPTH", def.MaxDepth)
	if err != nil {
		return Config{}, err
	}
	qDepth, err := getenvInt("CHESS_QUIESCENCE_DEPTH", def.QuiescenceDepth)
	if err != nil {
		return Config{}, err
	}
	workers, err := getenvInt("CHESS_SEARCH_WORKERS", def.SearchWorkers)
	if err != nil {
		return Config{}, err
	}
	fs.DurationVar(&budget, "search-budget", budget, "time per internal search")
	fs.DurationVar(&maxBudget, "max-budget", maxBudget, "largest search budget a client may request")
	fs.DurationVar(&engineBudget, "engine-budget", engineBudget, "time per external engine search")
	fs.IntVar(&maxDepth, "max-depth", maxDepth, "deepest iterative deepening ply")
	fs.IntVar(&qDepth, "quiescence-depth", qDepth, "capture plies searched past the horizon")
	fs.IntVar(&workers, "search-workers", workers, "concurrent searches")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:            *addr,
		AllowOrigins:    *origins,
		SearchBudget:    budget,
		MaxBudget:       maxBudget,
		MaxDepth:        maxDepth,
		QuiescenceDepth: qDepth,
		SearchWorkers:   workers,
		EnginePath:      strings.TrimSpace(*enginePath),
		EngineBudget:    engineBudget,
		Dev:             *dev,
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.SearchBudget <= 0 {
		errs = append(errs, fmt.Errorf("search budget must be positive, got %s", c.SearchBudget))
	}
	if c.MaxBudget < c.SearchBudget {
		errs = append(errs, fmt.Errorf("max budget %s is below the search budget %s", c.MaxBudget, c.SearchBudget))
	}
	if c.EngineBudget <= 0 {
		errs = append(errs, fmt.Errorf("engine budget must be positive, got %s", c.EngineBudget))
	}
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max depth must be positive, got %d", c.MaxDepth))
	}
	if c.QuiescenceDepth < 0 {
		errs = append(errs, fmt.Errorf("quiescence depth must not be negative, got %d", c.QuiescenceDepth))
	}
	if c.SearchWorkers <= 0 {
		errs = append(errs, fmt.Errorf("search workers must be positive, got %d", c.SearchWorkers))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
