package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-engine/internal/engine"
	"github.com/benbeisheim/chess-engine/internal/model"
	"go.uber.org/zap"
)

var (
	ErrSearchPending = errors.New("a search is already running for this session")
	ErrQueueClosed   = errors.New("search queue closed")
)

// Suggester picks a move for a position. *engine.Advisor implements it.
type Suggester interface {
	Suggest(ctx context.Context, pos *model.Position, budget time.Duration) (engine.Result, error)
}

// Suggestion is the outcome of one queued search.
type Suggestion struct {
	Result  engine.Result     `json:"result"`
	Applied *model.MoveRecord `json:"applied,omitempty"`
}

type searchJob struct {
	ctx      context.Context
	session  *Session
	budget   time.Duration
	apply    bool
	queuedAt time.Time
	done     chan searchOutcome
}

type searchOutcome struct {
	suggestion Suggestion
	err        error
}

// SearchQueue runs searches on a fixed pool of workers. A session may have
// at most one search queued or running.
type SearchQueue struct {
	suggester Suggester
	jobs      chan searchJob
	quit      chan struct{}
	pending   map[string]time.Time // session ID -> queued at
	mu        sync.Mutex
	wg        sync.WaitGroup
	closeOnce sync.Once
	logger    *zap.Logger
	// onApplied runs after a search result has been played, outside the
	// session lock.
	onApplied func(s *Session)
}

func NewSearchQueue(suggester Suggester, workers int, logger *zap.Logger) *SearchQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	q := &SearchQueue{
		suggester: suggester,
		jobs:      make(chan searchJob, workers*4),
		quit:      make(chan struct{}),
		pending:   make(map[string]time.Time),
		logger:    logger,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

// Submit queues a search for s and waits for it. When apply is set the
// suggested move is played on the session before the lock is released.
func (q *SearchQueue) Submit(ctx context.Context, s *Session, budget time.Duration, apply bool) (Suggestion, error) {
	q.mu.Lock()
	if _, busy := q.pending[s.ID]; busy {
		q.mu.Unlock()
		return Suggestion{}, ErrSearchPending
	}
	select {
	case <-q.quit:
		q.mu.Unlock()
		return Suggestion{}, ErrQueueClosed
	default:
	}
	job := searchJob{
		ctx:      ctx,
		session:  s,
		budget:   budget,
		apply:    apply,
		queuedAt: time.Now(),
		done:     make(chan searchOutcome, 1),
	}
	q.pending[s.ID] = job.queuedAt
	q.mu.Unlock()

	select {
	case q.jobs <- job:
	case <-ctx.Done():
		q.release(s.ID)
		return Suggestion{}, ctx.Err()
	case <-q.quit:
		q.release(s.ID)
		return Suggestion{}, ErrQueueClosed
	}

	select {
	case out := <-job.done:
		return out.suggestion, out.err
	case <-q.quit:
		return Suggestion{}, ErrQueueClosed
	}
}

// Size is the number of searches queued or running.
func (q *SearchQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops the workers after their current search.
func (q *SearchQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.quit)
	})
	q.wg.Wait()
}

func (q *SearchQueue) release(sessionID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, sessionID)
}

func (q *SearchQueue) worker(id int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.quit:
			return
		case job := <-q.jobs:
			out := q.run(job)
			if out.err == nil && out.suggestion.Applied != nil && q.onApplied != nil {
				q.onApplied(job.session)
			}
			q.release(job.session.ID)
			job.done <- out
			q.logger.Debug("search finished",
				zap.Int("worker", id),
				zap.String("session", job.session.ID),
				zap.Duration("since_queued", time.Since(job.queuedAt)),
				zap.Error(out.err),
			)
		}
	}
}

func (q *SearchQueue) run(job searchJob) searchOutcome {
	if err := job.ctx.Err(); err != nil {
		return searchOutcome{err: err}
	}
	s := job.session
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := q.suggester.Suggest(job.ctx, s.game.Position(), job.budget)
	if err != nil {
		return searchOutcome{err: err}
	}
	out := searchOutcome{suggestion: Suggestion{Result: res}}
	if job.apply {
		rec, err := s.game.Move(res.Move)
		if err != nil {
			return searchOutcome{err: fmt.Errorf("apply %s: %w", res.Move, err)}
		}
		out.suggestion.Applied = &rec
	}
	return out
}
