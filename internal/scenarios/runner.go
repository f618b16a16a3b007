package scenarios

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qaops/insider-e2e/internal/browser"
	"github.com/qaops/insider-e2e/internal/config"
	"github.com/qaops/insider-e2e/internal/interact"
)

// SessionFactory opens a fresh browser session for one scenario run.
type SessionFactory func() (browser.Session, error)

// Result is the outcome of one scenario run.
type Result struct {
	Scenario string
	RunID    string
	Duration time.Duration
	Err      error
}

// Runner executes scenarios sequentially, one fresh session per scenario.
// Sessions are single-threaded by contract; concurrency, when wanted, lives
// at the cluster level, never inside a session.
type Runner struct {
	logger     *zap.Logger
	site       config.SiteConfig
	newSession SessionFactory
}

// NewRunner builds a runner over the given session factory.
func NewRunner(logger *zap.Logger, site config.SiteConfig, factory SessionFactory) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, site: site, newSession: factory}
}

// Run executes every scenario in order and returns all results. A failing
// scenario never stops the ones after it.
func (r *Runner) Run(ctx context.Context, scens []Scenario) []Result {
	results := make([]Result, 0, len(scens))
	for _, sc := range scens {
		results = append(results, r.runOne(ctx, sc))
		if ctx.Err() != nil {
			break
		}
	}
	return results
}

// runOne runs a single scenario on its own session. The session is quit
// unconditionally, pass or fail.
func (r *Runner) runOne(ctx context.Context, sc Scenario) Result {
	runID := uuid.NewString()
	logger := r.logger.With(
		zap.String("scenario", sc.Name),
		zap.String("run_id", runID),
	)

	session, err := r.newSession()
	if err != nil {
		logger.Error("Could not acquire browser session", zap.Error(err))
		return Result{Scenario: sc.Name, RunID: runID, Err: fmt.Errorf("acquiring session: %w", err)}
	}
	defer func() {
		if qerr := session.Quit(); qerr != nil {
			logger.Warn("Session teardown failed", zap.Error(qerr))
		}
	}()

	actions := interact.New(session, logger, r.site.PollInterval)
	env := Env{Actions: actions, Logger: logger, Site: r.site}

	logger.Info("Scenario starting", zap.Strings("tags", sc.Tags))
	start := time.Now()
	runErr := sc.Run(ctx, env)
	elapsed := time.Since(start)

	if runErr != nil {
		logger.Error("Scenario failed", zap.Duration("duration", elapsed), zap.Error(runErr))
	} else {
		logger.Info("Scenario passed", zap.Duration("duration", elapsed))
	}
	return Result{Scenario: sc.Name, RunID: runID, Duration: elapsed, Err: runErr}
}

// Failed counts failing results.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
