package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/weft/pkg/audit"
	"github.com/papercomputeco/weft/pkg/burst"
	"github.com/papercomputeco/weft/pkg/insight"
	nopinsight "github.com/papercomputeco/weft/pkg/insight/nop"
	"github.com/papercomputeco/weft/pkg/persist"
	"github.com/papercomputeco/weft/pkg/stagnation"
	"github.com/papercomputeco/weft/pkg/textmetric"
	"github.com/papercomputeco/weft/pkg/thought"
	"github.com/papercomputeco/weft/pkg/validate"
)

// Config configures an Engine.
type Config struct {
	// Driver is the persistence backend. Optional; a nil driver disables
	// persistence entirely.
	Driver persist.Driver

	// Publisher receives certified-path events. Defaults to the no-op
	// publisher.
	Publisher insight.Publisher

	// QueueSize is the save queue capacity (defaults to 64).
	QueueSize uint

	// DeadEndCap bounds the dead-end list (defaults to session.DeadEndCap).
	DeadEndCap uint

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

// Engine owns all session state and composes the validators. One engine is
// constructed per process; all operations are serialized through its
// mutex, so the store invariants never race. The only asynchronous
// boundary is the persistence queue.
type Engine struct {
	mu sync.Mutex

	store     *Store
	metrics   *textmetric.Analyzer
	driver    persist.Driver
	queue     *persist.Queue
	publisher insight.Publisher
	logger    *zap.Logger
}

// NewEngine creates an engine with an empty store.
func NewEngine(c Config) *Engine {
	if c.Publisher == nil {
		c.Publisher = nopinsight.NewPublisher()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	e := &Engine{
		store:     NewStore(),
		metrics:   textmetric.NewAnalyzer(),
		driver:    c.Driver,
		publisher: c.Publisher,
		logger:    c.Logger,
	}
	e.store.SetDeadEndCap(int(c.DeadEndCap))

	if c.Driver != nil {
		e.queue = persist.NewQueue(persist.QueueConfig{
			Driver: c.Driver,
			Size:   c.QueueSize,
			Logger: c.Logger,
		})
	}

	return e
}

// Admission is the outcome of a single-thought submission.
type Admission struct {
	Accepted          bool     `json:"accepted"`
	SessionID         string   `json:"session_id"`
	ThoughtNumber     int      `json:"thought_number"`
	TotalThoughts     int      `json:"total_thoughts"`
	NextThoughtNeeded bool     `json:"next_thought_needed"`
	ThoughtCount      int      `json:"thought_count"`
	BranchCount       int      `json:"branch_count"`
	Warnings          []string `json:"warnings,omitempty"`
	AverageConfidence float64  `json:"average_confidence,omitempty"`
	AverageEntropy    float64  `json:"average_entropy"`
}

// SubmitThought validates and admits a single candidate thought. Hard
// rejections return a *validate.RejectionError and store nothing; soft
// findings attach as warnings to a successful admission.
func (e *Engine) SubmitThought(_ context.Context, in *thought.Input) (*Admission, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(in.Thought) == "" {
		return nil, &validate.RejectionError{Reason: "thought text is empty"}
	}

	// A fresh thought number 1 against a non-empty session starts a new
	// session: prior state is wiped and the metric cache cleared.
	if in.ThoughtNumber == 1 && !in.IsRevision && in.BranchFromThought == nil && e.store.ThoughtCount() > 0 {
		previousID := e.store.SessionID()
		e.store.Reset()
		e.metrics.Reset()
		e.logger.Info("session rolled over",
			zap.String("previous_session_id", previousID),
			zap.String("session_id", e.store.SessionID()),
		)
	}

	sessionThoughts := e.store.SessionThoughts()

	if err := validate.CheckDuplicate(in, sessionThoughts); err != nil {
		return nil, err
	}
	if err := validate.CheckBranchSource(in, sessionThoughts); err != nil {
		return nil, err
	}

	warnings, err := validate.CheckSequence(in, sessionThoughts, e.store.LastNumber(), e.metrics)
	if err != nil {
		return nil, err
	}

	// Advisory only. Note the detector reads raw history, not the
	// session-filtered view.
	if finding := stagnation.Detect(in.Thought, e.store.History(), e.metrics); finding != nil {
		warnings = append(warnings, finding.Message)
	}

	total := in.TotalThoughts
	if in.ThoughtNumber > total {
		total = in.ThoughtNumber
	}

	t := in.Materialize(e.store.SessionID(), time.Now())
	e.store.Append(t)
	e.save()

	avgConfidence, avgEntropy := e.sessionAverages()

	return &Admission{
		Accepted:          true,
		SessionID:         e.store.SessionID(),
		ThoughtNumber:     in.ThoughtNumber,
		TotalThoughts:     total,
		NextThoughtNeeded: in.NextThoughtNeeded,
		ThoughtCount:      e.store.ThoughtCount(),
		BranchCount:       e.store.BranchCount(),
		Warnings:          warnings,
		AverageConfidence: avgConfidence,
		AverageEntropy:    avgEntropy,
	}, nil
}

// BatchOutcome is the result of an accepted burst submission.
type BatchOutcome struct {
	Accepted  bool              `json:"accepted"`
	SessionID string            `json:"session_id"`
	Metrics   burst.Metrics     `json:"metrics"`
	Warnings  []string          `json:"warnings,omitempty"`
	Audit     *audit.Assessment `json:"consolidation,omitempty"`
}

// SubmitBatch validates a whole chain atomically and, on success, replaces
// the prior session state with it as one unit. Any validation error
// commits nothing.
func (e *Engine) SubmitBatch(ctx context.Context, goal string, inputs []thought.Input, cons *burst.ConsolidationInput) (*BatchOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out, err := burst.Validate(goal, inputs, cons, e.metrics)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	thoughts := make([]*thought.Thought, 0, len(out.Inputs))
	for i := range out.Inputs {
		thoughts = append(thoughts, out.Inputs[i].Materialize("", now))
	}

	e.metrics.Reset()
	e.store.ReplaceAll(goal, thoughts)

	if cons != nil && cons.Verdict == audit.VerdictNeedsMoreWork {
		e.store.RecordDeadEnd(cons.Path, cons.Summary, now)
	}
	if out.Audit != nil && out.Audit.CanProceed {
		e.publishPath(ctx, cons.Path, cons.Summary)
	}

	e.save()

	e.logger.Info("batch accepted",
		zap.String("session_id", e.store.SessionID()),
		zap.Int("thoughts", len(thoughts)),
	)

	return &BatchOutcome{
		Accepted:  true,
		SessionID: e.store.SessionID(),
		Metrics:   out.Metrics,
		Warnings:  out.Warnings,
		Audit:     out.Audit,
	}, nil
}

// Consolidate audits a candidate solution path against the current
// session. A "needs_more_work" verdict records the path as a dead end; a
// proceedable path is handed to the insight publisher.
func (e *Engine) Consolidate(ctx context.Context, path []int, summary string, verdict audit.Verdict) (*audit.Assessment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !audit.ValidVerdict(verdict) {
		return nil, &validate.RejectionError{Reason: fmt.Sprintf("invalid verdict %q", verdict)}
	}

	assessment, err := audit.Run(path, verdict, e.store.SessionThoughts(), audit.Options{})
	if err != nil {
		return nil, err
	}

	if verdict == audit.VerdictNeedsMoreWork {
		if e.store.RecordDeadEnd(path, summary, time.Now()) {
			e.save()
		}
	}

	if assessment.CanProceed {
		e.publishPath(ctx, path, summary)
	}

	return assessment, nil
}

// ResetResult reports what an explicit reset cleared.
type ResetResult struct {
	ClearedThoughts int    `json:"cleared_thoughts"`
	ClearedBranches int    `json:"cleared_branches"`
	SessionID       string `json:"session_id"`
}

// Reset wipes all session state, clears the metric cache, and removes the
// persisted snapshot.
func (e *Engine) Reset(ctx context.Context) *ResetResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	thoughts, branches := e.store.Reset()
	e.metrics.Reset()

	if e.driver != nil {
		if err := e.driver.Clear(ctx); err != nil {
			e.logger.Error("clearing snapshot failed", zap.Error(err))
		}
	}

	e.logger.Info("session reset",
		zap.Int("cleared_thoughts", thoughts),
		zap.Int("cleared_branches", branches),
	)

	return &ResetResult{
		ClearedThoughts: thoughts,
		ClearedBranches: branches,
		SessionID:       e.store.SessionID(),
	}
}

// Load restores persisted state at process start. Load failures are
// logged and swallowed; the engine starts empty.
func (e *Engine) Load(ctx context.Context) {
	if e.driver == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := e.driver.Load(ctx)
	if err != nil {
		e.logger.Error("snapshot load failed, starting empty", zap.Error(err))
		return
	}
	if snap == nil {
		return
	}

	e.store.Restore(snap)
	e.logger.Info("session restored",
		zap.String("session_id", e.store.SessionID()),
		zap.Int("history_len", len(snap.History)),
	)
}

// Stats summarizes the current session for the API surface.
type Stats struct {
	SessionID    string `json:"session_id"`
	Goal         string `json:"goal,omitempty"`
	ThoughtCount int    `json:"thought_count"`
	BranchCount  int    `json:"branch_count"`
	DeadEndCount int    `json:"dead_end_count"`
	LastNumber   int    `json:"last_thought_number"`
}

// Stats returns a point-in-time summary of the session.
func (e *Engine) Stats() *Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return &Stats{
		SessionID:    e.store.SessionID(),
		Goal:         e.store.Goal(),
		ThoughtCount: e.store.ThoughtCount(),
		BranchCount:  e.store.BranchCount(),
		DeadEndCount: len(e.store.DeadEnds()),
		LastNumber:   e.store.LastNumber(),
	}
}

// Close drains the save queue and releases resources.
func (e *Engine) Close() {
	if e.queue != nil {
		e.queue.Close()
	}
	if e.driver != nil {
		if err := e.driver.Close(); err != nil {
			e.logger.Error("closing persistence driver failed", zap.Error(err))
		}
	}
	if err := e.publisher.Close(); err != nil {
		e.logger.Error("closing insight publisher failed", zap.Error(err))
	}
}

// save enqueues a snapshot of the current state. Fire-and-forget: the
// caller is never blocked on disk I/O.
func (e *Engine) save() {
	if e.queue == nil {
		return
	}
	e.queue.Enqueue(e.store.Snapshot(time.Now()))
}

// publishPath hands a certified path to the insight publisher. Publish
// failures are logged and swallowed.
func (e *Engine) publishPath(ctx context.Context, path []int, summary string) {
	event := &insight.PathCertifiedEvent{
		SchemaVersion: insight.SchemaVersionV1,
		EventType:     insight.EventTypePathCertified,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now(),
		SessionID:     e.store.SessionID(),
		Goal:          e.store.Goal(),
		Path:          append([]int(nil), path...),
		Summary:       summary,
	}

	if err := e.publisher.PublishPath(ctx, event); err != nil {
		e.logger.Error("publishing certified path failed", zap.Error(err))
	}
}

// sessionAverages computes the mean confidence (over confidence-bearing
// thoughts) and mean entropy of the current session.
func (e *Engine) sessionAverages() (confidence, entropy float64) {
	thoughts := e.store.SessionThoughts()
	if len(thoughts) == 0 {
		return 0, 0
	}

	var confSum, confCount int
	var entropySum float64
	for _, t := range thoughts {
		if t.Confidence != nil {
			confSum += *t.Confidence
			confCount++
		}
		entropySum += e.metrics.Entropy(t.Text)
	}

	if confCount > 0 {
		confidence = float64(confSum) / float64(confCount)
	}
	return confidence, entropySum / float64(len(thoughts))
}
