// Package session runs test steps against one vehicle. A Session owns the
// module registry and the outcome ledger; a running step gets exclusive
// access to both and readers only see copies.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/ledger"
	"github.com/roffe/j1939/pkg/model"
	"github.com/roffe/j1939/pkg/reconcile"
	"github.com/roffe/j1939/pkg/registry"
)

// Step is one numbered test step
type Step interface {
	Part() int
	Step() int
	Name() string
	Run(ctx context.Context, env *Env) error
}

// Operator answers the questions a step asks the person at the vehicle
type Operator interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Env is what a step may use while it runs. Operator is nil when the
// session runs unattended.
type Env struct {
	Querier  j1939.Querier
	Registry *registry.Registry
	Reporter *ledger.Reporter
	Operator Operator
	Log      *zap.Logger
}

// Confirm asks the operator a question, an unattended session always
// continues. A refusal aborts the step.
func (e *Env) Confirm(ctx context.Context, question string) error {
	e.Reporter.Message("%s", question)
	if e.Operator == nil {
		return nil
	}
	ok, err := e.Operator.Confirm(ctx, question)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w by operator", j1939.ErrAborted)
	}
	return nil
}

func (e *Env) Reconciler() *reconcile.Reconciler {
	return reconcile.New(e.Querier, e.Registry, e.Reporter, e.Log)
}

// StepResult summarizes one executed step
type StepResult struct {
	Part     int
	Step     int
	Name     string
	Outcome  ledger.Outcome
	Entries  []ledger.Entry
	Duration time.Duration
	Err      error
}

func (r StepResult) Aborted() bool {
	return r.Err != nil
}

func (r StepResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("Step %d.%d %s: ABORTED (%v)", r.Part, r.Step, r.Name, r.Err)
	}
	return fmt.Sprintf("Step %d.%d %s: %s", r.Part, r.Step, r.Name, r.Outcome)
}

type Opt func(s *Session)

// OptOperator lets steps ask op before they act on the vehicle
func OptOperator(op Operator) Opt {
	return func(s *Session) {
		s.op = op
	}
}

// OptStepTimeout bounds the run time of every step
func OptStepTimeout(d time.Duration) Opt {
	return func(s *Session) {
		s.timeout = d
	}
}

type Session struct {
	id      uuid.UUID
	q       j1939.Querier
	ledger  *ledger.Ledger
	op      Operator
	timeout time.Duration
	log     *zap.Logger

	mu  sync.Mutex
	reg *registry.Registry
}

func New(q j1939.Querier, l *ledger.Ledger, log *zap.Logger, opts ...Opt) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if l == nil {
		l = ledger.New()
	}
	id := uuid.New()
	s := &Session{
		id:     id,
		q:      q,
		ledger: l,
		log:    log.With(zap.String("session", id.String())),
		reg:    registry.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Ledger() *ledger.Ledger {
	return s.ledger
}

// Modules returns a snapshot of the registry
func (s *Session) Modules() []model.ModuleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Modules()
}

// Reset starts a new session on the same bus. The ledger is kept, it is the
// caller's record of previous sessions.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg.Reset()
	s.id = uuid.New()
	s.log.Info("new session", zap.String("id", s.id.String()))
}

// RunStep runs one step. Outcomes recorded before an error stay in the
// ledger; the abort itself is recorded as a milestone, never as an outcome.
func (s *Session) RunStep(ctx context.Context, st Step) StepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep := ledger.NewReporter(s.ledger, st.Part(), st.Step())
	env := &Env{
		Querier:  s.q,
		Registry: s.reg,
		Reporter: rep,
		Operator: s.op,
		Log:      s.log.With(zap.Int("part", st.Part()), zap.Int("step", st.Step())),
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rep.Milestone("Step %d.%d %s", st.Part(), st.Step(), st.Name())
	start := time.Now()
	err := st.Run(ctx, env)
	res := StepResult{
		Part:     st.Part(),
		Step:     st.Step(),
		Name:     st.Name(),
		Entries:  s.ledger.StepEntries(st.Part(), st.Step()),
		Duration: time.Since(start),
		Err:      err,
	}
	res.Outcome = ledger.Worst(res.Entries)

	switch {
	case err == nil:
		env.Log.Info("step done", zap.Stringer("outcome", res.Outcome), zap.Int("outcomes", len(res.Entries)), zap.Int("modules", s.reg.Len()), zap.Duration("took", res.Duration))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		rep.Milestone("Step %d.%d aborted: %v", st.Part(), st.Step(), err)
		env.Log.Warn("step cancelled", zap.Error(err))
	default:
		rep.Milestone("Step %d.%d aborted: %v", st.Part(), st.Step(), err)
		env.Log.Error("step aborted", zap.Error(err))
	}
	return res
}

// Run runs steps in order and stops after the first aborted step
func (s *Session) Run(ctx context.Context, steps []Step, onDone func(StepResult)) ([]StepResult, error) {
	var out []StepResult
	for _, st := range steps {
		res := s.RunStep(ctx, st)
		out = append(out, res)
		if onDone != nil {
			onDone(res)
		}
		if res.Err != nil {
			return out, fmt.Errorf("step %d.%d: %w", res.Part, res.Step, res.Err)
		}
	}
	return out, nil
}
