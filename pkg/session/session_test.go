package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/ledger"
	"github.com/roffe/j1939/pkg/model"
)

type funcStep struct {
	part, step int
	run        func(ctx context.Context, env *Env) error
}

func (s *funcStep) Part() int    { return s.part }
func (s *funcStep) Step() int    { return s.step }
func (s *funcStep) Name() string { return "test step" }

func (s *funcStep) Run(ctx context.Context, env *Env) error {
	return s.run(ctx, env)
}

type answer bool

func (a answer) Confirm(ctx context.Context, question string) (bool, error) {
	return bool(a), nil
}

func TestSession_RunStep(t *testing.T) {
	l := ledger.New()
	s := New(nil, l, nil)

	res := s.RunStep(context.Background(), &funcStep{part: 1, step: 3, run: func(ctx context.Context, env *Env) error {
		env.Reporter.Warn("6.1.3.3.a", "warned")
		env.Reporter.Fail("6.1.3.2.a", "failed")
		env.Registry.Update(0, func(rec *model.ModuleRecord) {
			rec.OBDCompliance = 0x13
		})
		return nil
	}})

	assert.False(t, res.Aborted())
	assert.Equal(t, ledger.Fail, res.Outcome)
	assert.Len(t, res.Entries, 2)
	assert.Equal(t, "Step 1.3 test step: FAIL", res.String())
	assert.Equal(t, []string{"Step 1.3 test step"}, l.Milestones())

	mods := s.Modules()
	require.Len(t, mods, 1)
	assert.True(t, mods[0].IsOBD())
}

func TestSession_RunStopsAtAbort(t *testing.T) {
	l := ledger.New()
	s := New(nil, l, nil)
	broken := errors.New("bus off")
	ran := 0

	steps := []Step{
		&funcStep{part: 1, step: 1, run: func(ctx context.Context, env *Env) error {
			ran++
			return nil
		}},
		&funcStep{part: 1, step: 2, run: func(ctx context.Context, env *Env) error {
			ran++
			env.Reporter.Warn("", "before the abort")
			return broken
		}},
		&funcStep{part: 1, step: 3, run: func(ctx context.Context, env *Env) error {
			ran++
			return nil
		}},
	}
	var done []StepResult
	results, err := s.Run(context.Background(), steps, func(res StepResult) {
		done = append(done, res)
	})

	require.ErrorIs(t, err, broken)
	assert.EqualError(t, err, "step 1.2: bus off")
	assert.Equal(t, 2, ran)
	assert.Len(t, results, 2)
	assert.Equal(t, results, done)
	assert.True(t, results[1].Aborted())
	assert.Equal(t, ledger.Warn, results[1].Outcome)
	// the abort is a milestone, never an outcome
	assert.Equal(t, 1, l.Len())
	assert.Contains(t, l.Milestones(), "Step 1.2 aborted: bus off")
}

func TestSession_StepTimeout(t *testing.T) {
	s := New(nil, nil, nil, OptStepTimeout(10*time.Millisecond))
	res := s.RunStep(context.Background(), &funcStep{part: 1, step: 1, run: func(ctx context.Context, env *Env) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestEnv_Confirm(t *testing.T) {
	tests := []struct {
		name    string
		op      Operator
		wantErr error
	}{
		{name: "unattended"},
		{name: "yes", op: answer(true)},
		{name: "no", op: answer(false), wantErr: j1939.ErrAborted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ledger.New()
			var opts []Opt
			if tt.op != nil {
				opts = append(opts, OptOperator(tt.op))
			}
			s := New(nil, l, nil, opts...)
			res := s.RunStep(context.Background(), &funcStep{part: 2, step: 3, run: func(ctx context.Context, env *Env) error {
				return env.Confirm(ctx, "Turn the key on")
			}})
			if tt.wantErr != nil {
				assert.ErrorIs(t, res.Err, tt.wantErr)
			} else {
				assert.NoError(t, res.Err)
			}
			assert.Equal(t, []string{"Turn the key on"}, l.Messages())
		})
	}
}

func TestSession_Reset(t *testing.T) {
	s := New(nil, nil, nil)
	id := s.ID()
	s.RunStep(context.Background(), &funcStep{part: 1, step: 1, run: func(ctx context.Context, env *Env) error {
		env.Registry.Update(0, func(*model.ModuleRecord) {})
		return nil
	}})
	require.Len(t, s.Modules(), 1)

	s.Reset()
	assert.Empty(t, s.Modules())
	assert.NotEqual(t, id, s.ID())
}
