// Package steps contains test steps built from the reconciliation and
// validation primitives. Clause ids refer to SAE J1939-84.
package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/roffe/j1939/pkg/session"
)

type step struct {
	part, step int
	name       string
	run        func(ctx context.Context, env *session.Env) error
}

func (s *step) Part() int    { return s.part }
func (s *step) Step() int    { return s.step }
func (s *step) Name() string { return s.name }

func (s *step) Run(ctx context.Context, env *session.Env) error {
	return s.run(ctx, env)
}

// All returns every step in execution order
func All() []session.Step {
	return []session.Step{
		DiagnosticReadiness(),
		ComponentIdentification(),
		CalibrationInformation(),
		DrivingCycleReadiness(),
		ReadinessAfterKeyCycle(),
	}
}

// Select returns the steps whose "part.step" id is in ids, all steps when ids is empty
func Select(ids []string) ([]session.Step, error) {
	all := All()
	if len(ids) == 0 {
		return all, nil
	}
	var out []session.Step
	for _, id := range ids {
		found := false
		for _, s := range all {
			if fmt.Sprintf("%d.%d", s.Part(), s.Step()) == strings.TrimSpace(id) {
				out = append(out, s)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown step %q", id)
		}
	}
	return out, nil
}
