package steps

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/dm"
	"github.com/roffe/j1939/pkg/ledger"
	"github.com/roffe/j1939/pkg/model"
	"github.com/roffe/j1939/pkg/monitor"
	"github.com/roffe/j1939/pkg/reconcile"
	"github.com/roffe/j1939/pkg/session"
)

// DiagnosticReadiness discovers the OBD modules from DM5 and records the
// baseline monitor status of each
func DiagnosticReadiness() session.Step {
	return &step{part: 1, step: 3, name: "Diagnostic Readiness 1 (DM5)", run: runDiagnosticReadiness}
}

func runDiagnosticReadiness(ctx context.Context, env *session.Env) error {
	r := env.Reconciler()
	rep := env.Reporter

	global, err := reconcile.Global[*dm.DM5](ctx, r, j1939.PGNDM5)
	if err != nil {
		return err
	}
	for _, p := range global.Packets {
		p := p
		env.Registry.Update(p.From, func(rec *model.ModuleRecord) {
			rec.OBDCompliance = p.OBDCompliance
			rec.MonitoredSystems = p.MonitoredSystemsSet.Clone()
		})
	}

	obd := env.Registry.ObdAddresses()
	if len(global.Packets) > 0 && len(obd) == 0 {
		rep.Fail("6.1.3.2.a", "There needs to be at least one OBD Module")
	}

	compliance := make(map[byte][]string)
	perECU := make(map[j1939.Address]model.MonitorSet)
	for _, p := range global.Packets {
		if !env.Registry.IsObd(p.From) {
			continue
		}
		compliance[p.OBDCompliance] = append(compliance[p.OBDCompliance], p.From.String())
		perECU[p.From] = p.MonitoredSystemsSet
	}
	if len(compliance) > 1 {
		rep.Warn("6.1.3.3.a", "An ECU responded with a value for OBD Compliance that was not identical to other ECUs\n%s", describeCompliance(compliance))
	}
	monitor.ReportDuplicates(rep, monitor.Duplicates(perECU), monitor.Rule{Outcome: ledger.Warn, Clause: "6.1.3.3.b"})
	if len(perECU) > 0 {
		rep.Message("Vehicle Composite of DM5:\n%s", monitor.Render(monitor.Composite(perECU)))
	}

	_, err = reconcile.RunWithGlobal(ctx, r, j1939.PGNDM5, global, reconcile.Clauses{
		NoResponse:  "6.1.3.2.a",
		Mismatch:    "6.1.3.4.a",
		MissingNack: "6.1.3.4.b",
		Retry:       "6.1.3.4.c",
	})
	return err
}

func describeCompliance(values map[byte][]string) string {
	keys := make([]int, 0, len(values))
	for k := range values {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("    OBD Compliance %d: %s", k, strings.Join(values[byte(k)], ", "))
	}
	return strings.Join(lines, "\n")
}

// DrivingCycleReadiness checks DM26 against the DM5 baseline: a monitor
// enabled in DM26 must be supported in DM5
func DrivingCycleReadiness() session.Step {
	return &step{part: 1, step: 13, name: "Diagnostic Readiness 3 (DM26)", run: runDrivingCycleReadiness}
}

func runDrivingCycleReadiness(ctx context.Context, env *session.Env) error {
	res, err := reconcile.Run[*dm.DM26](ctx, env.Reconciler(), j1939.PGNDM26, reconcile.Clauses{
		NoResponse:  "6.1.13.2.a",
		Mismatch:    "6.1.13.4.a",
		MissingNack: "6.1.13.4.b",
	})
	if err != nil {
		return err
	}
	for _, p := range res.Packets() {
		rec, ok := env.Registry.Module(p.From)
		if !ok {
			continue
		}
		monitor.ReportChanges(env.Reporter, p.From.String()+" DM26",
			monitor.Compare(rec.MonitoredSystems, p.MonitoredSystemsSet),
			monitor.Rule{},
			monitor.Rule{Outcome: ledger.Fail, Clause: "6.1.13.2.b"},
		)
	}
	return nil
}

// ReadinessAfterKeyCycle compares a new vehicle composite of DM5 with the
// baseline of every OBD module
func ReadinessAfterKeyCycle() session.Step {
	return &step{part: 2, step: 3, name: "Diagnostic Readiness 1 (DM5) after key cycle", run: runReadinessAfterKeyCycle}
}

func runReadinessAfterKeyCycle(ctx context.Context, env *session.Env) error {
	if err := env.Confirm(ctx, "Turn the key to the OFF position, wait 60 seconds, then turn the key to the ON position"); err != nil {
		return err
	}
	res, err := reconcile.Run[*dm.DM5](ctx, env.Reconciler(), j1939.PGNDM5, reconcile.Clauses{
		NoResponse:  "6.2.3.2.a",
		Mismatch:    "6.2.3.4.a",
		MissingNack: "6.2.3.4.b",
	})
	if err != nil {
		return err
	}

	latest := make(map[j1939.Address]model.MonitorSet)
	for _, p := range res.Global.Packets {
		if env.Registry.IsObd(p.From) {
			latest[p.From] = p.MonitoredSystemsSet
		}
	}
	composite := monitor.Composite(latest)

	baseline := make(map[j1939.Address]model.MonitorSet)
	for _, addr := range env.Registry.ObdAddresses() {
		rec, _ := env.Registry.Module(addr)
		baseline[addr] = rec.MonitoredSystems
		monitor.ReportChanges(env.Reporter, fmt.Sprintf("Vehicle composite of DM5 against %s baseline", addr),
			monitor.Compare(rec.MonitoredSystems, composite),
			monitor.Rule{Outcome: ledger.Fail, Clause: "6.2.3.2.b"},
			monitor.Rule{},
		)
	}
	monitor.ReportChanges(env.Reporter, "Vehicle composite of DM5",
		monitor.Compare(monitor.Composite(baseline), composite),
		monitor.Rule{},
		monitor.Rule{Outcome: ledger.Warn, Clause: "6.2.3.2.c"},
	)

	for addr, set := range latest {
		set := set
		env.Registry.Update(addr, func(rec *model.ModuleRecord) {
			rec.MonitoredSystems = set.Clone()
		})
	}
	return nil
}
