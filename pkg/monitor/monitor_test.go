package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roffe/j1939"
	"github.com/roffe/j1939/pkg/ledger"
	"github.com/roffe/j1939/pkg/model"
)

var (
	supportedComplete = model.MonitorStatus{Supported: true, Enabled: true, Complete: true}
	notSupported      = model.MonitorStatus{Complete: true}
	enabledOnly       = model.MonitorStatus{Enabled: true}
)

func set(pairs map[model.SystemID]model.MonitorStatus) model.MonitorSet {
	s := make(model.MonitorSet)
	for id, st := range pairs {
		s.Add(model.MonitoredSystem{ID: id, Status: st})
	}
	return s
}

func TestCompare(t *testing.T) {
	before := set(map[model.SystemID]model.MonitorStatus{
		model.Catalyst:                supportedComplete,
		model.Misfire:                 notSupported,
		model.ACSystemRefrigerant:     notSupported,
		model.DieselParticulateFilter: supportedComplete,
		model.EGRVVTSystem:            supportedComplete,
	})
	after := set(map[model.SystemID]model.MonitorStatus{
		model.Catalyst:                notSupported,
		model.Misfire:                 enabledOnly,
		model.ACSystemRefrigerant:     supportedComplete,
		model.DieselParticulateFilter: supportedComplete,
	})

	changes := Compare(before, after)
	require.Len(t, changes, 3)
	assert.Equal(t, model.ACSystemRefrigerant, changes[0].ID())
	assert.Equal(t, Escalation, changes[0].Kind)
	assert.Equal(t, model.Catalyst, changes[1].ID())
	assert.Equal(t, Regression, changes[1].Kind)
	assert.Equal(t, model.Misfire, changes[2].ID())
	assert.Equal(t, Escalation, changes[2].Kind)
}

func TestCompare_OrderInvariant(t *testing.T) {
	ids := model.SystemIDs()
	a, b := make(model.MonitorSet), make(model.MonitorSet)
	ra, rb := make(model.MonitorSet), make(model.MonitorSet)
	for i, id := range ids {
		sa := model.MonitorStatus{Supported: i%2 == 0}
		sb := model.MonitorStatus{Supported: i%3 == 0}
		a.Add(model.MonitoredSystem{ID: id, Status: sa})
		b.Add(model.MonitoredSystem{ID: id, Status: sb})
		rid := ids[len(ids)-1-i]
		ra.Add(model.MonitoredSystem{ID: rid, Status: model.MonitorStatus{Supported: (len(ids)-1-i)%2 == 0}})
		rb.Add(model.MonitoredSystem{ID: rid, Status: model.MonitorStatus{Supported: (len(ids)-1-i)%3 == 0}})
	}
	assert.Equal(t, Compare(a, b), Compare(ra, rb))
}

func TestDuplicates(t *testing.T) {
	perECU := map[j1939.Address]model.MonitorSet{
		3: set(map[model.SystemID]model.MonitorStatus{
			model.ComprehensiveComponent: supportedComplete,
			model.Catalyst:               supportedComplete,
		}),
		0: set(map[model.SystemID]model.MonitorStatus{
			model.ComprehensiveComponent: supportedComplete,
			model.Catalyst:               supportedComplete,
			model.Misfire:                supportedComplete,
		}),
		17: set(map[model.SystemID]model.MonitorStatus{
			model.ComprehensiveComponent: supportedComplete,
			model.Misfire:                notSupported,
		}),
	}
	dups := Duplicates(perECU)
	require.Len(t, dups, 1)
	assert.Equal(t, Duplicate{ID: model.Catalyst, Addresses: []j1939.Address{0, 3}}, dups[0])
}

func TestComposite(t *testing.T) {
	perECU := map[j1939.Address]model.MonitorSet{
		0: set(map[model.SystemID]model.MonitorStatus{
			model.Catalyst: {Supported: true},
			model.Misfire:  {},
		}),
		3: set(map[model.SystemID]model.MonitorStatus{
			model.Catalyst: {Enabled: true, Complete: true},
			model.Misfire:  {Complete: true},
		}),
	}
	got := Composite(perECU)
	assert.Equal(t, model.MonitorStatus{Supported: true, Enabled: true, Complete: true}, got[model.Catalyst])
	assert.Equal(t, model.MonitorStatus{Complete: true}, got[model.Misfire])
	assert.Len(t, got, 2)
}

func TestReportChanges_Regression(t *testing.T) {
	baseline := set(map[model.SystemID]model.MonitorStatus{model.Catalyst: supportedComplete})
	later := set(map[model.SystemID]model.MonitorStatus{model.Catalyst: notSupported})

	l := ledger.New()
	rep := ledger.NewReporter(l, 2, 3)
	ReportChanges(rep, "Vehicle composite of DM5", Compare(baseline, later),
		Rule{Outcome: ledger.Fail, Clause: "6.2.3.2.b"},
		Rule{},
	)

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.Fail, entries[0].Outcome)
	assert.Equal(t, "6.2.3.2.b Vehicle composite of DM5 reports a monitor not supported that was supported before\n"+
		"    Catalyst                   not supported, not enabled,     complete", entries[0].Message)
}

func TestReportChanges_DisabledRule(t *testing.T) {
	baseline := set(map[model.SystemID]model.MonitorStatus{model.Catalyst: notSupported})
	later := set(map[model.SystemID]model.MonitorStatus{model.Catalyst: supportedComplete})

	l := ledger.New()
	ReportChanges(ledger.NewReporter(l, 1, 13), "DM26", Compare(baseline, later), Rule{Outcome: ledger.Fail, Clause: "x"}, Rule{})
	assert.Empty(t, l.Entries())
}

func TestReportDuplicates(t *testing.T) {
	l := ledger.New()
	ReportDuplicates(ledger.NewReporter(l, 1, 3), []Duplicate{{ID: model.Catalyst, Addresses: []j1939.Address{0, 3}}},
		Rule{Outcome: ledger.Warn, Clause: "6.1.3.3.b"})
	assert.Equal(t, []string{
		"WARN: 6.1.3.3.b Required monitor Catalyst is supported by more than one OBD ECU: Engine #1 (0), Transmission #1 (3)",
	}, l.Lines())
}

func TestRender(t *testing.T) {
	s := set(map[model.SystemID]model.MonitorStatus{
		model.Misfire:  supportedComplete,
		model.Catalyst: notSupported,
	})
	assert.Equal(t,
		"    Catalyst                   not supported, not enabled,     complete\n"+
			"    Misfire                        supported,     enabled,     complete",
		Render(s))
}
