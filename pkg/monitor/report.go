package monitor

import (
	"strings"

	"github.com/roffe/j1939/pkg/ledger"
)

// Rule is the severity and clause a caller attaches to one kind of finding.
// A rule without a clause is not reported.
type Rule struct {
	Outcome ledger.Outcome
	Clause  string
}

func (r Rule) enabled() bool {
	return r.Clause != ""
}

// ReportChanges records one outcome per change. subject names what the
// second set describes, e.g. "Vehicle composite of DM26".
func ReportChanges(rep *ledger.Reporter, subject string, changes []Change, regression, escalation Rule) {
	for _, c := range changes {
		switch c.Kind {
		case Regression:
			if regression.enabled() {
				rep.Add(regression.Outcome, regression.Clause, "%s reports a monitor not supported that was supported before\n    %s", subject, c.After)
			}
		case Escalation:
			if escalation.enabled() {
				rep.Add(escalation.Outcome, escalation.Clause, "%s reports a monitor supported or enabled that was not supported before\n    %s", subject, c.After)
			}
		}
	}
}

// ReportDuplicates records one outcome per duplicated system
func ReportDuplicates(rep *ledger.Reporter, dups []Duplicate, rule Rule) {
	if !rule.enabled() {
		return
	}
	for _, d := range dups {
		names := make([]string, len(d.Addresses))
		for i, a := range d.Addresses {
			names[i] = a.String()
		}
		rep.Add(rule.Outcome, rule.Clause, "Required monitor %s is supported by more than one OBD ECU: %s", d.ID, strings.Join(names, ", "))
	}
}
