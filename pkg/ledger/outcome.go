package ledger

import "fmt"

// Outcome of a single evaluated rule. The declared order is the severity
// order used by Worst: Fail > Warn > Pass.
type Outcome int

const (
	Pass Outcome = iota
	Warn
	Fail
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "PASS"
	case Warn:
		return "WARN"
	case Fail:
		return "FAIL"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ParseOutcome is the inverse of String
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "PASS", "pass":
		return Pass, nil
	case "WARN", "warn":
		return Warn, nil
	case "FAIL", "fail":
		return Fail, nil
	}
	return Pass, fmt.Errorf("unknown outcome %q", s)
}

// Worst returns the most severe outcome among entries, Pass when empty.
// It is meant for consumers summarizing a step, the engine never calls it.
func Worst(entries []Entry) Outcome {
	w := Pass
	for _, e := range entries {
		if e.Outcome > w {
			w = e.Outcome
		}
	}
	return w
}
