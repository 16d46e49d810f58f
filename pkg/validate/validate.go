// Package validate holds the stateless field checks shared by the test steps.
// Every check returns zero or more findings, callers prefix the clause id and
// the module name before recording them.
package validate

import (
	"fmt"

	"github.com/roffe/j1939/pkg/ledger"
)

const (
	// NotAvailable is the J1939 "not available" byte
	NotAvailable = 0xFF

	minPrintable = 0x20
	maxPrintable = 0x7E
)

// Finding is one detected condition
type Finding struct {
	Outcome ledger.Outcome
	Message string
}

func (f Finding) String() string {
	return f.Outcome.String() + ": " + f.Message
}

// Report records every finding on r, prefixing the message with prefix
func Report(r *ledger.Reporter, clause, prefix string, findings []Finding) {
	for _, f := range findings {
		if prefix != "" {
			r.Add(f.Outcome, clause, "%s %s", prefix, f.Message)
			continue
		}
		r.Add(f.Outcome, clause, "%s", f.Message)
	}
}

// IsPrintable reports whether b is printable ASCII
func IsPrintable(b byte) bool {
	return b >= minPrintable && b <= maxPrintable
}

// Printable reports one finding when any byte that is not the pad value is
// outside the printable ASCII range
func Printable(field []byte, pad byte, sev ledger.Outcome) []Finding {
	return printable(field, int(pad), sev)
}

// printable skips bytes equal to pad, pad < 0 skips nothing
func printable(field []byte, pad int, sev ledger.Outcome) []Finding {
	for i, b := range field {
		if int(b) == pad {
			continue
		}
		if !IsPrintable(b) {
			return []Finding{{
				Outcome: sev,
				Message: fmt.Sprintf("contains non-printable character 0x%02X at position %d", b, i),
			}}
		}
	}
	return nil
}

// Padding reports one finding when a non pad byte follows the first pad byte
func Padding(field []byte, pad byte, sev ledger.Outcome) []Finding {
	padded := false
	for i, b := range field {
		if b == pad {
			padded = true
			continue
		}
		if padded {
			return []Finding{{
				Outcome: sev,
				Message: fmt.Sprintf("is padded incorrectly, found 0x%02X at position %d after padding 0x%02X", b, i, pad),
			}}
		}
	}
	return nil
}

// NumericSuffix reports one finding unless the last n characters are ASCII digits
func NumericSuffix(field string, n int, sev ledger.Outcome) []Finding {
	if n <= 0 {
		return nil
	}
	if len(field) < n {
		return []Finding{{
			Outcome: sev,
			Message: fmt.Sprintf("is shorter than the %d numeric characters required at its end", n),
		}}
	}
	for _, c := range field[len(field)-n:] {
		if c < '0' || c > '9' {
			return []Finding{{
				Outcome: sev,
				Message: fmt.Sprintf("does not end in %d numeric characters", n),
			}}
		}
	}
	return nil
}

// LengthBand warns when len(field) is outside [min, max], max < 0 means no upper bound
func LengthBand(field string, min, max int) []Finding {
	l := len(field)
	switch {
	case l < min:
		return []Finding{{
			Outcome: ledger.Warn,
			Message: fmt.Sprintf("is %d characters, less than %d", l, min),
		}}
	case max >= 0 && l > max:
		return []Finding{{
			Outcome: ledger.Warn,
			Message: fmt.Sprintf("is %d characters, more than %d", l, max),
		}}
	}
	return nil
}
