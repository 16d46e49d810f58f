package validate

import (
	"bytes"

	"github.com/roffe/j1939/pkg/ledger"
)

// FieldRule describes how one ASCII field is checked. Zero values disable a check.
type FieldRule struct {
	// Pad is the padding byte. Padded enables the padding check, bad padding is a Fail.
	Pad    byte
	Padded bool
	// Printable is the severity of the printability check
	Printable *ledger.Outcome
	// MinLen and MaxLen bound the unpadded length, MaxLen < 0 is unbounded
	MinLen, MaxLen int
	CheckLength    bool
	// DigitSuffix is the number of trailing characters that must be digits
	DigitSuffix         int
	DigitSuffixSeverity ledger.Outcome
}

// Severity is a helper to fill FieldRule.Printable
func Severity(o ledger.Outcome) *ledger.Outcome {
	return &o
}

// ASCII runs every check in rule on field. All checks run even when an
// earlier one produced a finding.
func ASCII(field []byte, rule FieldRule) []Finding {
	var out []Finding
	pad := -1
	if rule.Padded {
		pad = int(rule.Pad)
	}
	if rule.Printable != nil {
		out = append(out, printable(field, pad, *rule.Printable)...)
	}
	text := string(field)
	if rule.Padded {
		out = append(out, Padding(field, rule.Pad, ledger.Fail)...)
		if i := bytes.IndexByte(field, rule.Pad); i >= 0 {
			text = string(field[:i])
		}
	}
	if rule.CheckLength {
		out = append(out, LengthBand(text, rule.MinLen, rule.MaxLen)...)
	}
	if rule.DigitSuffix > 0 {
		out = append(out, NumericSuffix(text, rule.DigitSuffix, rule.DigitSuffixSeverity)...)
	}
	return out
}
