package validate

import (
	"encoding/binary"
	"fmt"

	"github.com/roffe/j1939/pkg/ledger"
)

// Sentinel classifies a field against the all ones / all zero patterns
type Sentinel int

const (
	Valid Sentinel = iota
	// AllOnes is the "not available" value, a valid but absent field
	AllOnes
	AllZero
)

func (s Sentinel) String() string {
	switch s {
	case AllOnes:
		return "not available"
	case AllZero:
		return "all zero"
	default:
		return "valid"
	}
}

// Classify returns AllOnes or AllZero when every byte of a non empty field matches
func Classify(field []byte) Sentinel {
	if len(field) == 0 {
		return Valid
	}
	ones, zeros := true, true
	for _, b := range field {
		if b != NotAvailable {
			ones = false
		}
		if b != 0x00 {
			zeros = false
		}
	}
	switch {
	case ones:
		return AllOnes
	case zeros:
		return AllZero
	}
	return Valid
}

// ZeroPair reports one finding when both fields are entirely zero. An all
// ones pair is not available data and is never reported here.
func ZeroPair(a, b []byte, sev ledger.Outcome) []Finding {
	if Classify(a) == AllZero && Classify(b) == AllZero {
		return []Finding{{
			Outcome: sev,
			Message: "is all zeros in both fields",
		}}
	}
	return nil
}

// CVN returns the value of a calibration verification number received
// least significant byte first
func CVN(wire [4]byte) uint32 {
	return binary.LittleEndian.Uint32(wire[:])
}

// FormatCVN renders the CVN value as 8 hex digits, most significant first
func FormatCVN(wire [4]byte) string {
	return fmt.Sprintf("%08X", CVN(wire))
}

// CVNEqual compares two CVNs by value
func CVNEqual(a, b [4]byte) bool {
	return CVN(a) == CVN(b)
}
